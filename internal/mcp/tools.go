// Package mcp exposes the indexing and retrieval core over
// mark3labs/mcp-go's tool-call protocol: index_codebase, search_code,
// find_symbol and get_stats (spec §6). Grounded on the teacher's
// internal/mcp/tool.go (mcp.NewTool/AddTool registration shape,
// createCortexSearchHandler/createCortexPatternHandler factory-function
// pattern, argument parsing from request.Params.Arguments as a
// map[string]interface{}, JSON-text results) and server.go (server
// construction and lifecycle).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cortexlocal/codeintel/internal/graph"
	"github.com/cortexlocal/codeintel/internal/indexer"
	"github.com/cortexlocal/codeintel/internal/model"
	"github.com/cortexlocal/codeintel/internal/query"
	"github.com/cortexlocal/codeintel/internal/state"
	"github.com/cortexlocal/codeintel/internal/store"
)

// Server wires the four tool-call operations onto one mcp-go server.
type Server struct {
	mcp *server.MCPServer
}

// New registers every tool and returns the wired server, ready to Serve.
func New(ix *indexer.Indexer, searcher *query.Searcher, resolver *graph.Resolver, index *store.DualIndex, stateStore *state.Store) *Server {
	s := server.NewMCPServer("codeintel-mcp", "1.0.0", server.WithToolCapabilities(true))

	s.AddTool(indexCodebaseTool(), createIndexCodebaseHandler(ix))
	s.AddTool(searchCodeTool(), createSearchCodeHandler(searcher))
	s.AddTool(findSymbolTool(), createFindSymbolHandler(resolver))
	s.AddTool(getStatsTool(), createGetStatsHandler(index, stateStore))

	return &Server{mcp: s}
}

// Serve blocks, handling tool calls over stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func indexCodebaseTool() mcp.Tool {
	return mcp.NewTool(
		"index_codebase",
		mcp.WithDescription("Index or re-index the project, incrementally applying changes since the last run unless force is set."),
		mcp.WithBoolean("force", mcp.Description("Ignore prior state and perform a full reindex")),
		mcp.WithBoolean("include_uncommitted", mcp.Description("Include uncommitted working-tree changes in the plan")),
	)
}

// createIndexCodebaseHandler builds the index_codebase handler in
// isolation so it can be exercised directly in tests without a live
// *server.MCPServer, mirroring the teacher's createCortexSearchHandler.
func createIndexCodebaseHandler(ix *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, _ := request.Params.Arguments.(map[string]interface{})

		req := indexer.Request{}
		if force, ok := argsMap["force"].(bool); ok {
			req.Force = force
		}
		if uncommitted, ok := argsMap["include_uncommitted"].(bool); ok {
			req.IncludeUncommitted = uncommitted
		}

		result, err := ix.Run(ctx, req, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool(
		"search_code",
		mcp.WithDescription("Hybrid semantic and keyword search over the indexed codebase. Returns ranked code chunks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language or keyword search query")),
		mcp.WithNumber("k", mcp.Description("Maximum number of results to return (default 10)")),
		mcp.WithString("language_filter", mcp.Description("Restrict results to one language")),
		mcp.WithString("mode", mcp.Description("Fusion mode: 'hybrid' (weighted) or 'rrf' (reciprocal rank fusion)")),
		mcp.WithNumber("alpha", mcp.Description("Semantic-branch weight in [0,1]; 0 falls back to the searcher default")),
	)
}

func createSearchCodeHandler(searcher *query.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		q, ok := argsMap["query"].(string)
		if !ok || q == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		req := query.Request{Query: q, K: query.DefaultK}
		if k, ok := argsMap["k"].(float64); ok {
			req.K = int(k)
		}
		if lang, ok := argsMap["language_filter"].(string); ok {
			req.LanguageFilter = lang
		}
		if mode, ok := argsMap["mode"].(string); ok {
			req.Mode = query.Mode(mode)
		}
		if alpha, ok := argsMap["alpha"].(float64); ok {
			req.Alpha = alpha
		}

		results, err := searcher.Search(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results)
	}
}

func findSymbolTool() mcp.Tool {
	return mcp.NewTool(
		"find_symbol",
		mcp.WithDescription("Find a symbol's definitions and references across the indexed tree, optionally scoped to an entry-point closure."),
		mcp.WithString("symbol_name", mcp.Required(), mcp.Description("Symbol name to resolve")),
		mcp.WithArray("entry_points", mcp.Description("Relative paths to scope the search to, with their transitive imports")),
	)
}

func createFindSymbolHandler(resolver *graph.Resolver) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		name, ok := argsMap["symbol_name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("symbol_name parameter is required"), nil
		}

		var entryPoints []string
		if raw, ok := argsMap["entry_points"].([]interface{}); ok {
			for _, v := range raw {
				if p, ok := v.(string); ok {
					entryPoints = append(entryPoints, p)
				}
			}
		}

		result, err := resolver.FindSymbol(ctx, name, entryPoints)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func getStatsTool() mcp.Tool {
	return mcp.NewTool(
		"get_stats",
		mcp.WithDescription("Report index size, per-language and per-kind chunk counts, and the last indexed commit."),
	)
}

func createGetStatsHandler(index *store.DualIndex, stateStore *state.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var prior *model.IndexState
		if stateStore != nil {
			loaded, err := stateStore.LoadState()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			prior = loaded
		}

		stats, err := index.Stats(prior)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(stats)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
