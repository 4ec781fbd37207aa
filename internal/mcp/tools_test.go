package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexlocal/codeintel/internal/chunker"
	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/discovery"
	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/gitutil"
	"github.com/cortexlocal/codeintel/internal/graph"
	"github.com/cortexlocal/codeintel/internal/indexer"
	"github.com/cortexlocal/codeintel/internal/planner"
	"github.com/cortexlocal/codeintel/internal/query"
	"github.com/cortexlocal/codeintel/internal/state"
	"github.com/cortexlocal/codeintel/internal/store"
)

// testHarness wires one project's worth of real collaborators into a
// temp directory, mirroring cli.newApp closely enough to exercise
// each handler factory without a live *server.MCPServer, the same
// isolation the teacher's createCortexSearchHandler tests rely on.
type testHarness struct {
	rootDir string
	cfg     *config.Config
	disc    *discovery.Discovery
	index   *store.DualIndex
	stateSt *state.Store
	embed   *embedder.MockProvider
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(
		"package sample\n\nfunc Greet(name string) string {\n\treturn \"hello \" + name\n}\n",
	), 0o644))

	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, ".codeintel")
	cfg.ProjectRoot = root
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))

	disc, err := discovery.New(root, cfg.Paths.Languages, cfg.Paths.Ignore)
	require.NoError(t, err)

	idx, err := store.Open(cfg.DataDir, cfg.Embedding.Dimensions)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	stateSt, err := state.New(cfg.DataDir)
	require.NoError(t, err)

	return &testHarness{
		rootDir: root,
		cfg:     cfg,
		disc:    disc,
		index:   idx,
		stateSt: stateSt,
		embed:   embedder.NewMockProvider(cfg.Embedding.Dimensions),
	}
}

func (h *testHarness) newIndexer(t *testing.T) *indexer.Indexer {
	t.Helper()
	git := gitutil.NewMockOperations()
	git.Commit = "abc1234"
	plan := planner.New(h.rootDir, h.disc, git)
	chunks := chunker.New(h.cfg.Chunking)
	return indexer.New(h.rootDir, h.cfg, h.disc, plan, chunks, h.index, h.embed, git, h.stateSt)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
	return handler(context.Background(), req)
}

func decodeText(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, "handler returned an error result")
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestIndexCodebaseHandlerIndexesAndReturnsSummary(t *testing.T) {
	h := newTestHarness(t)
	handler := createIndexCodebaseHandler(h.newIndexer(t))

	result, err := callTool(t, handler, map[string]interface{}{"force": true})
	require.NoError(t, err)

	var summary indexer.Result
	decodeText(t, result, &summary)
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Greater(t, summary.ChunksCreated, 0)
}

func TestSearchCodeHandlerRequiresQuery(t *testing.T) {
	h := newTestHarness(t)
	searcher := query.NewSearcher(h.index, h.embed)
	handler := createSearchCodeHandler(searcher)

	result, err := callTool(t, handler, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSearchCodeHandlerReturnsResults(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.newIndexer(t).Run(context.Background(), indexer.Request{Force: true}, nil)
	require.NoError(t, err)

	searcher := query.NewSearcher(h.index, h.embed)
	handler := createSearchCodeHandler(searcher)

	result, err := callTool(t, handler, map[string]interface{}{"query": "Greet", "k": float64(5)})
	require.NoError(t, err)

	var results []query.Result
	decodeText(t, result, &results)
	assert.NotEmpty(t, results)
}

func TestFindSymbolHandlerLocatesDefinition(t *testing.T) {
	h := newTestHarness(t)
	resolver, err := graph.NewResolver(h.rootDir, h.disc)
	require.NoError(t, err)
	defer resolver.Close()

	handler := createFindSymbolHandler(resolver)

	result, err := callTool(t, handler, map[string]interface{}{"symbol_name": "Greet"})
	require.NoError(t, err)

	var found graph.Result
	decodeText(t, result, &found)
	assert.NotEmpty(t, found.Definitions)
}

func TestFindSymbolHandlerRequiresName(t *testing.T) {
	h := newTestHarness(t)
	resolver, err := graph.NewResolver(h.rootDir, h.disc)
	require.NoError(t, err)
	defer resolver.Close()

	handler := createFindSymbolHandler(resolver)

	result, err := callTool(t, handler, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetStatsHandlerReflectsIndexedChunks(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.newIndexer(t).Run(context.Background(), indexer.Request{Force: true}, nil)
	require.NoError(t, err)

	handler := createGetStatsHandler(h.index, h.stateSt)

	result, err := callTool(t, handler, map[string]interface{}{})
	require.NoError(t, err)

	var stats store.Stats
	decodeText(t, result, &stats)
	assert.Greater(t, stats.TotalChunks, 0)
	if assert.NotNil(t, stats.LastIndexedCommit) {
		assert.NotEmpty(t, *stats.LastIndexedCommit)
	}
}

func TestGetStatsHandlerToleratesNoPriorState(t *testing.T) {
	h := newTestHarness(t)
	emptyState, err := state.New(filepath.Join(h.rootDir, "empty-state"))
	require.NoError(t, err)

	handler := createGetStatsHandler(h.index, emptyState)

	result, err := callTool(t, handler, map[string]interface{}{})
	require.NoError(t, err)

	var stats store.Stats
	decodeText(t, result, &stats)
	assert.Nil(t, stats.LastIndexedCommit)
}
