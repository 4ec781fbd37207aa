// Package cli wires the indexing and retrieval core into a cobra-based
// command line, grounded on the teacher's internal/cli/root.go
// (cobra root command, viper-backed config flag) and index.go (the
// indexer bootstrap sequence: load config, open storage, build the
// embedding provider, run).
package cli

import (
	"fmt"
	"os"

	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/discovery"
	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/gitutil"
	"github.com/cortexlocal/codeintel/internal/graph"
	"github.com/cortexlocal/codeintel/internal/indexer"
	"github.com/cortexlocal/codeintel/internal/planner"
	"github.com/cortexlocal/codeintel/internal/query"
	"github.com/cortexlocal/codeintel/internal/chunker"
	"github.com/cortexlocal/codeintel/internal/state"
	"github.com/cortexlocal/codeintel/internal/store"
)

// App holds every wired collaborator for one project root, so each
// subcommand only needs to open what it actually uses.
type App struct {
	RootDir  string
	Config   *config.Config
	Disc     *discovery.Discovery
	Index    *store.DualIndex
	Embedder embedder.Provider
	Git      gitutil.Operations
	State    *state.Store
	Indexer  *indexer.Indexer
	Searcher *query.Searcher
	Resolver *graph.Resolver
}

// newApp loads configuration and opens every collaborator needed to
// run index_codebase, search_code, find_symbol and get_stats.
func newApp(rootDir string) (*App, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	disc, err := discovery.New(rootDir, cfg.Paths.Languages, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file discovery: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	index, err := store.Open(cfg.DataDir, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	embedProvider, err := embedder.NewProvider(embedder.Config{
		Provider:   cfg.Embedding.Provider,
		Endpoint:   cfg.Embedding.Endpoint,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	git := gitutil.NewOperations()

	stateStore, err := state.New(cfg.DataDir)
	if err != nil {
		index.Close()
		embedProvider.Close()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	plan := planner.New(rootDir, disc, git)
	chunks := chunker.New(cfg.Chunking)

	ix := indexer.New(rootDir, cfg, disc, plan, chunks, index, embedProvider, git, stateStore)
	searcher := query.NewSearcher(index, embedProvider)
	if index.Degraded {
		// spec §4.5.3: vector side failed to open, keyword side is up.
		// Force the hybrid searcher to keyword-only until it recovers.
		searcher.SetAlpha(0)
	}

	resolver, err := graph.NewResolver(rootDir, disc)
	if err != nil {
		index.Close()
		embedProvider.Close()
		return nil, fmt.Errorf("failed to create symbol resolver: %w", err)
	}

	return &App{
		RootDir:  rootDir,
		Config:   cfg,
		Disc:     disc,
		Index:    index,
		Embedder: embedProvider,
		Git:      git,
		State:    stateStore,
		Indexer:  ix,
		Searcher: searcher,
		Resolver: resolver,
	}, nil
}

// Close releases every collaborator that owns a resource.
func (a *App) Close() {
	a.Resolver.Close()
	a.Embedder.Close()
	a.Index.Close()
}
