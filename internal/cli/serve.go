package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/cortexlocal/codeintel/internal/indexer"
	"github.com/cortexlocal/codeintel/internal/mcp"
	"github.com/cortexlocal/codeintel/internal/watch"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve index_codebase, search_code, find_symbol and get_stats over stdio",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reindex incrementally on filesystem changes (off by default)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rootDir, err := workingDir()
	if err != nil {
		return err
	}

	app, err := newApp(rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	var watcher *watch.Watcher
	if serveWatch {
		watcher, err = watch.New(rootDir, app.Disc.ShouldIgnore, func(ctx context.Context, changed []string) {
			log.Printf("watch: reindexing after changes to %d file(s)\n", len(changed))
			if _, err := app.Indexer.Run(ctx, indexer.Request{}, indexer.NoOpProgressReporter{}); err != nil {
				log.Printf("watch: reindex failed: %v\n", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		watcher.Start(context.Background())
		defer watcher.Stop()
	}

	server := mcp.New(app.Indexer, app.Searcher, app.Resolver, app.Index, app.State)
	return server.Serve()
}
