package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cortexlocal/codeintel/internal/indexer"
)

var (
	indexForce              bool
	indexIncludeUncommitted bool
	indexQuiet              bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the project, applying changes incrementally since the last run",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "ignore prior state and perform a full reindex")
	indexCmd.Flags().BoolVar(&indexIncludeUncommitted, "include-uncommitted", false, "include uncommitted working-tree changes")
	indexCmd.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "disable progress output")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\ncancelling indexing...")
		cancel()
	}()

	rootDir, err := workingDir()
	if err != nil {
		return err
	}

	app, err := newApp(rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	progress := newCLIProgressReporter(indexQuiet)
	result, err := app.Indexer.Run(ctx, indexer.Request{
		Force:              indexForce,
		IncludeUncommitted: indexIncludeUncommitted,
	}, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("indexing did not complete: %s", result.Error.Message)
	}
	return nil
}
