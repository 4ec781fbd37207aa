package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report index size, per-language and per-kind chunk counts",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	rootDir, err := workingDir()
	if err != nil {
		return err
	}

	app, err := newApp(rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	state, err := app.State.LoadState()
	if err != nil {
		return err
	}

	stats, err := app.Index.Stats(state)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
