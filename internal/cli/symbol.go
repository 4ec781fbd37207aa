package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var symbolEntryPoints []string

var symbolCmd = &cobra.Command{
	Use:   "symbol [name]",
	Short: "Find a symbol's definitions and references across the indexed tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbol,
}

func init() {
	symbolCmd.Flags().StringSliceVar(&symbolEntryPoints, "entry-point", nil, "scope the search to these relative paths and their imports (repeatable)")
}

func runSymbol(cmd *cobra.Command, args []string) error {
	rootDir, err := workingDir()
	if err != nil {
		return err
	}

	app, err := newApp(rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Resolver.FindSymbol(context.Background(), args[0], symbolEntryPoints)
	if err != nil {
		return fmt.Errorf("symbol resolution failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
