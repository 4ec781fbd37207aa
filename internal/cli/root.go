package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codeintel",
	Short: "Local code-intelligence indexing and retrieval core",
	Long: `codeintel indexes a project's source tree into a local hybrid
vector/keyword store and serves search_code, find_symbol and get_stats
over stdio for AI coding assistants.`,
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(symbolCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

func workingDir() (string, error) {
	return os.Getwd()
}
