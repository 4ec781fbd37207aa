package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cortexlocal/codeintel/internal/query"
)

var (
	searchK        int
	searchLanguage string
	searchMode     string
	searchAlpha    float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Hybrid semantic and keyword search over the indexed codebase",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchK, "k", query.DefaultK, "maximum number of results")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "restrict results to one language")
	searchCmd.Flags().StringVar(&searchMode, "mode", string(query.ModeHybrid), "fusion mode: hybrid or rrf")
	searchCmd.Flags().Float64Var(&searchAlpha, "alpha", 0, "semantic-branch weight in [0,1]")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rootDir, err := workingDir()
	if err != nil {
		return err
	}

	app, err := newApp(rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Searcher.Search(context.Background(), query.Request{
		Query:          args[0],
		K:              searchK,
		LanguageFilter: searchLanguage,
		Mode:           query.Mode(searchMode),
		Alpha:          searchAlpha,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
