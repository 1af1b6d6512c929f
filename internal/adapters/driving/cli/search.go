package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusware/advisor/internal/core/ports/driving"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search degree programmes",
	Long: `Finds degree programmes relevant to a query by embedding similarity.
No answer is generated; matches are listed with their similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(cmd.Context(), query, searchLimit, 0)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []driving.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []driving.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No matching programmes found.")
		return nil
	}

	if searchService.Degraded() {
		cmd.Println("Note: embeddings unavailable, scores are substring matches.")
		cmd.Println()
	}

	cmd.Println("Programmes:")
	cmd.Println()
	for i := range results {
		p := results[i].Program
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, p.Title, results[i].Score)
		cmd.Printf("      %s, %s, taught in %s\n", p.Code, p.DegreeLevel, p.LanguageOfInstruction)
		cmd.Println()
	}

	return nil
}
