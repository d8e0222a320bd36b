package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchSimilar bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Performs a keyword search across stored chunks. With --similar the
query is embedded and matched against chunk embeddings by cosine
similarity instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchSimilar, "similar", false, "use embedding similarity instead of keywords")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()

	var results []domain.SearchResult
	if searchSimilar {
		results = searchService.Similar(ctx, query, searchLimit)
	} else {
		results = searchService.Text(ctx, query, searchLimit)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].DocumentTitle
		if title == "" {
			title = results[i].Chunk.DocumentID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if results[i].DocumentPath != "" {
			cmd.Printf("      Path: %s\n", results[i].DocumentPath)
		}
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Content, 120))
		cmd.Println()
	}

	return nil
}

// snippet returns the first line of content, truncated to max runes.
func snippet(content string, max int) string {
	for i, r := range content {
		if r == '\n' {
			content = content[:i]
			break
		}
	}

	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
