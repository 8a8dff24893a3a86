package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var (
		limit         int
		minSimilarity float64
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored articles by meaning",
		Long: `Embed the query and rank every article with an embedding by cosine
similarity, remapped to [0,1]. Only results at or above --min-similarity
are shown.

Examples:
  newsdesk search "online casino licensing in the Netherlands"
  newsdesk search --limit 3 --min-similarity 0.7 "lottery acquisition"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query cannot be empty")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			opts := a.searchOptions()
			if limit > 0 {
				opts.Limit = limit
			}
			if cmd.Flags().Changed("min-similarity") {
				if minSimilarity < 0 || minSimilarity > 1 {
					return fmt.Errorf("--min-similarity must be within [0,1]")
				}
				opts.MinSimilarity = minSimilarity
			}

			results, err := a.search.Search(cmd.Context(), query, opts)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No articles found with high enough relevance (>%.0f%% match)\n", opts.MinSimilarity*100)
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%2d. [%.3f] %s\n    %s | %s\n", i+1, r.Similarity, r.Article.Title, r.Article.Source, r.Article.Link)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum results (default from config: 10)")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Minimum similarity score in [0,1] (default from config: 0.65)")

	return cmd
}
