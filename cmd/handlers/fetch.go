package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	var enrichAfter bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch all configured feeds and store new articles",
		Long: `Fetch every configured feed, extract articles and store the ones whose
link is not yet known. A failing feed is reported and skipped.

Examples:
  newsdesk fetch
  newsdesk fetch --enrich`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd.OutOrStdout(), enrichAfter)
		},
	}

	cmd.Flags().BoolVar(&enrichAfter, "enrich", false, "Generate summaries and embeddings after fetching")

	return cmd
}

func runFetch(ctx context.Context, out io.Writer, enrichAfter bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	fmt.Fprintln(out, "Feeds")
	for _, s := range result.Feeds.Sources {
		if s.Error != "" {
			fmt.Fprintf(out, "  ✗ %-28s %s\n", s.Source.Name, s.Error)
			continue
		}
		fmt.Fprintf(out, "  ✓ %-28s %d items\n", s.Source.Name, s.Candidates)
	}

	r := result.Report
	fmt.Fprintf(out, "\nParsed: %d | New: %d | Duplicates: %d | Failed: %d\n",
		r.Candidates, r.Inserted, r.DuplicatesInBatch+r.DuplicatesInStore, r.Failed)

	if enrichAfter {
		return enrichWith(ctx, out, a, a.cfg.Enrichment.BatchLimit)
	}
	return nil
}
