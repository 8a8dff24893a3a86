package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewEnrichCmd creates the enrich command
func NewEnrichCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Generate missing summaries and embeddings",
		Long: `Select stored articles missing a summary or an embedding and generate
them with Gemini. The run stops early when the provider rate limits.

Examples:
  newsdesk enrich
  newsdesk enrich --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = a.cfg.Enrichment.BatchLimit
			}
			return enrichWith(cmd.Context(), cmd.OutOrStdout(), a, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of articles to process (default from config: 50)")

	return cmd
}

func enrichWith(ctx context.Context, out io.Writer, a *app, limit int) error {
	report, err := a.worker.Run(ctx, limit)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	fmt.Fprintf(out, "Selected: %d | Enriched: %d | Skipped: %d\n", report.Selected, report.Enriched, report.Skipped)
	if report.RateLimited {
		fmt.Fprintln(out, "Stopped early: provider rate limit reached, run again later")
	}
	return nil
}
