package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDigestCmd creates the digest command group
func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Create and manage daily digests",
		Long: `Create and manage daily digests.

A digest is generated once per calendar date from the articles ingested in
the configured window (default 24h). Dates use YYYY-MM-DD and default to
today.

Examples:
  newsdesk digest create
  newsdesk digest show 2026-03-02
  newsdesk digest list
  newsdesk digest delete 2026-03-02`,
	}

	cmd.AddCommand(newDigestCreateCmd())
	cmd.AddCommand(newDigestShowCmd())
	cmd.AddCommand(newDigestListCmd())
	cmd.AddCommand(newDigestDeleteCmd())

	return cmd
}

func dateArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newDigestCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [date]",
		Short: "Generate the digest for a date unless it already exists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.composer.Create(cmd.Context(), dateArg(args))
			if err != nil {
				return fmt.Errorf("failed to create digest: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Existed {
				fmt.Fprintf(out, "Digest already exists for %s\n\n", result.Digest.Date)
			} else {
				fmt.Fprintf(out, "Created digest for %s from %d articles\n\n", result.Digest.Date, result.Digest.ArticleCount)
			}
			fmt.Fprintln(out, result.Digest.Content)
			return nil
		},
	}
}

func newDigestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Print a stored digest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.composer.Get(cmd.Context(), dateArg(args))
			if err != nil {
				return fmt.Errorf("failed to load digest: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Digest %s (%d articles, created %s)\n\n", d.Date, d.ArticleCount, d.CreatedAt.Format("2006-01-02 15:04 MST"))
			fmt.Fprintln(out, d.Content)
			return nil
		},
	}
}

func newDigestListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			digests, err := a.composer.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list digests: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(digests) == 0 {
				fmt.Fprintln(out, "No digests found")
				return nil
			}
			for _, d := range digests {
				fmt.Fprintf(out, "%s  %3d articles\n", d.Date, d.ArticleCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 30, "Maximum number of digests to list")

	return cmd
}

func newDigestDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete a stored digest so it can be regenerated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.composer.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete digest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted digest for %s\n", args[0])
			return nil
		},
	}
}
