// Package handlers implements the newsdesk command line
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
)

var (
	cfgFile  string
	logLevel string
)

// NewRootCmd creates the newsdesk root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsdesk",
		Short: "Aggregate, summarise and search iGaming industry news",
		Long: `Newsdesk - News Aggregation and Semantic Search

Collects articles from configured RSS/Atom feeds, deduplicates them by link,
enriches them with generated summaries and embeddings, and serves them over
an HTTP API with semantic search and daily digests.

Examples:
  # Create or update the database schema
  newsdesk migrate up

  # Fetch all feeds, then generate summaries and embeddings
  newsdesk fetch
  newsdesk enrich --limit 20

  # Search stored articles by meaning
  newsdesk search "sports betting regulation in Brazil"

  # Start the HTTP API
  newsdesk serve --port 8080`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			logger.Configure(level, cfg.Logging.Format, cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .newsdesk.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewFetchCmd())
	rootCmd.AddCommand(NewEnrichCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewSourcesCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewTUICmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
