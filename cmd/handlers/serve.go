package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/llm"
	"newsdesk/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port      int
		host      string
		staticDir string
		schedule  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the newsdesk HTTP API.

The server provides:
  • Article listing with pagination and source filtering
  • Manual triggers for feed fetching, enrichment and digests
  • Semantic search over article embeddings
  • Health check endpoint

With --schedule the server also fetches and enriches on the configured
feeds.fetch_interval (FETCH_INTERVAL_MINUTES).

Examples:
  # Start server on default port 8080
  newsdesk serve

  # Start on a custom port with background fetching
  newsdesk serve --port 3000 --schedule`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, staticDir, schedule)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "Static files directory served under /static/")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "Fetch and enrich periodically while serving")

	return cmd
}

func runServe(ctx context.Context, port int, host, staticDir string, schedule bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Flags override config for this run only.
	cfg := *a.cfg
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if staticDir != "" {
		cfg.Server.StaticDir = staticDir
	}

	srv := server.New(&cfg, a.serverDeps())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if schedule {
		go a.runSchedule(ctx, config.Duration(cfg.Feeds.FetchInterval, time.Hour))
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info(fmt.Sprintf("Server listening on http://%s", cfg.Server.Address()))
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		return err

	case <-ctx.Done():
		a.log.Info("Server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		a.log.Info("Server stopped successfully")
	}

	return nil
}

// runSchedule fetches and enriches on every tick until ctx is done
func (a *app) runSchedule(ctx context.Context, interval time.Duration) {
	a.log.Info("Background fetching enabled", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.runCycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *app) runCycle(ctx context.Context) {
	result, err := a.pipeline.Run(ctx)
	if err != nil {
		a.log.Error("Scheduled fetch failed", "error", err)
		return
	}
	a.log.Info("Scheduled fetch complete", "inserted", result.Report.Inserted, "failed_feeds", result.Feeds.Failed)

	// The backlog is retried every cycle, including articles left over
	// from a rate-limited run.
	report, err := a.worker.Run(ctx, a.cfg.Enrichment.BatchLimit)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return
	case err != nil:
		a.log.Error("Scheduled enrichment failed", "error", err)
		return
	}
	a.log.Info("Scheduled enrichment complete", "enriched", report.Enriched, "rate_limited", report.RateLimited)
}
