package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/core"
	"newsdesk/internal/digest"
	"newsdesk/internal/enrich"
	"newsdesk/internal/feeds"
	"newsdesk/internal/ingest"
	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
	"newsdesk/internal/search"
	"newsdesk/internal/server"
	"newsdesk/internal/vectorstore"
)

// app holds the wired collaborators shared by the commands
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *persistence.DB
	sources  []core.Source
	llm      *llm.Client
	pipeline *ingest.Pipeline
	worker   *enrich.Worker
	composer *digest.Composer
	vectors  *vectorstore.BruteForce
	search   *search.Service
}

// openDatabase connects to the configured database without migrating it
func openDatabase(ctx context.Context, cfg *config.Config) (*persistence.DB, error) {
	db, err := persistence.Open(ctx, cfg.Database.URL, persistence.Options{
		MaxOpenConns:   cfg.Database.MaxOpenConns,
		MaxIdleConns:   cfg.Database.MaxIdleConns,
		ConnectTimeout: config.Duration(cfg.Database.ConnectTimeout, 10*time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newApp opens and migrates the database and wires every component. A
// missing Gemini key leaves the AI-backed components unconfigured rather
// than failing, so read-only commands keep working.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()
	log := logger.Get()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := persistence.NewMigrationManager(db).WithLogger(log).Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db, sources: feeds.Sources(cfg.Feeds.Sources)}

	client, err := llm.NewClient(ctx, llm.Config{
		APIKey:              cfg.AI.Gemini.APIKey,
		Model:               cfg.AI.Gemini.Model,
		EmbeddingModel:      cfg.AI.Gemini.EmbeddingModel,
		EmbeddingDimensions: cfg.AI.Gemini.EmbeddingDimensions,
		SummaryMaxTokens:    cfg.AI.Gemini.SummaryMaxTokens,
		DigestMaxTokens:     cfg.AI.Gemini.DigestMaxTokens,
		Timeout:             config.Duration(cfg.AI.Gemini.Timeout, time.Minute),
	})
	switch {
	case err == nil:
		a.llm = client
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("Gemini API key not set, summaries, digests and search are disabled")
	default:
		_ = db.Close()
		return nil, err
	}

	// Interfaces stay nil, not typed-nil, when the client is missing.
	var (
		summarizer enrich.Summarizer
		embedder   enrich.Embedder
		generator  digest.Generator
		queries    search.Embedder
	)
	if a.llm != nil {
		summarizer, embedder, generator, queries = a.llm, a.llm, a.llm, a.llm
	}

	extractor := feeds.NewExtractor(
		feeds.NewHTTPFetcher(config.Duration(cfg.Feeds.Timeout, 30*time.Second), cfg.Feeds.UserAgent),
		a.sources,
		feeds.ExtractorOptions{
			MaxItems:     cfg.Feeds.MaxItemsPerFeed,
			ExcerptChars: cfg.Content.ExcerptChars,
			Pacing:       config.Duration(cfg.Feeds.RequestInterval, 500*time.Millisecond),
			Logger:       log,
		},
	)
	a.pipeline = ingest.NewPipeline(extractor, db.Articles(), log)

	a.worker = enrich.NewWorker(summarizer, embedder, db.Articles(), enrich.Options{
		Interval:         config.Duration(cfg.Enrichment.Interval, enrich.DefaultInterval),
		EmbeddingCharCap: cfg.Enrichment.EmbeddingCharCap,
		Logger:           log,
	})

	a.composer = digest.NewComposer(db.Articles(), db.Digests(), generator, digest.Options{
		Window: config.Duration(cfg.Digest.Window, digest.DefaultWindow),
		Logger: log,
	})

	a.vectors = vectorstore.NewBruteForce(db.Articles(), log)
	a.search = search.NewService(queries, a.vectors, log)

	return a, nil
}

// searchOptions returns the configured search defaults
func (a *app) searchOptions() search.Options {
	return search.Options{
		Limit:         a.cfg.Search.DefaultLimit,
		MinSimilarity: a.cfg.Search.MinSimilarity,
	}
}

// serverDeps adapts the app to the HTTP server's collaborators
func (a *app) serverDeps() server.Deps {
	return server.Deps{
		DB:       a.db,
		Sources:  a.sources,
		Ingester: a.pipeline,
		Enricher: a.worker,
		Digests:  a.composer,
		Searcher: a.search,
		Vectors:  a.vectors,
		Logger:   a.log,
	}
}

func (a *app) Close() error {
	return a.db.Close()
}
