// Package enrich fills in generated summaries and embeddings for stored articles
package enrich

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"newsdesk/internal/core"
	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/throttle"
)

const (
	// DefaultBatchLimit is the number of articles selected per run when none is given.
	DefaultBatchLimit = 50
	// DefaultInterval spaces consecutive articles.
	DefaultInterval = 500 * time.Millisecond
	// DefaultEmbeddingCharCap bounds the text sent to the embedding model.
	DefaultEmbeddingCharCap = 30000
)

// Outcome tags the result of enriching one article
type Outcome int

const (
	// OK means the missing fields were generated and stored.
	OK Outcome = iota
	// Skip means this article failed and the run moves on.
	Skip
	// RateLimited means the provider asked for backoff and the run stops.
	RateLimited
	// Fatal means the run cannot proceed at all.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Skip:
		return "skip"
	case RateLimited:
		return "rate_limited"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome for one article
type Result struct {
	ArticleID string
	Outcome   Outcome
	Err       error
}

// Report summarises one enrichment run
type Report struct {
	Selected    int
	Enriched    int
	Skipped     int
	RateLimited bool
}

// Options configures a Worker
type Options struct {
	Interval         time.Duration
	EmbeddingCharCap int
	Logger           *slog.Logger
}

// Worker enriches articles one at a time
type Worker struct {
	summarizer Summarizer
	embedder   Embedder
	store      Store
	gate       *throttle.Gate
	charCap    int
	policy     *bluemonday.Policy
	log        *slog.Logger
}

// NewWorker creates an enrichment worker
func NewWorker(summarizer Summarizer, embedder Embedder, store Store, opts Options) *Worker {
	if opts.EmbeddingCharCap <= 0 {
		opts.EmbeddingCharCap = DefaultEmbeddingCharCap
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Worker{
		summarizer: summarizer,
		embedder:   embedder,
		store:      store,
		gate:       throttle.NewGate(opts.Interval),
		charCap:    opts.EmbeddingCharCap,
		policy:     bluemonday.StrictPolicy(),
		log:        opts.Logger,
	}
}

// Run selects up to limit articles missing a summary or an embedding and
// enriches them in order. A rate-limited provider stops the run; any other
// per-article failure skips that article. The returned error is non-nil only
// when the run could not start or was cancelled.
func (w *Worker) Run(ctx context.Context, limit int) (Report, error) {
	var report Report
	if w.summarizer == nil || w.embedder == nil {
		return report, llm.ErrNotConfigured
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	articles, err := w.store.ListNeedingEnrichment(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("select articles needing enrichment: %w", err)
	}
	report.Selected = len(articles)
	w.log.Info("Starting enrichment", "selected", len(articles), "limit", limit)

	for _, article := range articles {
		if err := w.gate.Wait(ctx); err != nil {
			return report, err
		}

		result := w.EnrichArticle(ctx, article)
		switch result.Outcome {
		case OK:
			report.Enriched++
		case Skip:
			report.Skipped++
			w.log.Warn("Skipping article", "article_id", article.ID, "title", article.Title, "error", result.Err.Error())
		case RateLimited:
			report.RateLimited = true
			w.log.Warn("Rate limited, stopping enrichment", "article_id", article.ID, "enriched", report.Enriched)
			return report, nil
		case Fatal:
			return report, result.Err
		}
	}

	w.log.Info("Enrichment finished", "enriched", report.Enriched, "skipped", report.Skipped)
	return report, nil
}

// EnrichArticle generates whichever of summary and embedding article lacks
// and stores them together. Nothing is stored unless every needed field was
// produced.
func (w *Worker) EnrichArticle(ctx context.Context, article core.Article) Result {
	result := Result{ArticleID: article.ID}
	var update core.Enrichment

	if !article.HasSummary() {
		summary, err := w.summarizer.SummarizeArticle(ctx, article.Title, article.Content)
		if err != nil {
			return w.fail(ctx, result, err)
		}
		summary = w.sanitize(summary)
		if summary == "" {
			result.Outcome, result.Err = Skip, fmt.Errorf("%w: empty summary", llm.ErrService)
			return result
		}
		update.Summary = &summary
	}

	if !article.HasEmbedding() {
		embedding, err := w.embedder.Embed(ctx, EmbeddingInput(article.Title, article.Content, w.charCap))
		if err != nil {
			return w.fail(ctx, result, err)
		}
		if len(embedding) == 0 {
			result.Outcome, result.Err = Skip, fmt.Errorf("%w: empty embedding", llm.ErrService)
			return result
		}
		update.Embedding = embedding
	}

	if update.IsEmpty() {
		result.Outcome = OK
		return result
	}
	if err := w.store.ApplyEnrichment(ctx, article.ID, update); err != nil {
		return w.fail(ctx, result, fmt.Errorf("store enrichment: %w", err))
	}

	w.log.Debug("Enriched article", "article_id", article.ID, "summary", update.Summary != nil, "embedding", update.Embedding != nil)
	result.Outcome = OK
	return result
}

func (w *Worker) fail(ctx context.Context, result Result, err error) Result {
	result.Err = err
	switch {
	case llm.IsRateLimited(err):
		result.Outcome = RateLimited
	case errors.Is(err, llm.ErrNotConfigured), ctx.Err() != nil:
		result.Outcome = Fatal
	default:
		result.Outcome = Skip
	}
	return result
}

// sanitize strips any markup the model emitted and leaves plain text.
func (w *Worker) sanitize(summary string) string {
	return strings.TrimSpace(html.UnescapeString(w.policy.Sanitize(summary)))
}

// EmbeddingInput joins title and content and caps the result at charCap runes.
func EmbeddingInput(title, content string, charCap int) string {
	text := strings.TrimSpace(title + "\n\n" + content)
	if charCap <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= charCap {
		return text
	}
	return string(runes[:charCap])
}
