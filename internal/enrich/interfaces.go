package enrich

import (
	"context"

	"newsdesk/internal/core"
)

// Summarizer produces a short generated summary for one article
type Summarizer interface {
	SummarizeArticle(ctx context.Context, title, content string) (string, error)
}

// Embedder produces a vector embedding for text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Store is the subset of the article repository the worker needs
type Store interface {
	ListNeedingEnrichment(ctx context.Context, limit int) ([]core.Article, error)
	ApplyEnrichment(ctx context.Context, id string, e core.Enrichment) error
}
