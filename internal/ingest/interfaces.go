package ingest

import (
	"context"

	"newsdesk/internal/core"
	"newsdesk/internal/feeds"
)

// CandidateSource produces a batch of candidates from every configured feed
type CandidateSource interface {
	RunAllSources(ctx context.Context) ([]core.Candidate, feeds.RunReport)
}

// ArticleStore is the slice of the article repository ingestion writes through
type ArticleStore interface {
	ExistsByLink(ctx context.Context, link string) (bool, error)
	Create(ctx context.Context, article *core.Article) error
}
