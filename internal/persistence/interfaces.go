// Package persistence provides database abstraction interfaces for storing articles and digests
package persistence

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/core"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint,
	// including a race against a concurrent writer.
	ErrDuplicate = errors.New("duplicate record")
)

// ArticleRepository handles article persistence operations
type ArticleRepository interface {
	// Create inserts a new article. A link that already exists yields ErrDuplicate.
	Create(ctx context.Context, article *core.Article) error

	// ExistsByLink reports whether an article with this link is stored
	ExistsByLink(ctx context.Context, link string) (bool, error)

	// Get retrieves an article by ID
	Get(ctx context.Context, id string) (*core.Article, error)

	// List retrieves articles newest-published first, then newest-created
	List(ctx context.Context, opts ListOptions) ([]core.Article, error)

	// Count returns how many articles match the filter in opts
	Count(ctx context.Context, opts ListOptions) (int, error)

	// ListNeedingEnrichment retrieves up to limit articles missing a summary or an embedding
	ListNeedingEnrichment(ctx context.Context, limit int) ([]core.Article, error)

	// ListWithEmbeddings retrieves every article that has an embedding, in stable scan order
	ListWithEmbeddings(ctx context.Context) ([]core.Article, error)

	// ListCreatedSince retrieves articles ingested at or after since, newest-published first
	ListCreatedSince(ctx context.Context, since time.Time) ([]core.Article, error)

	// ApplyEnrichment fills the summary and embedding fields that are still absent
	ApplyEnrichment(ctx context.Context, id string, e core.Enrichment) error

	// Delete removes an article by ID
	Delete(ctx context.Context, id string) error
}

// DigestRepository handles digest persistence operations
type DigestRepository interface {
	// Create inserts a new digest. An existing date yields ErrDuplicate.
	Create(ctx context.Context, digest *core.Digest) error

	// GetByDate retrieves the digest for a YYYY-MM-DD date
	GetByDate(ctx context.Context, date string) (*core.Digest, error)

	// List retrieves the most recent digests
	List(ctx context.Context, limit int) ([]core.Digest, error)

	// Delete removes the digest for a date
	Delete(ctx context.Context, date string) error
}

// Database provides access to all repositories
type Database interface {
	Articles() ArticleRepository
	Digests() DigestRepository
	Dialect() Dialect
	Ping(ctx context.Context) error
	Close() error
}

// ListOptions provides pagination and filtering options
type ListOptions struct {
	Limit   int
	Offset  int
	Source  string   // exact source name
	Sources []string // any of these source names
}
