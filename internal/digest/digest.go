// Package digest composes one generated narrative per calendar date from recent articles
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
)

const (
	// DefaultWindow is how far back articles are collected for a digest.
	DefaultWindow = 24 * time.Hour
	// ContentPreviewChars caps the content quoted for articles without a summary.
	ContentPreviewChars = 500
)

var (
	// ErrNoArticles is returned when no articles fall inside the window.
	ErrNoArticles = errors.New("no articles found for digest")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid digest date, expected YYYY-MM-DD")
)

// Generator writes the digest narrative from an article listing
type Generator interface {
	ComposeDigest(ctx context.Context, listing string) (string, error)
}

// ArticleSource lists recently ingested articles
type ArticleSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]core.Article, error)
}

// Result is a created or previously stored digest
type Result struct {
	Digest  *core.Digest
	Existed bool
}

// Options configures a Composer
type Options struct {
	Window time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

// Composer creates and manages digests
type Composer struct {
	articles  ArticleSource
	digests   persistence.DigestRepository
	generator Generator
	window    time.Duration
	now       func() time.Time
	log       *slog.Logger
}

// NewComposer creates a digest composer. generator may be nil when no
// provider is configured; Create then fails with llm.ErrNotConfigured.
func NewComposer(articles ArticleSource, digests persistence.DigestRepository, generator Generator, opts Options) *Composer {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Composer{
		articles:  articles,
		digests:   digests,
		generator: generator,
		window:    opts.Window,
		now:       opts.Now,
		log:       opts.Logger,
	}
}

// Today returns the current digest key.
func (c *Composer) Today() string {
	return core.DigestDate(c.now().UTC())
}

// Create returns the digest for date, generating and storing it when none
// exists yet. An empty date means today.
func (c *Composer) Create(ctx context.Context, date string) (*Result, error) {
	date, err := c.normalizeDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := c.digests.GetByDate(ctx, date)
	switch {
	case err == nil:
		c.log.Info("Digest already exists", "date", date)
		return &Result{Digest: existing, Existed: true}, nil
	case !errors.Is(err, persistence.ErrNotFound):
		return nil, fmt.Errorf("look up digest %s: %w", date, err)
	}

	if c.generator == nil {
		return nil, llm.ErrNotConfigured
	}

	since := c.now().UTC().Add(-c.window)
	articles, err := c.articles.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	content, err := c.generator.ComposeDigest(ctx, BuildListing(articles))
	if err != nil {
		return nil, err
	}

	digest := &core.Digest{
		Date:         date,
		Content:      content,
		ArticleCount: len(articles),
		CreatedAt:    c.now().UTC(),
	}
	if err := c.digests.Create(ctx, digest); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			// Another writer stored this date first.
			stored, getErr := c.digests.GetByDate(ctx, date)
			if getErr != nil {
				return nil, fmt.Errorf("load concurrently created digest %s: %w", date, getErr)
			}
			return &Result{Digest: stored, Existed: true}, nil
		}
		return nil, fmt.Errorf("store digest %s: %w", date, err)
	}

	c.log.Info("Digest created", "date", date, "articles", len(articles))
	return &Result{Digest: digest}, nil
}

// Get returns the stored digest for date.
func (c *Composer) Get(ctx context.Context, date string) (*core.Digest, error) {
	date, err := c.normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return c.digests.GetByDate(ctx, date)
}

// Delete removes the stored digest for date.
func (c *Composer) Delete(ctx context.Context, date string) error {
	date, err := c.normalizeDate(date)
	if err != nil {
		return err
	}
	if err := c.digests.Delete(ctx, date); err != nil {
		return err
	}
	c.log.Info("Digest deleted", "date", date)
	return nil
}

// List returns the most recent digests.
func (c *Composer) List(ctx context.Context, limit int) ([]core.Digest, error) {
	return c.digests.List(ctx, limit)
}

func (c *Composer) normalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return c.Today(), nil
	}
	return ValidateDate(date)
}

// ValidateDate checks that date is a real YYYY-MM-DD calendar date.
func ValidateDate(date string) (string, error) {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return core.DigestDate(t), nil
}

// BuildListing numbers the articles for the digest prompt. Each entry gives
// the title and source followed by the summary, or a content preview when the
// article has not been summarised.
func BuildListing(articles []core.Article) string {
	entries := make([]string, 0, len(articles))
	for i, a := range articles {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s** (Source: %s)\n", i+1, a.Title, a.Source)
		if a.HasSummary() {
			fmt.Fprintf(&b, "   Summary: %s\n", a.Summary)
		} else {
			fmt.Fprintf(&b, "   Content: %s...\n", preview(a.Content, ContentPreviewChars))
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n")
}

func preview(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
