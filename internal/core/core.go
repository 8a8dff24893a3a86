package core

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for digest keys.
const DateLayout = "2006-01-02"

// Source is a configured feed origin.
type Source struct {
	Name string `json:"name"` // Display name, e.g. "SBC News"
	URL  string `json:"url"`  // Feed URL
}

// Candidate is an article extracted from a feed that has not been checked against the store yet.
type Candidate struct {
	Title         string     `json:"title"`
	Link          string     `json:"link"`
	Source        string     `json:"source"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Content       string     `json:"content"`
}

// Article represents a deduplicated news item. Link is the natural key.
type Article struct {
	ID            string     `json:"id"`                       // Derived from Link, see ArticleID
	Title         string     `json:"title"`                    // Entry title
	Link          string     `json:"link"`                     // Unique article URL
	Source        string     `json:"source"`                   // Configured source name
	PublishedDate *time.Time `json:"published_date,omitempty"` // Nil when the feed omits it or it is unparseable
	Content       string     `json:"content"`                  // Plain-text excerpt
	Summary       string     `json:"summary,omitempty"`        // Generated summary, empty until enriched
	Embedding     []float64  `json:"embedding,omitempty"`      // Vector embedding, nil until enriched
	CreatedAt     time.Time  `json:"created_at"`               // Ingestion time, set once
}

// NewArticle builds the stored form of a candidate.
func NewArticle(c Candidate, now time.Time) Article {
	return Article{
		ID:            ArticleID(c.Link),
		Title:         c.Title,
		Link:          c.Link,
		Source:        c.Source,
		PublishedDate: c.PublishedDate,
		Content:       c.Content,
		CreatedAt:     now.UTC(),
	}
}

// ArticleID creates a deterministic ID for an article based on its link.
func ArticleID(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

// HasSummary reports whether a generated summary is present.
func (a Article) HasSummary() bool { return a.Summary != "" }

// HasEmbedding reports whether an embedding is present.
func (a Article) HasEmbedding() bool { return len(a.Embedding) > 0 }

// NeedsEnrichment reports whether the summary or the embedding is still missing.
func (a Article) NeedsEnrichment() bool { return !a.HasSummary() || !a.HasEmbedding() }

// Enrichment carries derived fields for a stored article.
// Nil fields are left untouched.
type Enrichment struct {
	Summary   *string
	Embedding []float64
}

// IsEmpty reports whether the enrichment carries no fields.
func (e Enrichment) IsEmpty() bool { return e.Summary == nil && len(e.Embedding) == 0 }

// Digest is one generated narrative per calendar date.
type Digest struct {
	Date         string    `json:"digest_date"` // YYYY-MM-DD, unique
	Content      string    `json:"content"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// DigestDate formats t as a digest key.
func DigestDate(t time.Time) string { return t.Format(DateLayout) }
