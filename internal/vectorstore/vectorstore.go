// Package vectorstore scores stored article embeddings against a query vector
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"newsdesk/internal/core"
	"newsdesk/internal/logger"
)

const (
	// DefaultLimit is the number of results returned when none is requested.
	DefaultLimit = 10
	// DefaultSimilarityThreshold is the minimum remapped cosine score for a match.
	DefaultSimilarityThreshold = 0.65
)

// VectorStore provides semantic search operations for article embeddings
type VectorStore interface {
	// Search finds articles similar to the query embedding, highest score first
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)

	// GetStats returns statistics about the stored embeddings
	GetStats(ctx context.Context) (*VectorStoreStats, error)
}

// SearchQuery configures semantic search parameters
type SearchQuery struct {
	// Embedding is the query vector
	Embedding []float64

	// Limit is the maximum number of results to return (default: 10)
	Limit int

	// SimilarityThreshold is the minimum score in [0,1] (default: 0.65)
	SimilarityThreshold float64

	// ExcludeIDs filters out specific articles (useful for "more like this" queries)
	ExcludeIDs []string
}

// SearchResult contains a similar article and its similarity score
type SearchResult struct {
	Article    core.Article
	Similarity float64
}

// VectorStoreStats provides metrics about the vector store
type VectorStoreStats struct {
	// TotalEmbeddings is the count of stored embeddings
	TotalEmbeddings int64

	// EmbeddingDimensions is the vector size of the first stored embedding
	EmbeddingDimensions int
}

// DefaultSearchQuery returns sensible defaults
func DefaultSearchQuery(embedding []float64) SearchQuery {
	return SearchQuery{
		Embedding:           embedding,
		Limit:               DefaultLimit,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Rank scores every article that has an embedding against query.Embedding,
// sorts by score descending, keeps scores at or above the threshold and
// truncates to the limit. Ties keep input order. Articles whose score cannot
// be computed are logged and skipped.
func Rank(articles []core.Article, query SearchQuery, log *slog.Logger) []SearchResult {
	if log == nil {
		log = logger.Get()
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	excluded := make(map[string]bool, len(query.ExcludeIDs))
	for _, id := range query.ExcludeIDs {
		excluded[id] = true
	}

	results := make([]SearchResult, 0, len(articles))
	for _, article := range articles {
		if !article.HasEmbedding() || excluded[article.ID] {
			continue
		}
		score, err := Similarity(query.Embedding, article.Embedding)
		if err != nil {
			log.Warn("Skipping article with unscorable embedding", "article_id", article.ID, "error", err)
			continue
		}
		results = append(results, SearchResult{Article: article, Similarity: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	kept := results[:0]
	for _, r := range results {
		if r.Similarity >= query.SimilarityThreshold {
			kept = append(kept, r)
		}
	}

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// EmbeddingSource lists every stored article that has an embedding, in a stable order.
type EmbeddingSource interface {
	ListWithEmbeddings(ctx context.Context) ([]core.Article, error)
}

// BruteForce is a VectorStore that scans every stored embedding per query.
type BruteForce struct {
	source EmbeddingSource
	log    *slog.Logger
}

// NewBruteForce creates a full-scan vector store over source.
func NewBruteForce(source EmbeddingSource, log *slog.Logger) *BruteForce {
	if log == nil {
		log = logger.Get()
	}
	return &BruteForce{source: source, log: log}
}

// Search implements VectorStore.
func (b *BruteForce) Search(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	articles, err := b.source.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	return Rank(articles, query, b.log), nil
}

// GetStats implements VectorStore.
func (b *BruteForce) GetStats(ctx context.Context) (*VectorStoreStats, error) {
	articles, err := b.source.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	stats := &VectorStoreStats{TotalEmbeddings: int64(len(articles))}
	if len(articles) > 0 {
		stats.EmbeddingDimensions = len(articles[0].Embedding)
	}
	return stats, nil
}
