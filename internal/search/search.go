// Package search answers free-text queries by embedding similarity over stored articles
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/vectorstore"
)

// Embedder turns query text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Options bounds one search
type Options struct {
	Limit         int
	MinSimilarity float64
}

// DefaultOptions returns the standard result size and similarity threshold
func DefaultOptions() Options {
	return Options{
		Limit:         vectorstore.DefaultLimit,
		MinSimilarity: vectorstore.DefaultSimilarityThreshold,
	}
}

// Service performs semantic search
type Service struct {
	embedder Embedder
	store    vectorstore.VectorStore
	log      *slog.Logger
}

// NewService creates a search service. embedder may be nil when no
// embedding provider is configured; Search then reports llm.ErrNotConfigured.
func NewService(embedder Embedder, store vectorstore.VectorStore, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Get()
	}
	return &Service{embedder: embedder, store: store, log: log}
}

// Search returns up to opts.Limit articles scoring at least opts.MinSimilarity
// against query, best first. Blank queries return nothing without calling the
// embedder. Embedding and store failures degrade to an empty result; only an
// unconfigured embedder is reported as an error.
func (s *Service) Search(ctx context.Context, query string, opts Options) ([]vectorstore.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []vectorstore.SearchResult{}, nil
	}
	if s.embedder == nil {
		return nil, llm.ErrNotConfigured
	}
	if opts.Limit <= 0 {
		opts.Limit = vectorstore.DefaultLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, err
		}
		s.log.Error("Failed to embed search query", "error", err)
		return []vectorstore.SearchResult{}, nil
	}
	if len(embedding) == 0 {
		s.log.Warn("Empty embedding for search query")
		return []vectorstore.SearchResult{}, nil
	}

	results, err := s.store.Search(ctx, vectorstore.SearchQuery{
		Embedding:           embedding,
		Limit:               opts.Limit,
		SimilarityThreshold: opts.MinSimilarity,
	})
	if err != nil {
		s.log.Error("Semantic search failed", "error", err)
		return []vectorstore.SearchResult{}, nil
	}

	s.log.Info("Semantic search completed", "results", len(results), "limit", opts.Limit, "min_similarity", opts.MinSimilarity)
	return results, nil
}
