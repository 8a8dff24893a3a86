package vectorstore

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"newsdesk/internal/core"
	"newsdesk/internal/logger"
)

const tolerance = 1e-9

func TestSimilarity_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		v := make([]float64, 16)
		neg := make([]float64, 16)
		for j := range v {
			v[j] = rng.Float64()*2 - 1
			neg[j] = -v[j]
		}

		if got := CosineSimilarity(v, v); math.Abs(got-1) > tolerance {
			t.Fatalf("self-similarity = %v, want 1", got)
		}
		if got := CosineSimilarity(v, neg); math.Abs(got) > tolerance {
			t.Fatalf("similarity with negation = %v, want 0", got)
		}

		other := make([]float64, 16)
		for j := range other {
			other[j] = rng.Float64()*2 - 1
		}
		if got := CosineSimilarity(v, other); got < 0 || got > 1 {
			t.Fatalf("score %v outside [0,1]", got)
		}
	}
}

func TestSimilarity_Orthogonal(t *testing.T) {
	got := CosineSimilarity([]float64{1, 0, 0}, []float64{0, 3, 0})
	if math.Abs(got-0.5) > tolerance {
		t.Errorf("orthogonal similarity = %v, want 0.5", got)
	}
}

func TestSimilarity_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
	}{
		{"empty", []float64{}, []float64{1, 2}},
		{"nil", nil, []float64{1, 2}},
		{"both empty", nil, nil},
		{"zero vector", []float64{0, 0}, []float64{1, 2}},
		{"mismatched dimensions", []float64{1, 2, 3}, []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != 0 {
				t.Errorf("CosineSimilarity() = %v, want 0", got)
			}
		})
	}

	if _, err := Similarity([]float64{1}, []float64{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Similarity([]float64{math.NaN()}, []float64{1}); err == nil {
		t.Error("Expected error for NaN input")
	}
}

// unitAt returns a 2-d unit vector whose remapped similarity to [1,0] is score.
func unitAt(score float64) []float64 {
	cos := 2*score - 1
	return []float64{cos, math.Sqrt(1 - cos*cos)}
}

func article(id string, embedding []float64) core.Article {
	return core.Article{ID: id, Link: "https://x.test/" + id, Embedding: embedding}
}

func TestRank_ThresholdAndOrder(t *testing.T) {
	articles := []core.Article{
		article("low", unitAt(0.5)),
		article("mid", unitAt(0.7)),
		article("high", unitAt(0.9)),
	}
	query := SearchQuery{Embedding: []float64{1, 0}, Limit: 10, SimilarityThreshold: 0.65}

	results := Rank(articles, query, logger.Discard())
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Article.ID != "high" || results[1].Article.ID != "mid" {
		t.Errorf("Unexpected order: %s, %s", results[0].Article.ID, results[1].Article.ID)
	}
	if math.Abs(results[0].Similarity-0.9) > 1e-6 {
		t.Errorf("Expected score 0.9, got %v", results[0].Similarity)
	}
}

func TestRank_Limit(t *testing.T) {
	articles := []core.Article{
		article("a", unitAt(0.8)),
		article("b", unitAt(0.95)),
		article("c", unitAt(0.9)),
	}
	results := Rank(articles, SearchQuery{Embedding: []float64{1, 0}, Limit: 1, SimilarityThreshold: 0.65}, logger.Discard())
	if len(results) != 1 || results[0].Article.ID != "b" {
		t.Errorf("Expected only the best match, got %+v", results)
	}
}

func TestRank_FilterBeforeTruncate(t *testing.T) {
	// A low scorer early in scan order must not take a slot.
	articles := []core.Article{
		article("low", unitAt(0.1)),
		article("ok1", unitAt(0.7)),
		article("ok2", unitAt(0.8)),
	}
	results := Rank(articles, SearchQuery{Embedding: []float64{1, 0}, Limit: 2, SimilarityThreshold: 0.65}, logger.Discard())
	if len(results) != 2 || results[0].Article.ID != "ok2" || results[1].Article.ID != "ok1" {
		t.Errorf("Unexpected results: %+v", results)
	}
}

func TestRank_SkipsMissingAndBrokenEmbeddings(t *testing.T) {
	articles := []core.Article{
		article("none", nil),
		article("wrong-dims", []float64{1, 0, 0}),
		article("good", unitAt(0.9)),
	}
	results := Rank(articles, SearchQuery{Embedding: []float64{1, 0}, Limit: 10, SimilarityThreshold: 0}, logger.Discard())
	if len(results) != 1 || results[0].Article.ID != "good" {
		t.Errorf("Expected only the valid article, got %+v", results)
	}
}

func TestRank_TiesKeepScanOrder(t *testing.T) {
	articles := []core.Article{
		article("first", []float64{1, 0}),
		article("second", []float64{2, 0}),
		article("third", []float64{3, 0}),
	}
	results := Rank(articles, SearchQuery{Embedding: []float64{1, 0}, Limit: 10, SimilarityThreshold: 0.5}, logger.Discard())
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"first", "second", "third"} {
		if results[i].Article.ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, results[i].Article.ID)
		}
	}
}

func TestRank_ExcludeIDs(t *testing.T) {
	articles := []core.Article{article("a", unitAt(0.9)), article("b", unitAt(0.8))}
	results := Rank(articles, SearchQuery{Embedding: []float64{1, 0}, SimilarityThreshold: 0.5, ExcludeIDs: []string{"a"}}, logger.Discard())
	if len(results) != 1 || results[0].Article.ID != "b" {
		t.Errorf("Expected excluded article to be dropped, got %+v", results)
	}
}

type staticSource struct {
	articles []core.Article
	err      error
}

func (s staticSource) ListWithEmbeddings(ctx context.Context) ([]core.Article, error) {
	return s.articles, s.err
}

func TestBruteForce(t *testing.T) {
	store := NewBruteForce(staticSource{articles: []core.Article{
		article("a", unitAt(0.9)),
		article("b", unitAt(0.2)),
	}}, logger.Discard())

	results, err := store.Search(context.Background(), DefaultSearchQuery([]float64{1, 0}))
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Article.ID != "a" {
		t.Errorf("Unexpected results: %+v", results)
	}

	stats, err := store.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.TotalEmbeddings != 2 || stats.EmbeddingDimensions != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	broken := NewBruteForce(staticSource{err: errors.New("db down")}, logger.Discard())
	if _, err := broken.Search(context.Background(), DefaultSearchQuery([]float64{1, 0})); err == nil {
		t.Error("Expected error when the store fails")
	}
}
