package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence/persistencetest"
	"newsdesk/internal/vectorstore"
)

type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	return f.vector, f.err
}

type fakeSource struct {
	articles []core.Article
	err      error
}

func (f fakeSource) ListWithEmbeddings(ctx context.Context) ([]core.Article, error) {
	return f.articles, f.err
}

// unitAt returns a 2-d unit vector whose remapped similarity to [1,0] is score.
func unitAt(score float64) []float64 {
	cos := 2*score - 1
	return []float64{cos, math.Sqrt(1 - cos*cos)}
}

func newService(embedder Embedder, articles []core.Article) *Service {
	store := vectorstore.NewBruteForce(fakeSource{articles: articles}, logger.Discard())
	return NewService(embedder, store, logger.Discard())
}

func scoredArticles() []core.Article {
	return []core.Article{
		{ID: "a", Title: "Mid", Embedding: unitAt(0.7)},
		{ID: "b", Title: "Top", Embedding: unitAt(0.9)},
		{ID: "c", Title: "Low", Embedding: unitAt(0.5)},
		{ID: "d", Title: "Unembedded"},
	}
}

func TestSearch_BlankQuerySkipsEmbedder(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{1, 0}}
	svc := newService(embedder, scoredArticles())

	for _, q := range []string{"", "   ", "\n\t"} {
		results, err := svc.Search(context.Background(), q, DefaultOptions())
		if err != nil {
			t.Fatalf("Search(%q) error: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results", q, len(results))
		}
	}
	if embedder.calls != 0 {
		t.Errorf("Embedder called %d times for blank queries", embedder.calls)
	}
}

func TestSearch_ThresholdAndOrder(t *testing.T) {
	svc := newService(&fakeEmbedder{vector: []float64{1, 0}}, scoredArticles())

	results, err := svc.Search(context.Background(), "casino merger", Options{Limit: 10, MinSimilarity: 0.65})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Article.ID != "b" || results[1].Article.ID != "a" {
		t.Errorf("Expected b then a, got %s then %s", results[0].Article.ID, results[1].Article.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("Results not in descending score order")
	}
}

func TestSearch_LimitOne(t *testing.T) {
	articles := []core.Article{
		{ID: "x", Embedding: unitAt(0.8)},
		{ID: "y", Embedding: unitAt(0.95)},
		{ID: "z", Embedding: unitAt(0.7)},
	}
	svc := newService(&fakeEmbedder{vector: []float64{1, 0}}, articles)

	results, err := svc.Search(context.Background(), "q", Options{Limit: 1, MinSimilarity: 0.65})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Article.ID != "y" {
		t.Errorf("Expected only y, got %+v", results)
	}
}

func TestSearch_MissingEmbeddingNeverReturned(t *testing.T) {
	svc := newService(&fakeEmbedder{vector: []float64{1, 0}}, scoredArticles())

	results, err := svc.Search(context.Background(), "q", Options{Limit: 100, MinSimilarity: 0})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	for _, r := range results {
		if r.Article.ID == "d" {
			t.Error("Article without embedding was returned")
		}
	}
	if len(results) != 3 {
		t.Errorf("Expected the 3 embedded articles, got %d", len(results))
	}
}

func TestSearch_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		source   fakeSource
	}{
		{"embed failure", &fakeEmbedder{err: llm.ErrConnectivity}, fakeSource{articles: scoredArticles()}},
		{"empty embedding", &fakeEmbedder{}, fakeSource{articles: scoredArticles()}},
		{"store failure", &fakeEmbedder{vector: []float64{1, 0}}, fakeSource{err: errors.New("db down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := vectorstore.NewBruteForce(tt.source, logger.Discard())
			svc := NewService(tt.embedder, store, logger.Discard())

			results, err := svc.Search(context.Background(), "q", DefaultOptions())
			if err != nil {
				t.Fatalf("Expected graceful degradation, got %v", err)
			}
			if len(results) != 0 {
				t.Errorf("Expected empty result, got %d", len(results))
			}
		})
	}
}

func TestSearch_LogsStoreFailure(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	store := vectorstore.NewBruteForce(fakeSource{err: errors.New("db down")}, logger.Discard())
	svc := NewService(&fakeEmbedder{vector: []float64{1, 0}}, store, log)

	if _, err := svc.Search(context.Background(), "licences", DefaultOptions()); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"error":"load embeddings: db down"`) {
		t.Errorf("Expected the store error in the log, got %s", buf.String())
	}
}

func TestSearch_NotConfigured(t *testing.T) {
	svc := NewService(nil, vectorstore.NewBruteForce(fakeSource{}, logger.Discard()), logger.Discard())
	if _, err := svc.Search(context.Background(), "q", DefaultOptions()); !errors.Is(err, llm.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestSearch_AgainstStore(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	links := []string{"https://x.test/a", "https://x.test/b", "https://x.test/c"}
	for i, score := range []float64{0.9, 0.7, 0.5} {
		a := core.NewArticle(core.Candidate{Title: "T", Link: links[i], Source: "S"}, now.Add(time.Duration(i)*time.Minute))
		if err := db.Articles().Create(ctx, &a); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if err := db.Articles().ApplyEnrichment(ctx, a.ID, core.Enrichment{Embedding: unitAt(score)}); err != nil {
			t.Fatalf("ApplyEnrichment() failed: %v", err)
		}
	}
	unembedded := core.NewArticle(core.Candidate{Title: "T", Link: "https://x.test/none", Source: "S"}, now)
	if err := db.Articles().Create(ctx, &unembedded); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	svc := NewService(&fakeEmbedder{vector: []float64{1, 0}}, vectorstore.NewBruteForce(db.Articles(), logger.Discard()), logger.Discard())
	results, err := svc.Search(ctx, "q", DefaultOptions())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 2 || results[0].Article.Link != "https://x.test/a" || results[1].Article.Link != "https://x.test/b" {
		t.Errorf("Unexpected results: %+v", results)
	}
}
