package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"newsdesk/internal/core"
	"newsdesk/internal/feeds"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
	"newsdesk/internal/persistence/persistencetest"
)

// flakyStore wraps a real store and fails Create for selected links.
type flakyStore struct {
	ArticleStore
	failLinks map[string]error
	creates   int
}

func (s *flakyStore) Create(ctx context.Context, article *core.Article) error {
	s.creates++
	if err, ok := s.failLinks[article.Link]; ok {
		return err
	}
	return s.ArticleStore.Create(ctx, article)
}

type staticSource struct {
	candidates []core.Candidate
}

func (s staticSource) RunAllSources(ctx context.Context) ([]core.Candidate, feeds.RunReport) {
	return s.candidates, feeds.RunReport{Total: len(s.candidates)}
}

func candidate(link string) core.Candidate {
	return core.Candidate{Title: "T " + link, Link: link, Source: "Test", Content: "c"}
}

func TestPersist_Idempotent(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	pipeline := NewPipeline(nil, db.Articles(), logger.Discard())
	ctx := context.Background()

	batch := []core.Candidate{candidate("https://x.test/1"), candidate("https://x.test/2"), candidate("https://x.test/3")}

	first, err := pipeline.Persist(ctx, batch)
	if err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	if first.Inserted != 3 {
		t.Errorf("Expected 3 inserted, got %+v", first)
	}

	second, err := pipeline.Persist(ctx, batch)
	if err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	if second.Inserted != 0 || second.DuplicatesInStore != 3 {
		t.Errorf("Expected all duplicates on second run, got %+v", second)
	}

	count, err := db.Articles().Count(ctx, persistence.ListOptions{})
	if err != nil || count != 3 {
		t.Errorf("Expected store size 3, got %d (%v)", count, err)
	}
}

func TestPersist_InBatchDuplicates(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	pipeline := NewPipeline(nil, db.Articles(), logger.Discard())
	ctx := context.Background()

	first := candidate("https://x.test/same")
	first.Source = "First"
	second := candidate("https://x.test/same")
	second.Source = "Second"

	report, err := pipeline.Persist(ctx, []core.Candidate{first, second})
	if err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	if report.Inserted != 1 || report.DuplicatesInBatch != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}

	stored, err := db.Articles().Get(ctx, core.ArticleID("https://x.test/same"))
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if stored.Source != "First" {
		t.Errorf("Expected first occurrence kept, got source %q", stored.Source)
	}
}

func TestPersist_FailureDoesNotBlockLaterCandidates(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	store := &flakyStore{
		ArticleStore: db.Articles(),
		failLinks: map[string]error{
			"https://x.test/bad": errors.New("disk full"),
		},
	}
	pipeline := NewPipeline(nil, store, logger.Discard())

	var batch []core.Candidate
	for i := 0; i < 5; i++ {
		if i == 2 {
			batch = append(batch, candidate("https://x.test/bad"))
		}
		batch = append(batch, candidate(fmt.Sprintf("https://x.test/%d", i)))
	}

	report, err := pipeline.Persist(context.Background(), batch)
	if err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	if report.Inserted != 5 || report.Failed != 1 {
		t.Errorf("Expected 5 inserted and 1 failed, got %+v", report)
	}
}

func TestPersist_UniquenessRaceCountsAsDuplicate(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	store := &flakyStore{
		ArticleStore: db.Articles(),
		failLinks: map[string]error{
			"https://x.test/raced": fmt.Errorf("create article: %w", persistence.ErrDuplicate),
		},
	}
	pipeline := NewPipeline(nil, store, logger.Discard())

	report, err := pipeline.Persist(context.Background(), []core.Candidate{
		candidate("https://x.test/raced"),
		candidate("https://x.test/fine"),
	})
	if err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	if report.DuplicatesInStore != 1 || report.Failed != 0 || report.Inserted != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestPersist_CancelledContext(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	pipeline := NewPipeline(nil, db.Articles(), logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := pipeline.Persist(ctx, []core.Candidate{candidate("https://x.test/1")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if report.Inserted != 0 {
		t.Errorf("Expected nothing inserted, got %+v", report)
	}
}

func TestRun(t *testing.T) {
	db := persistencetest.OpenSQLite(t)
	source := staticSource{candidates: []core.Candidate{
		candidate("https://x.test/a"),
		candidate("https://x.test/b"),
		candidate("https://x.test/a"),
	}}
	pipeline := NewPipeline(source, db.Articles(), logger.Discard())

	result, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.Feeds.Total != 3 || result.Report.Inserted != 2 || result.Report.DuplicatesInBatch != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}

	if _, err := NewPipeline(nil, db.Articles(), logger.Discard()).Run(context.Background()); err == nil {
		t.Error("Expected error without a candidate source")
	}
}

func TestOutcomeString(t *testing.T) {
	if Inserted.String() != "inserted" || Duplicate.String() != "duplicate" || Failed.String() != "failed" {
		t.Error("Unexpected outcome names")
	}
}
