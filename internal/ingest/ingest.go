// Package ingest deduplicates feed candidates and persists the new ones
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/feeds"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
)

// Outcome tags what happened to one candidate.
type Outcome int

const (
	// Inserted means a new row was committed.
	Inserted Outcome = iota
	// Duplicate means the link was already known, in the batch or in the store.
	Duplicate
	// Failed means the candidate could not be stored; later candidates are unaffected.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Report counts what a Persist call did with its candidates.
type Report struct {
	Candidates        int `json:"candidates"`
	DuplicatesInBatch int `json:"duplicates_in_batch"`
	DuplicatesInStore int `json:"duplicates_in_store"`
	Inserted          int `json:"inserted"`
	Failed            int `json:"failed"`
}

// RunResult is the outcome of a full fetch-and-persist cycle.
type RunResult struct {
	Feeds  feeds.RunReport `json:"feeds"`
	Report Report          `json:"report"`
}

// Pipeline persists article candidates with two-layer deduplication on link
type Pipeline struct {
	source CandidateSource
	store  ArticleStore
	now    func() time.Time
	log    *slog.Logger
}

// NewPipeline creates an ingestion pipeline. source may be nil when only Persist is used.
func NewPipeline(source CandidateSource, store ArticleStore, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	return &Pipeline{
		source: source,
		store:  store,
		now:    time.Now,
		log:    log,
	}
}

// Run extracts candidates from every source and persists the new ones.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	if p.source == nil {
		return RunResult{}, errors.New("ingest pipeline has no candidate source")
	}
	candidates, feedReport := p.source.RunAllSources(ctx)
	report, err := p.Persist(ctx, candidates)
	return RunResult{Feeds: feedReport, Report: report}, err
}

// Persist stores candidates whose link is new. Later duplicates within the
// batch are dropped, then each survivor is checked against the store and
// committed on its own, so one failing candidate never blocks the rest.
// Report.Inserted is the number of rows actually created.
func (p *Pipeline) Persist(ctx context.Context, candidates []core.Candidate) (Report, error) {
	report := Report{Candidates: len(candidates)}

	unique := dedupeBatch(candidates)
	report.DuplicatesInBatch = len(candidates) - len(unique)

	for _, candidate := range unique {
		if err := ctx.Err(); err != nil {
			p.log.Warn("Ingestion interrupted", "inserted", report.Inserted, "error", err)
			return report, err
		}

		switch p.persistOne(ctx, candidate) {
		case Inserted:
			report.Inserted++
		case Duplicate:
			report.DuplicatesInStore++
		case Failed:
			report.Failed++
		}
	}

	p.log.Info("Ingestion finished",
		"candidates", report.Candidates,
		"inserted", report.Inserted,
		"duplicates_in_batch", report.DuplicatesInBatch,
		"duplicates_in_store", report.DuplicatesInStore,
		"failed", report.Failed,
	)
	return report, nil
}

func (p *Pipeline) persistOne(ctx context.Context, candidate core.Candidate) Outcome {
	exists, err := p.store.ExistsByLink(ctx, candidate.Link)
	if err != nil {
		p.log.Error("Failed to check article link", "link", candidate.Link, "error", err)
		return Failed
	}
	if exists {
		return Duplicate
	}

	article := core.NewArticle(candidate, p.now())
	if err := p.store.Create(ctx, &article); err != nil {
		// A concurrent run may have inserted the same link since the check.
		if errors.Is(err, persistence.ErrDuplicate) {
			p.log.Debug("Article inserted concurrently", "link", candidate.Link)
			return Duplicate
		}
		p.log.Error("Failed to save article", "link", candidate.Link, "error", err)
		return Failed
	}
	return Inserted
}

// dedupeBatch keeps the first occurrence of each link, preserving order.
func dedupeBatch(candidates []core.Candidate) []core.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Link]; ok {
			continue
		}
		seen[c.Link] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
