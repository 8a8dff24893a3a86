package feeds

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/core"
	"newsdesk/internal/logger"
	"newsdesk/internal/parser"
	"newsdesk/internal/throttle"
)

// DefaultTitle is used for entries that carry no title.
const DefaultTitle = "No title"

// Extractor turns configured feed sources into article candidates.
type Extractor struct {
	fetcher      Fetcher
	sources      []core.Source
	maxItems     int
	excerptChars int
	gate         *throttle.Gate
	log          *slog.Logger
}

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	MaxItems     int
	ExcerptChars int
	// Pacing spaces consecutive source fetches apart.
	Pacing time.Duration
	Logger *slog.Logger
}

// NewExtractor creates an Extractor over the given sources.
func NewExtractor(fetcher Fetcher, sources []core.Source, opts ExtractorOptions) *Extractor {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 10
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = 250
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Extractor{
		fetcher:      fetcher,
		sources:      sources,
		maxItems:     opts.MaxItems,
		excerptChars: opts.ExcerptChars,
		gate:         throttle.NewGate(opts.Pacing),
		log:          opts.Logger,
	}
}

// Sources returns the configured sources.
func (e *Extractor) Sources() []core.Source {
	return e.sources
}

// SourceResult records what one source contributed to a run.
type SourceResult struct {
	Source     core.Source `json:"source"`
	Candidates int         `json:"candidates"`
	Error      string      `json:"error,omitempty"`
}

// RunReport summarises a RunAllSources pass.
type RunReport struct {
	Sources []SourceResult `json:"sources"`
	Total   int            `json:"total"`
	Failed  int            `json:"failed"`
}

// FetchAndExtract fetches one source and returns up to maxItems candidates in
// feed order. Transport or parse failures are logged and reported alongside an
// empty candidate list.
func (e *Extractor) FetchAndExtract(ctx context.Context, source core.Source, maxItems int) ([]core.Candidate, error) {
	feed, err := e.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		e.log.Error("Failed to fetch feed", "source", source.Name, "url", source.URL, "error", err)
		return nil, err
	}
	if feed == nil {
		return nil, nil
	}

	items := feed.Items
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	candidates := make([]core.Candidate, 0, len(items))
	for _, item := range items {
		candidate, ok := e.extract(item, source)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	e.log.Info("Extracted feed entries", "source", source.Name, "entries", len(feed.Items), "candidates", len(candidates))
	return candidates, nil
}

// RunAllSources extracts every configured source in order and concatenates
// the candidates. A failing source contributes nothing and never stops the run.
func (e *Extractor) RunAllSources(ctx context.Context) ([]core.Candidate, RunReport) {
	var (
		all    []core.Candidate
		report RunReport
	)

	for _, source := range e.sources {
		if err := e.gate.Wait(ctx); err != nil {
			e.log.Warn("Feed run interrupted", "error", err)
			break
		}

		candidates, err := e.FetchAndExtract(ctx, source, e.maxItems)
		result := SourceResult{Source: source, Candidates: len(candidates)}
		if err != nil {
			result.Error = err.Error()
			report.Failed++
		}
		report.Sources = append(report.Sources, result)
		all = append(all, candidates...)
	}

	report.Total = len(all)
	return all, report
}

// extract maps one feed entry to a candidate. Entries without a link are dropped.
func (e *Extractor) extract(item *gofeed.Item, source core.Source) (core.Candidate, bool) {
	if item == nil {
		return core.Candidate{}, false
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		return core.Candidate{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = DefaultTitle
	}

	return core.Candidate{
		Title:         title,
		Link:          link,
		Source:        source.Name,
		PublishedDate: publishedDate(item),
		Content:       parser.Excerpt(parser.Normalize(bestContent(item)), e.excerptChars),
	}, true
}

// bestContent prefers the full body, then the summary or description.
// gofeed exposes an Atom summary and an RSS description through the same field.
func bestContent(item *gofeed.Item) string {
	if strings.TrimSpace(item.Content) != "" {
		return item.Content
	}
	return item.Description
}

// publishedDate uses the published stamp, falling back to the updated one.
func publishedDate(item *gofeed.Item) *time.Time {
	if item.Published != "" {
		if t := parser.ParseTimestamp(item.Published); t != nil {
			return t
		}
	}
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.Updated != "" {
		if t := parser.ParseTimestamp(item.Updated); t != nil {
			return t
		}
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}
