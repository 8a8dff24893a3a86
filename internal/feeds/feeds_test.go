package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/core"
	"newsdesk/internal/logger"
)

type fakeFetcher struct {
	feeds map[string]*gofeed.Feed
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	f.calls = append(f.calls, feedURL)
	if err, ok := f.errs[feedURL]; ok {
		return nil, err
	}
	return f.feeds[feedURL], nil
}

func newTestExtractor(fetcher Fetcher, sources []core.Source, maxItems int) *Extractor {
	return NewExtractor(fetcher, sources, ExtractorOptions{
		MaxItems:     maxItems,
		ExcerptChars: 250,
		Logger:       logger.Discard(),
	})
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.yogonet.com/international/europe/rss.xml", "Yogonet Europe"},
		{"https://www.yogonet.com/international/united-states/rss.xml", "Yogonet US"},
		{"https://www.yogonet.com/international/latin-america/rss.xml", "Yogonet Latin America"},
		{"https://www.yogonet.com/international/asia/rss.xml", "Yogonet Asia"},
		{"https://www.yogonet.com/international/online-gaming/rss.xml", "Yogonet Online Gaming"},
		{"https://www.yogonet.com/international/africa/rss.xml", "Yogonet"},
		{"https://europeangaming.eu/portal/feed/", "European Gaming"},
		{"https://igamingbusiness.com/company-news/feed/", "iGaming Business"},
		{"https://www.cdcgamingreports.com/feed/", "CDC Gaming Reports"},
		{"https://casinobeats.com/feed/", "Casino Beats"},
		{"https://sbcnews.co.uk/feed/", "SBC News"},
		{"https://www.slotbeats.com/feed/", "Slot Beats"},
		{"https://www.example.org/rss", "Example"},
		{"https://news.example.org/rss", "News"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := SourceName(tt.url); got != tt.expected {
			t.Errorf("SourceName(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}

func TestSourceNames_Distinct(t *testing.T) {
	sources := Sources([]string{
		"https://sbcnews.co.uk/feed/",
		"https://sbcnews.co.uk/other-feed/",
		"https://casinobeats.com/feed/",
	})
	names := SourceNames(sources)
	if len(names) != 2 || names[0] != "SBC News" || names[1] != "Casino Beats" {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestFetchAndExtract(t *testing.T) {
	published := "Tue, 10 Jun 2025 14:30:00 +0000"
	long := "<p>" + strings.Repeat("word ", 100) + "</p>"

	feed := &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Full body", Link: "https://x.test/1", Content: "<p>Body <b>text</b></p>", Description: "ignored", Published: published},
		{Title: "", Link: "https://x.test/2", Description: "Only description"},
		{Title: "No link", Link: "", Description: "dropped"},
		{Title: "Long", Link: "https://x.test/3", Description: long, Published: "garbage", Updated: published},
	}}
	source := core.Source{Name: "Test Source", URL: "https://x.test/feed"}
	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{source.URL: feed}}

	candidates, err := newTestExtractor(fetcher, nil, 10).FetchAndExtract(context.Background(), source, 10)
	if err != nil {
		t.Fatalf("FetchAndExtract() failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Content != "Body text" {
		t.Errorf("Expected full content preferred, got %q", first.Content)
	}
	if first.Source != "Test Source" {
		t.Errorf("Expected source name, got %q", first.Source)
	}
	if first.PublishedDate == nil || !first.PublishedDate.Equal(time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected published date: %v", first.PublishedDate)
	}

	second := candidates[1]
	if second.Title != DefaultTitle {
		t.Errorf("Expected default title, got %q", second.Title)
	}
	if second.Content != "Only description" {
		t.Errorf("Expected description fallback, got %q", second.Content)
	}
	if second.PublishedDate != nil {
		t.Errorf("Expected nil date, got %v", second.PublishedDate)
	}

	third := candidates[2]
	if len([]rune(third.Content)) != 253 || !strings.HasSuffix(third.Content, "...") {
		t.Errorf("Expected truncated excerpt of 253 chars, got %d", len([]rune(third.Content)))
	}
	if third.PublishedDate == nil {
		t.Error("Expected updated date fallback")
	}
}

func TestFetchAndExtract_CapsInFeedOrder(t *testing.T) {
	var items []*gofeed.Item
	for i := 0; i < 5; i++ {
		items = append(items, &gofeed.Item{Title: fmt.Sprintf("Item %d", i), Link: fmt.Sprintf("https://x.test/%d", i)})
	}
	source := core.Source{Name: "S", URL: "https://x.test/feed"}
	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{source.URL: {Items: items}}}

	candidates, err := newTestExtractor(fetcher, nil, 2).FetchAndExtract(context.Background(), source, 2)
	if err != nil {
		t.Fatalf("FetchAndExtract() failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Title != "Item 0" || candidates[1].Title != "Item 1" {
		t.Errorf("Expected first entries in feed order, got %q, %q", candidates[0].Title, candidates[1].Title)
	}
}

func TestRunAllSources_IsolatesFailures(t *testing.T) {
	sources := []core.Source{
		{Name: "Broken", URL: "https://broken.test/feed"},
		{Name: "Working", URL: "https://working.test/feed"},
	}
	fetcher := &fakeFetcher{
		feeds: map[string]*gofeed.Feed{
			"https://working.test/feed": {Items: []*gofeed.Item{{Title: "Hello", Link: "https://working.test/a"}}},
		},
		errs: map[string]error{
			"https://broken.test/feed": errors.New("connection refused"),
		},
	}

	candidates, report := newTestExtractor(fetcher, sources, 10).RunAllSources(context.Background())

	if len(fetcher.calls) != 2 {
		t.Fatalf("Expected both sources fetched, got %v", fetcher.calls)
	}
	if len(candidates) != 1 || candidates[0].Source != "Working" {
		t.Errorf("Expected one candidate from the working source, got %+v", candidates)
	}
	if report.Failed != 1 || report.Total != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if report.Sources[0].Error == "" {
		t.Error("Expected error recorded for the broken source")
	}
}

func TestHTTPFetcher(t *testing.T) {
	const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>One</title><link>https://x.test/1</link><description>&lt;p&gt;Hi&lt;/p&gt;</description><pubDate>Tue, 10 Jun 2025 14:30:00 +0000</pubDate></item>
</channel></rss>`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, "newsdesk-test")

	feed, err := fetcher.Fetch(context.Background(), srv.URL+"/feed")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].Link != "https://x.test/1" {
		t.Errorf("Unexpected items: %+v", feed.Items)
	}
	if gotUA != "newsdesk-test" {
		t.Errorf("Expected user agent to be sent, got %q", gotUA)
	}

	if _, err := fetcher.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("Expected error for 404 response")
	}
}
