package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"newsdesk/internal/config"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>Regulator approves new licences</title>
    <link>https://news.test/licences</link>
    <pubDate>Mon, 02 Mar 2026 09:00:00 GMT</pubDate>
    <description>&lt;p&gt;The regulator approved &lt;b&gt;three&lt;/b&gt; licences.&lt;/p&gt;</description>
  </item>
  <item>
    <title>Operator reports revenue</title>
    <link>https://news.test/revenue</link>
    <description>Revenue rose.</description>
  </item>
</channel>
</rss>`

// setupEnv points configuration at a temp SQLite database and a local feed.
func setupEnv(t *testing.T) {
	t.Helper()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeed)
	}))
	t.Cleanup(feed.Close)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "test.db"))
	t.Setenv("RSS_FEEDS", feed.URL+"/feed/")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	config.Reset()
	t.Cleanup(config.Reset)
	cfgFile, logLevel = "", ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootHasCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "fetch", "enrich", "search", "digest", "sources", "migrate", "tui"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Command %q not registered", name)
		}
	}
}

func TestMigrateUpAndStatus(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate", "up")
	if err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if !strings.Contains(out, "Applied") {
		t.Errorf("Unexpected output: %q", out)
	}

	out, err = run(t, "migrate", "up")
	if err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("Expected no pending migrations, got %q", out)
	}

	out, err = run(t, "migrate", "status")
	if err != nil {
		t.Fatalf("migrate status failed: %v", err)
	}
	if !strings.Contains(out, "Pending: 0") {
		t.Errorf("Unexpected status: %q", out)
	}
}

func TestFetchIsIdempotent(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "fetch")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "New: 2") {
		t.Errorf("Expected 2 new articles, got %q", out)
	}

	out, err = run(t, "fetch")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if !strings.Contains(out, "New: 0 | Duplicates: 2") {
		t.Errorf("Expected only duplicates, got %q", out)
	}
}

func TestAICommandsNeedKey(t *testing.T) {
	setupEnv(t)

	for _, args := range [][]string{
		{"enrich"},
		{"search", "licences"},
	} {
		if _, err := run(t, args...); err == nil || !strings.Contains(err.Error(), "not configured") {
			t.Errorf("%v: expected not configured error, got %v", args, err)
		}
	}
}

func TestDigestCreateWithoutKey(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "fetch"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := run(t, "digest", "create"); err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("Expected not configured error, got %v", err)
	}

	out, err := run(t, "digest", "list")
	if err != nil {
		t.Fatalf("digest list failed: %v", err)
	}
	if !strings.Contains(out, "No digests found") {
		t.Errorf("Unexpected output: %q", out)
	}

	if _, err := run(t, "digest", "show", "not-a-date"); err == nil {
		t.Error("Expected invalid date error")
	}
}

func TestSources(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "sources")
	if err != nil {
		t.Fatalf("sources failed: %v", err)
	}
	if !strings.Contains(out, "/feed/") {
		t.Errorf("Unexpected output: %q", out)
	}
}
