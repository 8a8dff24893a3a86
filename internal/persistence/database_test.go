package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url         string
		wantDialect Dialect
		wantDSN     string
		wantErr     bool
	}{
		{"postgres://u:p@localhost/news", Postgres, "postgres://u:p@localhost/news", false},
		{"postgresql://localhost/news", Postgres, "postgresql://localhost/news", false},
		{"sqlite://data/news.db", SQLite, "data/news.db?_busy_timeout=5000&_journal_mode=WAL", false},
		{"sqlite://:memory:", SQLite, "file::memory:?cache=shared&_busy_timeout=5000", false},
		{"sqlite://", "", "", true},
		{"mysql://localhost/news", "", "", true},
	}

	for _, tt := range tests {
		dialect, dsn, err := ParseURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if dialect != tt.wantDialect || dsn != tt.wantDSN {
			t.Errorf("ParseURL(%q) = %q, %q; want %q, %q", tt.url, dialect, dsn, tt.wantDialect, tt.wantDSN)
		}
	}
}

func TestTranslate(t *testing.T) {
	pgDup := fmt.Errorf("exec: %w", &pq.Error{Code: "23505"})
	liteDup := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	other := errors.New("boom")

	if !errors.Is(translate(pgDup, "x"), ErrDuplicate) {
		t.Error("Expected Postgres unique violation to map to ErrDuplicate")
	}
	if !errors.Is(translate(liteDup, "x"), ErrDuplicate) {
		t.Error("Expected SQLite unique violation to map to ErrDuplicate")
	}
	if errors.Is(translate(other, "x"), ErrDuplicate) {
		t.Error("Generic error must not map to ErrDuplicate")
	}
	if !errors.Is(translate(&pq.Error{Code: "23505"}, "x"), ErrDuplicate) {
		t.Error("Expected unwrapped pq error to map")
	}
	if translate(nil, "x") != nil {
		t.Error("Expected nil for nil error")
	}
}
