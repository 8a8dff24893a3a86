// Package persistencetest opens migrated throwaway databases for tests.
package persistencetest

import (
	"context"
	"path/filepath"
	"testing"

	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
)

// OpenSQLite returns a migrated SQLite database in a per-test temp directory.
// The database is closed when the test ends.
func OpenSQLite(t testing.TB) *persistence.DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "newsdesk.db")
	return open(t, url)
}

// OpenPostgres returns a migrated Postgres database from DATABASE_URL, or
// skips the test when it is not set. Tables are emptied on cleanup.
func OpenPostgres(t testing.TB, databaseURL string) *persistence.DB {
	t.Helper()

	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping Postgres integration test")
	}
	db := open(t, databaseURL)
	t.Cleanup(func() {
		_ = db.Truncate(context.Background())
	})
	return db
}

func open(t testing.TB, url string) *persistence.DB {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.Open(ctx, url, persistence.Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := persistence.NewMigrationManager(db).WithLogger(logger.Discard()).Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}
