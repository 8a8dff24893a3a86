package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Dialect identifies the SQL backend behind a DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// placeholder returns the squirrel placeholder format for the dialect.
func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == SQLite {
		return sq.Question
	}
	return sq.Dollar
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration
}

// DB implements the Database interface over database/sql for Postgres and SQLite
type DB struct {
	db       *sql.DB
	dialect  Dialect
	articles *articleRepo
	digests  *digestRepo
}

// ParseURL splits a database URL into its dialect and driver DSN.
// Supported forms are postgres://..., postgresql://... and sqlite://path.
func ParseURL(databaseURL string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "sqlite3://"):
		_, path, _ := strings.Cut(databaseURL, "://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL missing path: %s", databaseURL)
		}
		if path == ":memory:" {
			return SQLite, "file::memory:?cache=shared&_busy_timeout=5000", nil
		}
		return SQLite, path + "?_busy_timeout=5000&_journal_mode=WAL", nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme: %s", databaseURL)
	}
}

// Open connects to the database named by databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string, opts Options) (*DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDB(db, dialect), nil
}

func newDB(db *sql.DB, dialect Dialect) *DB {
	builder := sq.StatementBuilder.PlaceholderFormat(dialect.placeholder())
	return &DB{
		db:       db,
		dialect:  dialect,
		articles: &articleRepo{db: db, sb: builder},
		digests:  &digestRepo{db: db, sb: builder},
	}
}

func (d *DB) Articles() ArticleRepository { return d.articles }
func (d *DB) Digests() DigestRepository   { return d.digests }
func (d *DB) Dialect() Dialect            { return d.dialect }

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Truncate removes every article and digest. Used by integration tests.
func (d *DB) Truncate(ctx context.Context) error {
	for _, table := range []string{"articles", "digests"} {
		if _, err := d.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
