package persistence

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newsdesk/internal/core"
)

var digestColumns = []string{"digest_date", "content", "article_count", "created_at"}

// digestRepo implements DigestRepository for both dialects
type digestRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func (r *digestRepo) Create(ctx context.Context, digest *core.Digest) error {
	query, args, err := r.sb.Insert("digests").
		Columns(digestColumns...).
		Values(digest.Date, digest.Content, digest.ArticleCount, digest.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return translate(err, "create digest")
}

func (r *digestRepo) GetByDate(ctx context.Context, date string) (*core.Digest, error) {
	query, args, err := r.sb.Select(digestColumns...).From("digests").Where(sq.Eq{"digest_date": date}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	digest, err := scanDigest(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "get digest")
	}
	return digest, nil
}

func (r *digestRepo) List(ctx context.Context, limit int) ([]core.Digest, error) {
	if limit <= 0 {
		limit = 30
	}

	query, args, err := r.sb.Select(digestColumns...).From("digests").
		OrderBy("digest_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()

	var digests []core.Digest
	for rows.Next() {
		digest, err := scanDigest(rows)
		if err != nil {
			return nil, fmt.Errorf("list digests: %w", err)
		}
		digests = append(digests, *digest)
	}
	return digests, rows.Err()
}

func (r *digestRepo) Delete(ctx context.Context, date string) error {
	query, args, err := r.sb.Delete("digests").Where(sq.Eq{"digest_date": date}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err, "delete digest")
	}
	return requireAffected(result, "delete digest")
}

func scanDigest(row rowScanner) (*core.Digest, error) {
	var digest core.Digest
	if err := row.Scan(&digest.Date, &digest.Content, &digest.ArticleCount, &digest.CreatedAt); err != nil {
		return nil, err
	}
	digest.CreatedAt = digest.CreatedAt.UTC()
	return &digest, nil
}
