package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"newsdesk/internal/core"
)

var articleColumns = []string{
	"id", "title", "link", "source", "published_date",
	"content", "summary", "embedding", "created_at",
}

// articleRepo implements ArticleRepository for both dialects
type articleRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func (r *articleRepo) Create(ctx context.Context, article *core.Article) error {
	embedding, err := encodeEmbedding(article.Embedding)
	if err != nil {
		return err
	}

	query, args, err := r.sb.Insert("articles").
		Columns(articleColumns...).
		Values(
			article.ID, article.Title, article.Link, article.Source, nullTime(article.PublishedDate),
			article.Content, nullString(article.Summary), embedding, article.CreatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return translate(err, "create article")
}

func (r *articleRepo) ExistsByLink(ctx context.Context, link string) (bool, error) {
	query, args, err := r.sb.Select("1").From("articles").Where(sq.Eq{"link": link}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check article link: %w", err)
	}
	return true, nil
}

func (r *articleRepo) Get(ctx context.Context, id string) (*core.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "get article")
	}
	return article, nil
}

func (r *articleRepo) List(ctx context.Context, opts ListOptions) ([]core.Article, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	builder := applyFilter(r.sb.Select(articleColumns...).From("articles"), opts).
		OrderBy("published_date DESC NULLS LAST", "created_at DESC", "id").
		Limit(uint64(limit))
	if opts.Offset > 0 {
		builder = builder.Offset(uint64(opts.Offset))
	}

	return r.queryArticles(ctx, builder, "list articles")
}

func (r *articleRepo) Count(ctx context.Context, opts ListOptions) (int, error) {
	query, args, err := applyFilter(r.sb.Select("COUNT(*)").From("articles"), opts).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (r *articleRepo) ListNeedingEnrichment(ctx context.Context, limit int) ([]core.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	builder := r.sb.Select(articleColumns...).From("articles").
		Where(sq.Or{
			sq.Eq{"summary": nil},
			sq.Eq{"summary": ""},
			sq.Eq{"embedding": nil},
		}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))

	return r.queryArticles(ctx, builder, "list articles needing enrichment")
}

func (r *articleRepo) ListWithEmbeddings(ctx context.Context) ([]core.Article, error) {
	builder := r.sb.Select(articleColumns...).From("articles").
		Where(sq.NotEq{"embedding": nil}).
		OrderBy("created_at", "id")

	return r.queryArticles(ctx, builder, "list articles with embeddings")
}

func (r *articleRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]core.Article, error) {
	builder := r.sb.Select(articleColumns...).From("articles").
		Where(sq.GtOrEq{"created_at": since.UTC()}).
		OrderBy("published_date DESC NULLS LAST", "created_at DESC", "id")

	return r.queryArticles(ctx, builder, "list recent articles")
}

// ApplyEnrichment only fills fields that are still absent, so an article's
// summary and embedding each go from absent to present at most once.
func (r *articleRepo) ApplyEnrichment(ctx context.Context, id string, e core.Enrichment) error {
	if e.IsEmpty() {
		return nil
	}

	builder := r.sb.Update("articles").Where(sq.Eq{"id": id})
	if e.Summary != nil {
		builder = builder.Set("summary", sq.Expr("COALESCE(NULLIF(summary, ''), ?)", *e.Summary))
	}
	if len(e.Embedding) > 0 {
		embedding, err := encodeEmbedding(e.Embedding)
		if err != nil {
			return err
		}
		builder = builder.Set("embedding", sq.Expr("COALESCE(embedding, ?)", embedding))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err, "apply enrichment")
	}
	return requireAffected(result, "apply enrichment")
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err, "delete article")
	}
	return requireAffected(result, "delete article")
}

func (r *articleRepo) queryArticles(ctx context.Context, builder sq.SelectBuilder, what string) ([]core.Article, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}

func applyFilter(builder sq.SelectBuilder, opts ListOptions) sq.SelectBuilder {
	if opts.Source != "" {
		builder = builder.Where(sq.Eq{"source": opts.Source})
	}
	if len(opts.Sources) > 0 {
		builder = builder.Where(sq.Eq{"source": opts.Sources})
	}
	return builder
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*core.Article, error) {
	var (
		article   core.Article
		published sql.NullTime
		summary   sql.NullString
		embedding sql.NullString
	)

	err := row.Scan(
		&article.ID, &article.Title, &article.Link, &article.Source, &published,
		&article.Content, &summary, &embedding, &article.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if published.Valid {
		t := published.Time.UTC()
		article.PublishedDate = &t
	}
	article.Summary = summary.String
	article.CreatedAt = article.CreatedAt.UTC()

	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &article.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
		}
	}

	return &article, nil
}

// encodeEmbedding stores vectors as JSON text; nil stays NULL.
func encodeEmbedding(embedding []float64) (any, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
