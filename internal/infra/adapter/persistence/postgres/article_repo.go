package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/repository"

	"github.com/lib/pq"
)

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) GetBySource(ctx context.Context, source entity.NewsSource) ([]*entity.Article, error) {
	const query = `
SELECT id, title, summary, link, tags, author_name, created_at
FROM articles
WHERE source = $1
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, source.Key())
	if err != nil {
		return nil, &repository.PersistenceError{Op: "GetBySource", Err: err}
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 50)
	for rows.Next() {
		var (
			stored  = entity.StoredArticle{Source: source}
			summary sql.NullString
			author  sql.NullString
			tags    []string
		)
		if err := rows.Scan(&stored.ID, &stored.Title, &summary, &stored.Link,
			pq.Array(&tags), &author, &stored.CreatedAt); err != nil {
			return nil, &repository.PersistenceError{Op: "GetBySource: Scan", Err: err}
		}
		stored.Summary = nullStringPtr(summary)
		stored.AuthorName = nullStringPtr(author)
		stored.Tags = tags

		article, err := entity.RestoreArticle(stored)
		if err != nil {
			return nil, &repository.PersistenceError{
				Op:  fmt.Sprintf("GetBySource: restore article %s", stored.ID),
				Err: err,
			}
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, &repository.PersistenceError{Op: "GetBySource: Rows", Err: err}
	}
	return articles, nil
}

func (repo *ArticleRepo) Save(ctx context.Context, articles []*entity.Article) (err error) {
	if len(articles) == 0 {
		return nil
	}

	const query = `
INSERT INTO articles (id, source, title, link, summary, tags, author_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return &repository.PersistenceError{Op: "Save: BeginTx", Err: err}
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	for _, a := range articles {
		if _, err = tx.ExecContext(ctx, query,
			a.ID(),
			a.Source().Key(),
			a.Title(),
			a.Link().String(),
			toNullString(a.Summary()),
			pq.Array(a.Tags().Strings()),
			toNullString(a.AuthorName()),
			a.CreatedAt(),
		); err != nil {
			return &repository.PersistenceError{Op: fmt.Sprintf("Save: insert %s", a.ID()), Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return &repository.PersistenceError{Op: "Save: Commit", Err: err}
	}
	return nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullString(s string, ok bool) sql.NullString {
	return sql.NullString{String: s, Valid: ok}
}
