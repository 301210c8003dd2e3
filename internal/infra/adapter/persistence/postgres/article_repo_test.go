package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"catchup-server/internal/domain/entity"
	pg "catchup-server/internal/infra/adapter/persistence/postgres"
	"catchup-server/internal/repository"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var articleColumns = []string{
	"id", "title", "summary", "link", "tags", "author_name", "created_at",
}

func strPtr(s string) *string { return &s }

func mustArticle(t *testing.T, p entity.ArticleParams) *entity.Article {
	t.Helper()
	a, err := entity.NewArticle(p)
	if err != nil {
		t.Fatalf("NewArticle err=%v", err)
	}
	return a
}

func nullable(s string, ok bool) any {
	if !ok {
		return nil
	}
	return s
}

func addArticleRow(rows *sqlmock.Rows, a *entity.Article) *sqlmock.Rows {
	tags, _ := pq.Array(a.Tags().Strings()).Value()
	return rows.AddRow(
		a.ID().String(), a.Title(), nullable(a.Summary()), a.Link().String(),
		tags, nullable(a.AuthorName()), a.CreatedAt(),
	)
}

func expectInsert(mock sqlmock.Sqlmock, a *entity.Article) *sqlmock.ExpectedExec {
	return mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs(
			a.ID(), a.Source().Key(), a.Title(), a.Link().String(),
			nullable(a.Summary()), pq.Array(a.Tags().Strings()),
			nullable(a.AuthorName()), a.CreatedAt(),
		)
}

var allowArticle = cmp.AllowUnexported(entity.Article{})

/* ─────────────────────────── 1. Save + GetBySource ─────────────────────────── */

func TestArticleRepo_SaveThenGetBySource_RoundTrip(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	first := mustArticle(t, entity.ArticleParams{
		Title:   "Irish startups raise record funding",
		Summary: strPtr("Description"),
		Link:    "https://irishtimes.com/path/to/article",
		Source:  entity.IrishTimes,
		Tags:    []string{"technology"},
	})
	second := mustArticle(t, entity.ArticleParams{
		Title:      "Second story",
		Link:       "https://irishtimes.com/second",
		Source:     entity.IrishTimes,
		AuthorName: strPtr("Jane Doe"),
	})
	want := []*entity.Article{first, second}

	mock.ExpectBegin()
	expectInsert(mock, first).WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsert(mock, second).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows := sqlmock.NewRows(articleColumns)
	addArticleRow(rows, first)
	addArticleRow(rows, second)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, summary, link, tags, author_name, created_at")).
		WithArgs("irishtimes").
		WillReturnRows(rows)

	repo := pg.NewArticleRepo(db)
	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save err=%v", err)
	}

	got, err := repo.GetBySource(context.Background(), entity.IrishTimes)
	if err != nil {
		t.Fatalf("GetBySource err=%v", err)
	}
	if diff := cmp.Diff(want, got, allowArticle); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 2. Save ─────────────────────────── */

func TestArticleRepo_Save_RollsBackWholeBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	ok := mustArticle(t, entity.ArticleParams{Title: "ok", Link: "https://dou.ua/a", Source: entity.Dou})
	bad := mustArticle(t, entity.ArticleParams{Title: "bad", Link: "https://dou.ua/b", Source: entity.Dou})
	never := mustArticle(t, entity.ArticleParams{Title: "never", Link: "https://dou.ua/c", Source: entity.Dou})

	mock.ExpectBegin()
	expectInsert(mock, ok).WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsert(mock, bad).WillReturnError(errors.New(`violates check constraint "articles_title_check"`))
	mock.ExpectRollback()

	repo := pg.NewArticleRepo(db)
	err := repo.Save(context.Background(), []*entity.Article{ok, bad, never})

	var pe *repository.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PersistenceError, got %v", err)
	}
	if !errors.Is(err, repository.ErrPersistence) {
		t.Fatalf("want ErrPersistence in chain, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Save_CommitFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := mustArticle(t, entity.ArticleParams{Title: "t", Link: "https://dou.ua/a", Source: entity.Dou})

	mock.ExpectBegin()
	expectInsert(mock, a).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	err := pg.NewArticleRepo(db).Save(context.Background(), []*entity.Article{a})
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("want ErrConnDone, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Save_BeginFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	a := mustArticle(t, entity.ArticleParams{Title: "t", Link: "https://dou.ua/a", Source: entity.Dou})
	err := pg.NewArticleRepo(db).Save(context.Background(), []*entity.Article{a})
	if !errors.Is(err, repository.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
}

func TestArticleRepo_Save_EmptyBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	if err := pg.NewArticleRepo(db).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	// no transaction is opened for an empty batch
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 3. GetBySource ─────────────────────────── */

func TestArticleRepo_GetBySource_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("dou").
		WillReturnRows(sqlmock.NewRows(articleColumns))

	got, err := pg.NewArticleRepo(db).GetBySource(context.Background(), entity.Dou)
	if err != nil {
		t.Fatalf("GetBySource err=%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestArticleRepo_GetBySource_CorruptLink(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("irishtimes").
		WillReturnRows(sqlmock.NewRows(articleColumns).AddRow(
			uuid.NewString(), "title", nil, "::not a url::", "{}", nil, time.Now(),
		))

	_, err := pg.NewArticleRepo(db).GetBySource(context.Background(), entity.IrishTimes)

	var pe *repository.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PersistenceError, got %v", err)
	}
	if !errors.Is(err, entity.ErrValidationFailed) {
		t.Fatalf("want wrapped validation error, got %v", err)
	}
}

func TestArticleRepo_GetBySource_QueryError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").WillReturnError(sql.ErrConnDone)

	_, err := pg.NewArticleRepo(db).GetBySource(context.Background(), entity.Dou)
	if !errors.Is(err, repository.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
}
