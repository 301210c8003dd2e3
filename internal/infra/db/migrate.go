package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateUp creates the articles table and its indexes. It is safe to run repeatedly.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS articles (
    id          UUID PRIMARY KEY,
    source      TEXT NOT NULL,
    title       TEXT NOT NULL CHECK (btrim(title) <> ''),
    link        TEXT NOT NULL,
    summary     TEXT,
    tags        TEXT[] NOT NULL DEFAULT '{}',
    author_name TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("MigrateUp: articles: %w", err)
	}

	indexes := []string{
		// GetBySource filters by source and orders newest first
		`CREATE INDEX IF NOT EXISTS idx_articles_source_created_at ON articles(source, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_link ON articles(link)`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("MigrateUp: index: %w", err)
		}
	}

	return nil
}

// MigrateDown drops everything MigrateUp created.
// Use with caution: this deletes all stored articles.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS articles CASCADE`); err != nil {
		return fmt.Errorf("MigrateDown: %w", err)
	}
	return nil
}
