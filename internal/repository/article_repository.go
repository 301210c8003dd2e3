package repository

import (
	"context"

	"catchup-server/internal/domain/entity"
)

// ArticleRepository persists normalized articles and reads them back by source.
type ArticleRepository interface {
	// GetBySource returns every stored article of source, newest first.
	// A source without stored articles yields an empty slice, not an error.
	GetBySource(ctx context.Context, source entity.NewsSource) ([]*entity.Article, error)
	// Save writes the whole batch in one transaction: either every article is
	// stored or, on any failure, none is. Existing rows are never deduplicated.
	Save(ctx context.Context, articles []*entity.Article) error
}
