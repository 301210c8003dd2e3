// Package news provides the read and trigger use cases behind the HTTP API:
// listing supported sources, reading articles of a source and running an
// ingestion on demand.
package news

import (
	"context"
	"fmt"
	"strings"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/repository"
	"catchup-server/internal/usecase/ingest"

	"github.com/samber/lo"
)

// Ingester runs and collects ingestions. *ingest.Job implements it.
type Ingester interface {
	Run(ctx context.Context, source entity.NewsSource) (int, error)
	Collect(ctx context.Context, source entity.NewsSource) ([]*entity.Article, error)
}

// SourceInfo describes a supported source for clients.
type SourceInfo struct {
	Key         string
	DisplayName string
	Homepage    string
	ImageURL    string
}

// Service provides the news use cases.
// API sources are read live through the Ingester; HTML sources are read from Repo.
type Service struct {
	Registry *ingest.Registry
	Ingester Ingester
	Repo     repository.ArticleRepository

	// PublicBaseURL prefixes source icon URLs, e.g. "https://news.example.com".
	PublicBaseURL string
}

// ListSupportedSources lists every source with a configured adapter.
func (s *Service) ListSupportedSources(ctx context.Context) []SourceInfo {
	base := strings.TrimRight(s.PublicBaseURL, "/")
	return lo.Map(s.Registry.Sources(), func(src entity.NewsSource, _ int) SourceInfo {
		return SourceInfo{
			Key:         src.Key(),
			DisplayName: src.DisplayName(),
			Homepage:    src.Homepage(),
			ImageURL:    fmt.Sprintf("%s/assets/images/icons/%s.png", base, src.Key()),
		}
	})
}

// GetArticles returns the articles of the source named key.
// An unknown key yields *entity.UnsupportedSourceError. A source without stored
// articles yields an empty slice.
func (s *Service) GetArticles(ctx context.Context, key string) ([]*entity.Article, error) {
	adapter, err := s.Registry.Resolve(key)
	if err != nil {
		return nil, err
	}

	if adapter.Kind() == ingest.KindAPI {
		articles, err := s.Ingester.Collect(ctx, adapter.Source())
		if err != nil {
			return nil, fmt.Errorf("collect articles: %w", err)
		}
		return articles, nil
	}

	articles, err := s.Repo.GetBySource(ctx, adapter.Source())
	if err != nil {
		return nil, fmt.Errorf("get articles: %w", err)
	}
	return articles, nil
}

// TriggerIngestion runs one ingestion of the source named key and returns the
// number of persisted articles.
func (s *Service) TriggerIngestion(ctx context.Context, key string) (int, error) {
	adapter, err := s.Registry.Resolve(key)
	if err != nil {
		return 0, err
	}

	count, err := s.Ingester.Run(ctx, adapter.Source())
	if err != nil {
		return 0, fmt.Errorf("trigger ingestion: %w", err)
	}
	return count, nil
}
