package scraper

import (
	"fmt"
	"log/slog"
	"net/http"

	"catchup-server/internal/config"
	"catchup-server/internal/usecase/ingest"
)

// ScraperFactory creates the source adapters with a shared HTTP client.
// The client should carry a timeout; adapters never set one of their own.
type ScraperFactory struct {
	client *http.Client
	logger *slog.Logger
}

// NewScraperFactory creates a new ScraperFactory with the given HTTP client.
func NewScraperFactory(client *http.Client, logger *slog.Logger) *ScraperFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScraperFactory{client: client, logger: logger}
}

// CreateAdapters builds an adapter for every configured source, enabled or not.
// The enabled flag only controls scheduling.
func (f *ScraperFactory) CreateAdapters(cfg *config.SourcesConfig) ([]ingest.SourceAdapter, error) {
	irishTimes, err := NewIrishTimesAdapter(f.client, cfg.IrishTimes.URL, cfg.IrishTimes.Tag, f.logger)
	if err != nil {
		return nil, fmt.Errorf("irish times adapter: %w", err)
	}
	hackerNews, err := NewHackerNewsAdapter(f.client, cfg.HackerNews.URL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("hacker news adapter: %w", err)
	}
	dou, err := NewDouAdapter(f.client, cfg.Dou.URL, cfg.Dou.Tag, f.logger)
	if err != nil {
		return nil, fmt.Errorf("dou adapter: %w", err)
	}
	return []ingest.SourceAdapter{irishTimes, hackerNews, dou}, nil
}

// NewRegistry builds the source registry used by the API and the worker.
func NewRegistry(cfg *config.SourcesConfig, client *http.Client, logger *slog.Logger) (*ingest.Registry, error) {
	adapters, err := NewScraperFactory(client, logger).CreateAdapters(cfg)
	if err != nil {
		return nil, err
	}
	return ingest.NewRegistry(adapters...), nil
}
