// Package scraper implements the news source adapters: a JSON API client for
// Hacker News and goquery-based scrapers for The Irish Times and DOU.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/resilience/circuitbreaker"
	"catchup-server/internal/usecase/ingest"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB
	userAgent   = "CatchUpServerBot/1.0"
)

// fetcher performs the single GET of an adapter's Fetch through a per-source circuit breaker.
type fetcher struct {
	client  *http.Client
	url     *url.URL
	accept  string
	breaker *circuitbreaker.Breaker
}

func newFetcher(client *http.Client, source entity.NewsSource, rawURL, accept string) (*fetcher, error) {
	u, err := entity.ParseAbsoluteURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s url: %w", source.Key(), err)
	}
	return &fetcher{
		client:  client,
		url:     u,
		accept:  accept,
		breaker: circuitbreaker.ForSource(source.Key(), circuitbreaker.SourcePolicy),
	}, nil
}

func (f *fetcher) fetch(ctx context.Context) (ingest.RawDocument, error) {
	doc, err := circuitbreaker.Do(f.breaker, func() (ingest.RawDocument, error) {
		return f.doFetch(ctx)
	})
	if err == nil {
		return doc, nil
	}

	var fetchErr *ingest.FetchError
	if errors.As(err, &fetchErr) {
		return ingest.RawDocument{}, err
	}
	if circuitbreaker.Rejected(err) {
		slog.Warn("source breaker rejected fetch",
			slog.String("source", f.breaker.Source()),
			slog.String("url", f.url.String()),
			slog.String("state", f.breaker.State().String()))
	}
	return ingest.RawDocument{}, &ingest.FetchError{URL: f.url.String(), Err: err}
}

// doFetch performs the request without the circuit breaker.
func (f *fetcher) doFetch(ctx context.Context) (ingest.RawDocument, error) {
	target := f.url.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ingest.RawDocument{}, &ingest.FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", f.accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return ingest.RawDocument{}, &ingest.FetchError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ingest.RawDocument{}, &ingest.FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return ingest.RawDocument{}, &ingest.FetchError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	u := *f.url
	return ingest.RawDocument{
		URL:         &u,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
