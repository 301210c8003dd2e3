package scraper

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/observability/metrics"
	"catchup-server/internal/usecase/ingest"

	"github.com/samber/lo"
)

// hnResponse is the Algolia search envelope.
type hnResponse struct {
	Hits *[]hnHit `json:"hits"`
}

type hnHit struct {
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Author string   `json:"author"`
	Tags   []string `json:"_tags"`
}

// HackerNewsAdapter reads stories from the Hacker News search API.
type HackerNewsAdapter struct {
	fetcher *fetcher
	logger  *slog.Logger
}

// NewHackerNewsAdapter creates an adapter querying apiURL.
func NewHackerNewsAdapter(client *http.Client, apiURL string, logger *slog.Logger) (*HackerNewsAdapter, error) {
	f, err := newFetcher(client, entity.HackerNews, apiURL, "application/json")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HackerNewsAdapter{fetcher: f, logger: logger}, nil
}

func (a *HackerNewsAdapter) Source() entity.NewsSource { return entity.HackerNews }

func (a *HackerNewsAdapter) Kind() ingest.AdapterKind { return ingest.KindAPI }

func (a *HackerNewsAdapter) Fetch(ctx context.Context) (ingest.RawDocument, error) {
	return a.fetcher.fetch(ctx)
}

// Parse decodes the whole envelope up front; an undecodable body or one without
// "hits" is a *ingest.ParseStructureError. Hits without an absolute URL, such as
// Ask HN posts, are skipped.
func (a *HackerNewsAdapter) Parse(doc ingest.RawDocument) (iter.Seq[ingest.Candidate], error) {
	var resp hnResponse
	if err := json.Unmarshal(doc.Body, &resp); err != nil {
		return nil, &ingest.ParseStructureError{Source: entity.HackerNews.Key(), Reason: "decode response", Err: err}
	}
	if resp.Hits == nil {
		return nil, &ingest.ParseStructureError{Source: entity.HackerNews.Key(), Reason: "response has no hits"}
	}
	hits := *resp.Hits

	return func(yield func(ingest.Candidate) bool) {
		for i, hit := range hits {
			if err := entity.ValidateURL(hit.URL); err != nil {
				metrics.RecordItemDropped(entity.HackerNews.Key(), "invalid_link")
				a.logger.Warn("skipping hit with invalid url",
					slog.Int("index", i),
					slog.String("title", hit.Title),
					slog.String("url", hit.URL),
					slog.Any("error", err))
				continue
			}
			if !yield(a.candidate(hit)) {
				return
			}
		}
	}, nil
}

func (a *HackerNewsAdapter) candidate(hit hnHit) ingest.Candidate {
	c := ingest.Candidate{
		Title: hit.Title,
		Link:  hit.URL,
		Tags: lo.Filter(hit.Tags, func(tag string, _ int) bool {
			return strings.TrimSpace(tag) != ""
		}),
	}
	if hit.Author != "" {
		author := hit.Author
		c.AuthorName = &author
	}
	return c
}
