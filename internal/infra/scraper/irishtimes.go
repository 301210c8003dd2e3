package scraper

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/usecase/ingest"

	"github.com/PuerkitoBio/goquery"
)

// IrishTimesAdapter scrapes a section listing of The Irish Times.
// Every entry is an <article> whose "h2 a" is the headline and whose optional
// "p a" is the description. All articles get the configured tag.
type IrishTimesAdapter struct {
	fetcher *fetcher
	tag     string
	logger  *slog.Logger
}

// NewIrishTimesAdapter creates an adapter fetching listingURL.
func NewIrishTimesAdapter(client *http.Client, listingURL, tag string, logger *slog.Logger) (*IrishTimesAdapter, error) {
	f, err := newFetcher(client, entity.IrishTimes, listingURL, htmlAccept)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IrishTimesAdapter{fetcher: f, tag: tag, logger: logger}, nil
}

func (a *IrishTimesAdapter) Source() entity.NewsSource { return entity.IrishTimes }

func (a *IrishTimesAdapter) Kind() ingest.AdapterKind { return ingest.KindHTML }

func (a *IrishTimesAdapter) Fetch(ctx context.Context) (ingest.RawDocument, error) {
	return a.fetcher.fetch(ctx)
}

// Parse extracts the listing entries of doc. Headline hrefs are taken as paths on
// the host of doc.URL, so "path/to/article" and "/path/to/article" both resolve to
// the site root.
func (a *IrishTimesAdapter) Parse(doc ingest.RawDocument) (iter.Seq[ingest.Candidate], error) {
	d, err := parseHTML(entity.IrishTimes, doc)
	if err != nil {
		return nil, err
	}

	return func(yield func(ingest.Candidate) bool) {
		for i, entry := range d.Find("article").EachIter() {
			c, ok := a.candidate(doc.URL, i, entry)
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}, nil
}

func (a *IrishTimesAdapter) candidate(base *url.URL, index int, entry *goquery.Selection) (ingest.Candidate, bool) {
	h, ok := findHeadline(entry)
	if !ok {
		dropItem(a.logger, entity.IrishTimes, "missing_headline", index)
		return ingest.Candidate{}, false
	}
	link, ok := sitePath(base, h.href)
	if !ok {
		dropItem(a.logger, entity.IrishTimes, "invalid_link", index)
		return ingest.Candidate{}, false
	}
	return ingest.Candidate{
		Title:   h.text,
		Summary: optionalText(entry, "p a"),
		Link:    link,
		Tags:    []string{a.tag},
	}, true
}

// sitePath resolves href against the site root of base, so "path/to/article"
// and "/path/to/article" land on the same URL. Absolute and network-path
// hrefs keep their own host.
func sitePath(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), ref.IsAbs()
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	return root.ResolveReference(ref).String(), true
}
