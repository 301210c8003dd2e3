package scraper

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/usecase/ingest"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

const (
	douListingSelector = "div.b-lenta"
	douTagSelector     = "div.more a:not(.topic)"
)

// DouAdapter scrapes the DOU news feed. Entries live in "div.b-lenta article";
// their tags are the links under "div.more", except the topic link.
type DouAdapter struct {
	fetcher    *fetcher
	defaultTag string
	logger     *slog.Logger
}

// NewDouAdapter creates an adapter fetching listingURL. defaultTag is used for
// entries that carry no tags of their own.
func NewDouAdapter(client *http.Client, listingURL, defaultTag string, logger *slog.Logger) (*DouAdapter, error) {
	f, err := newFetcher(client, entity.Dou, listingURL, htmlAccept)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DouAdapter{fetcher: f, defaultTag: defaultTag, logger: logger}, nil
}

func (a *DouAdapter) Source() entity.NewsSource { return entity.Dou }

func (a *DouAdapter) Kind() ingest.AdapterKind { return ingest.KindHTML }

func (a *DouAdapter) Fetch(ctx context.Context) (ingest.RawDocument, error) {
	return a.fetcher.fetch(ctx)
}

// Parse fails with a *ingest.ParseStructureError when the page has no
// "div.b-lenta" container, which means the layout changed.
func (a *DouAdapter) Parse(doc ingest.RawDocument) (iter.Seq[ingest.Candidate], error) {
	d, err := parseHTML(entity.Dou, doc)
	if err != nil {
		return nil, err
	}
	listing := d.Find(douListingSelector)
	if listing.Length() == 0 {
		return nil, &ingest.ParseStructureError{
			Source: entity.Dou.Key(),
			Reason: "listing container " + douListingSelector + " not found",
		}
	}

	return func(yield func(ingest.Candidate) bool) {
		for i, entry := range listing.Find("article").EachIter() {
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

func (a *DouAdapter) candidate(base *url.URL, index int, entry *goquery.Selection) (ingest.Candidate, bool) {
	h, ok := findHeadline(entry)
	if !ok {
		dropItem(a.logger, entity.Dou, "missing_headline", index)
		return ingest.Candidate{}, false
	}
	link, ok := resolveAgainst(base, h.href)
	if !ok {
		dropItem(a.logger, entity.Dou, "invalid_link", index)
		return ingest.Candidate{}, false
	}

	texts := entry.Find(douTagSelector).Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	tags := lo.Compact(texts)
	if len(tags) == 0 {
		tags = []string{a.defaultTag}
	}

	return ingest.Candidate{
		Title:   h.text,
		Summary: optionalText(entry, "p"),
		Link:    link,
		Tags:    tags,
	}, true
}
