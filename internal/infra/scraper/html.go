package scraper

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/observability/metrics"
	"catchup-server/internal/usecase/ingest"

	"github.com/PuerkitoBio/goquery"
)

const htmlAccept = "text/html,application/xhtml+xml"

// headline is the title link of a listing entry.
type headline struct {
	text string
	href string
}

func parseHTML(source entity.NewsSource, doc ingest.RawDocument) (*goquery.Document, error) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, &ingest.ParseStructureError{Source: source.Key(), Reason: "parse HTML", Err: err}
	}
	return d, nil
}

// findHeadline returns the first "h2 a" of an entry. ok is false when the
// element, its text or its href is missing.
func findHeadline(entry *goquery.Selection) (headline, bool) {
	a := entry.Find("h2 a").First()
	if a.Length() == 0 {
		return headline{}, false
	}
	href, exists := a.Attr("href")
	text := strings.TrimSpace(a.Text())
	if !exists || strings.TrimSpace(href) == "" || text == "" {
		return headline{}, false
	}
	return headline{text: text, href: strings.TrimSpace(href)}, true
}

// optionalText returns the text of the first element matched by selector,
// or nil when there is no such element or it has no text at all.
// Whitespace-only text is returned trimmed so validation can reject it.
func optionalText(entry *goquery.Selection, selector string) *string {
	el := entry.Find(selector).First()
	if el.Length() == 0 {
		return nil
	}
	raw := el.Text()
	if raw == "" {
		return nil
	}
	text := strings.TrimSpace(raw)
	return &text
}

// dropItem logs and counts a listing entry that could not be extracted.
func dropItem(logger *slog.Logger, source entity.NewsSource, reason string, index int) {
	metrics.RecordItemDropped(source.Key(), reason)
	logger.Warn("skipping listing entry",
		slog.String("source", source.Key()),
		slog.String("reason", reason),
		slog.Int("index", index))
}

// resolveAgainst resolves href relative to base.
func resolveAgainst(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), ref.IsAbs()
	}
	return base.ResolveReference(ref).String(), true
}
