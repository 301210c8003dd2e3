// Package ingest drives ingestion runs: it resolves the adapter for a news source,
// fetches and parses the upstream document, validates every candidate into an
// entity.Article and persists the batch.
package ingest

import (
	"context"
	"iter"
	"net/url"

	"catchup-server/internal/domain/entity"
)

// AdapterKind tells callers how an adapter's articles are served.
type AdapterKind int

const (
	// KindAPI adapters read a structured upstream API and are cheap enough to read live.
	KindAPI AdapterKind = iota + 1
	// KindHTML adapters scrape a listing page; their articles are served from the store.
	KindHTML
)

func (k AdapterKind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindHTML:
		return "html"
	default:
		return "unknown"
	}
}

// RawDocument is the undecoded upstream response of a single fetch.
type RawDocument struct {
	// URL is the address that was fetched; relative links resolve against it.
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Candidate is an unvalidated article as extracted by an adapter.
type Candidate struct {
	Title      string
	Summary    *string
	Link       string
	Tags       []string
	AuthorName *string
	BodyText   *string
}

// SourceAdapter fetches and parses one upstream source.
//
// Fetch performs exactly one request and returns a *FetchError when the network
// call fails, the status is not 2xx or the body cannot be read.
//
// Parse returns a *ParseStructureError only when the document as a whole is
// unusable. Otherwise it returns a lazy, finite sequence that can be ranged over
// once; items that cannot be extracted are logged and skipped inside the sequence.
type SourceAdapter interface {
	Source() entity.NewsSource
	Kind() AdapterKind
	Fetch(ctx context.Context) (RawDocument, error)
	Parse(doc RawDocument) (iter.Seq[Candidate], error)
}
