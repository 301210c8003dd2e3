package scraper_test

import (
	"net/url"
	"slices"
	"testing"

	"catchup-server/internal/usecase/ingest"
)

func rawDocument(t *testing.T, base, body string) ingest.RawDocument {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	return ingest.RawDocument{URL: u, ContentType: "text/html", Body: []byte(body)}
}

func collect(t *testing.T, adapter ingest.SourceAdapter, doc ingest.RawDocument) []ingest.Candidate {
	t.Helper()
	seq, err := adapter.Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return slices.Collect(seq)
}

func strPtr(s string) *string { return &s }
