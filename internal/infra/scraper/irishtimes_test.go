package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"catchup-server/internal/infra/scraper"
	"catchup-server/internal/usecase/ingest"
)

func newIrishTimes(t *testing.T, listingURL string) *scraper.IrishTimesAdapter {
	t.Helper()
	a, err := scraper.NewIrishTimesAdapter(&http.Client{Timeout: 5 * time.Second}, listingURL, "technology", nil)
	if err != nil {
		t.Fatalf("NewIrishTimesAdapter() error = %v", err)
	}
	return a
}

func TestIrishTimesAdapter_Parse(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []ingest.Candidate
	}{
		{
			name: "headline with description",
			html: `<article><h2><a href="/path/to/article">Title</a></h2><p><a>Description</a></p></article>`,
			want: []ingest.Candidate{{
				Title:   "Title",
				Summary: strPtr("Description"),
				Link:    "https://example.com/path/to/article",
				Tags:    []string{"technology"},
			}},
		},
		{
			name: "missing description gives no summary",
			html: `<body><div><article><div><h2><a href="path/to/article">Title</a></h2></div></article></div></body>`,
			want: []ingest.Candidate{{
				Title: "Title",
				Link:  "https://example.com/path/to/article",
				Tags:  []string{"technology"},
			}},
		},
		{
			name: "entries without headline are skipped",
			html: `<article><p><a>Orphan description</a></p></article>
<article><h2><a>No href</a></h2></article>
<article><h2><a href="/kept">Kept</a></h2></article>`,
			want: []ingest.Candidate{{
				Title: "Kept",
				Link:  "https://example.com/kept",
				Tags:  []string{"technology"},
			}},
		},
		{
			name: "absolute href is kept",
			html: `<article><h2><a href="https://www.irishtimes.com/business/x">Biz</a></h2></article>`,
			want: []ingest.Candidate{{
				Title: "Biz",
				Link:  "https://www.irishtimes.com/business/x",
				Tags:  []string{"technology"},
			}},
		},
		{
			name: "network-path href keeps its host",
			html: `<article><h2><a href="//cdn.other.com/story">CDN</a></h2></article>`,
			want: []ingest.Candidate{{
				Title: "CDN",
				Link:  "https://cdn.other.com/story",
				Tags:  []string{"technology"},
			}},
		},
		{
			name: "escaped path segments and query survive",
			html: `<article><h2><a href="/a%2Fb?x=1#frag">Escaped</a></h2></article>`,
			want: []ingest.Candidate{{
				Title: "Escaped",
				Link:  "https://example.com/a%2Fb?x=1#frag",
				Tags:  []string{"technology"},
			}},
		},
		{
			name: "no articles",
			html: `<html><body><main></main></body></html>`,
			want: nil,
		},
	}

	adapter := newIrishTimes(t, "https://example.com/technology")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, adapter, rawDocument(t, "https://example.com", tt.html))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIrishTimesAdapter_Parse_StopsEarly(t *testing.T) {
	adapter := newIrishTimes(t, "https://example.com/technology")
	seq, err := adapter.Parse(rawDocument(t, "https://example.com",
		`<article><h2><a href="/a">A</a></h2></article><article><h2><a href="/b">B</a></h2></article>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var titles []string
	for c := range seq {
		titles = append(titles, c.Title)
		break
	}
	if len(titles) != 1 || titles[0] != "A" {
		t.Errorf("titles = %v, want [A]", titles)
	}
}

func TestIrishTimesAdapter_FetchAndParse(t *testing.T) {
	var gotUA, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<article><h2><a href="/technology/2024/01/01/story">Story</a></h2><p><a>Lead</a></p></article>
</body></html>`))
	}))
	defer server.Close()

	adapter := newIrishTimes(t, server.URL+"/technology")
	doc, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotPath != "/technology" {
		t.Errorf("path = %q, want /technology", gotPath)
	}
	if gotUA == "" {
		t.Error("User-Agent header not set")
	}
	if doc.ContentType != "text/html" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}

	got := collect(t, adapter, doc)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if want := server.URL + "/technology/2024/01/01/story"; got[0].Link != want {
		t.Errorf("Link = %q, want %q", got[0].Link, want)
	}
}

func TestIrishTimesAdapter_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newIrishTimes(t, server.URL).Fetch(context.Background())

	var fetchErr *ingest.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("want *ingest.FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fetchErr.StatusCode)
	}
}

func TestNewIrishTimesAdapter_InvalidURL(t *testing.T) {
	_, err := scraper.NewIrishTimesAdapter(http.DefaultClient, "irishtimes.com/technology", "technology", nil)
	if err == nil {
		t.Fatal("expected error for relative listing url")
	}
}
