package ingest_test

import (
	"context"
	"iter"
	"net/url"
	"slices"
	"sync"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/usecase/ingest"
)

type fakeAdapter struct {
	source     entity.NewsSource
	kind       ingest.AdapterKind
	candidates []ingest.Candidate
	fetchErr   error
	parseErr   error
	onFetch    func()

	mu      sync.Mutex
	fetches int
}

func (f *fakeAdapter) Source() entity.NewsSource { return f.source }
func (f *fakeAdapter) Kind() ingest.AdapterKind  { return f.kind }

func (f *fakeAdapter) Fetch(ctx context.Context) (ingest.RawDocument, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.fetchErr != nil {
		return ingest.RawDocument{}, f.fetchErr
	}
	u, _ := url.Parse("https://example.com/listing")
	return ingest.RawDocument{URL: u, Body: []byte("<html></html>")}, nil
}

func (f *fakeAdapter) Parse(ingest.RawDocument) (iter.Seq[ingest.Candidate], error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return slices.Values(f.candidates), nil
}

func (f *fakeAdapter) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeRepo struct {
	mu      sync.Mutex
	saved   [][]*entity.Article
	saveErr error
}

func (r *fakeRepo) GetBySource(ctx context.Context, source entity.NewsSource) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Article{}
	for _, batch := range r.saved {
		for _, a := range batch {
			if a.Source() == source {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) Save(ctx context.Context, articles []*entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, articles)
	return nil
}

func (r *fakeRepo) batches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func strPtr(s string) *string { return &s }
