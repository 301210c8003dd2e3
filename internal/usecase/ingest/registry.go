package ingest

import (
	"catchup-server/internal/domain/entity"

	"github.com/samber/lo"
)

// Registry maps news sources to the adapter that serves them.
type Registry struct {
	adapters map[entity.NewsSource]SourceAdapter
}

// NewRegistry indexes adapters by their source. A later adapter for the same
// source replaces an earlier one.
func NewRegistry(adapters ...SourceAdapter) *Registry {
	r := &Registry{adapters: make(map[entity.NewsSource]SourceAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Source()] = a
	}
	return r
}

// Resolve returns the adapter for key. The key must match a supported source
// exactly; unknown keys and sources without an adapter yield *entity.UnsupportedSourceError.
func (r *Registry) Resolve(key string) (SourceAdapter, error) {
	source, err := entity.ParseNewsSource(key)
	if err != nil {
		return nil, err
	}
	return r.Adapter(source)
}

// Adapter returns the adapter registered for source.
func (r *Registry) Adapter(source entity.NewsSource) (SourceAdapter, error) {
	a, ok := r.adapters[source]
	if !ok {
		return nil, &entity.UnsupportedSourceError{Key: source.Key()}
	}
	return a, nil
}

// Sources lists the sources with a registered adapter, in display order.
func (r *Registry) Sources() []entity.NewsSource {
	return lo.Filter(entity.AllNewsSources(), func(s entity.NewsSource, _ int) bool {
		_, ok := r.adapters[s]
		return ok
	})
}
