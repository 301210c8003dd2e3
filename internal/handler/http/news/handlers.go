package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/handler/http/respond"
	"catchup-server/internal/observability/logging"
	"catchup-server/internal/usecase/ingest"
	newsUC "catchup-server/internal/usecase/news"

	"github.com/samber/lo"
)

// Service is the subset of news.Service the handlers need.
type Service interface {
	ListSupportedSources(ctx context.Context) []newsUC.SourceInfo
	GetArticles(ctx context.Context, key string) ([]*entity.Article, error)
	TriggerIngestion(ctx context.Context, key string) (int, error)
}

var errMissingSource = errors.New(`query parameter "source" is required`)

// ArticlesHandler serves GET /news?source=key.
type ArticlesHandler struct {
	Svc Service
}

func (h ArticlesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := sourceParam(w, r)
	if !ok {
		return
	}

	articles, err := h.Svc.GetArticles(r.Context(), key)
	if err != nil {
		writeError(w, r, key, err)
		return
	}

	respond.JSON(w, http.StatusOK, ArticlesResponse{Articles: lo.Map(articles, func(a *entity.Article, _ int) ArticleDTO {
		return toArticleDTO(a)
	})})
}

// SourcesHandler serves GET /supported_sources.
type SourcesHandler struct {
	Svc Service
}

func (h SourcesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sources := lo.Map(h.Svc.ListSupportedSources(r.Context()), func(s newsUC.SourceInfo, _ int) SourceDTO {
		return SourceDTO{ID: s.Key, Name: s.DisplayName, Homepage: s.Homepage, ImageURL: s.ImageURL}
	})
	respond.JSON(w, http.StatusOK, SourcesResponse{Sources: sources})
}

// ScraperHandler serves POST /scraper?source=key, running one ingestion synchronously.
type ScraperHandler struct {
	Svc Service
}

func (h ScraperHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := sourceParam(w, r)
	if !ok {
		return
	}

	count, err := h.Svc.TriggerIngestion(r.Context(), key)
	if err != nil {
		writeError(w, r, key, err)
		return
	}

	logging.FromContext(r.Context()).Info("manual ingestion completed",
		slog.String("source", key),
		slog.Int("count", count))
	respond.JSON(w, http.StatusOK, IngestionResponse{Source: key, Count: count})
}

func sourceParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("source")
	if key == "" {
		respond.SafeError(w, http.StatusBadRequest, errMissingSource)
		return "", false
	}
	return key, true
}

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnsupportedSource):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrFetchFailed), errors.Is(err, ingest.ErrParseStructure):
		return http.StatusBadGateway
	default:
		// repository.ErrPersistence and anything unexpected
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, key string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("news request failed",
			slog.String("source", key),
			slog.Int("status", code),
			slog.String("error", respond.SanitizeError(err)))
	}
	respond.SafeError(w, code, err)
}
