package news

import "net/http"

// Register mounts the news routes on mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /news", ArticlesHandler{Svc: svc})
	mux.Handle("GET /supported_sources", SourcesHandler{Svc: svc})
	mux.Handle("POST /scraper", ScraperHandler{Svc: svc})
}
