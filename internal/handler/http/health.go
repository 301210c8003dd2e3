// Package http provides the HTTP surface of the news API: the database
// healthcheck, request logging, panic recovery and request metrics.
// Route handlers for news live in the news subpackage.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"catchup-server/internal/handler/http/respond"
	"catchup-server/internal/observability/logging"
)

const healthcheckTimeout = 2 * time.Second

// HealthResponse is the body of GET /healthcheck.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthHandler answers 200 while the database responds to a ping and 503 otherwise.
type HealthHandler struct {
	DB *sql.DB
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		respond.JSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("healthcheck: database ping failed",
			slog.Any("error", respond.SanitizeError(err)))
		respond.JSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	respond.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
