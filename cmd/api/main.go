package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"catchup-server/internal/config"
	hhttp "catchup-server/internal/handler/http"
	hnews "catchup-server/internal/handler/http/news"
	"catchup-server/internal/handler/http/requestid"
	pgRepo "catchup-server/internal/infra/adapter/persistence/postgres"
	"catchup-server/internal/infra/db"
	"catchup-server/internal/infra/scraper"
	"catchup-server/internal/observability/logging"
	"catchup-server/internal/observability/tracing"
	pkgconfig "catchup-server/internal/pkg/config"
	"catchup-server/internal/usecase/ingest"
	newsUC "catchup-server/internal/usecase/news"
	envconfig "catchup-server/pkg/config"
)

func main() {
	loadDotEnv()
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	svc := setupService(logger, database)
	handler := setupRoutes(logger, database, svc)

	runServer(ctx, logger, handler)
}

// loadDotEnv loads .env when present. Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx, pkgconfig.NewConfigMetrics("database"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupService wires source configuration, adapters, the ingestion job and the store.
func setupService(logger *slog.Logger, database *sql.DB) *newsUC.Service {
	sources, err := config.LoadSources(logger, pkgconfig.NewConfigMetrics("sources"))
	if err != nil {
		logger.Error("failed to load source configuration", slog.Any("error", err))
		os.Exit(1)
	}

	client := scraper.NewHTTPClient(envconfig.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second))
	registry, err := scraper.NewRegistry(sources, client, logger)
	if err != nil {
		logger.Error("failed to build source adapters", slog.Any("error", err))
		os.Exit(1)
	}

	repo := pgRepo.NewArticleRepo(database)
	return &newsUC.Service{
		Registry:      registry,
		Ingester:      ingest.NewJob(registry, repo, logger),
		Repo:          repo,
		PublicBaseURL: envconfig.GetEnvString("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

// setupRoutes registers all routes and applies the middleware chain:
// request ID, tracing, logging, metrics, recover.
func setupRoutes(logger *slog.Logger, database *sql.DB, svc *newsUC.Service) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthcheck", &hhttp.HealthHandler{DB: database})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	staticDir := envconfig.GetEnvString("STATIC_DIR", "./static")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(staticDir))))

	hnews.Register(mux, svc)

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.Recover(logger),
	)
}

// runServer serves until ctx is cancelled and then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler) {
	addr := envconfig.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
