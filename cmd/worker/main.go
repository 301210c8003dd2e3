package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"catchup-server/internal/config"
	"catchup-server/internal/domain/entity"
	pgRepo "catchup-server/internal/infra/adapter/persistence/postgres"
	"catchup-server/internal/infra/db"
	"catchup-server/internal/infra/scraper"
	workerPkg "catchup-server/internal/infra/worker"
	"catchup-server/internal/observability/logging"
	pkgconfig "catchup-server/internal/pkg/config"
	"catchup-server/internal/usecase/ingest"
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

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Bool("run_on_start", workerConfig.RunOnStart))

	sources, err := config.LoadSources(logger, pkgconfig.NewConfigMetrics("sources"))
	if err != nil {
		logger.Error("failed to load source configuration", slog.Any("error", err))
		os.Exit(1)
	}

	job := setupJob(logger, database, sources)

	healthServer := workerPkg.NewHealthServer(
		fmt.Sprintf(":%d", workerConfig.HealthPort),
		logger,
		workerPkg.Check{Name: "database", Probe: database.PingContext},
	)
	go func() {
		if err := healthServer.Run(ctx); err != nil {
			logger.Error("health server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	scheduler := startScheduler(logger, job, sources, workerConfig, workerMetrics)
	healthServer.SetReady(true)

	if workerConfig.RunOnStart {
		go func() {
			if err := scheduler.RunOnce(ctx); err != nil {
				logger.Warn("warm-up ingestion finished with errors", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), workerConfig.RunTimeout)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		logger.Warn("ingestion runs cancelled at shutdown", slog.Any("error", err))
	}
	logger.Info("worker stopped")
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

func setupJob(logger *slog.Logger, database *sql.DB, sources *config.SourcesConfig) *ingest.Job {
	client := scraper.NewHTTPClient(envconfig.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second))
	registry, err := scraper.NewRegistry(sources, client, logger)
	if err != nil {
		logger.Error("failed to build source adapters", slog.Any("error", err))
		os.Exit(1)
	}
	return ingest.NewJob(registry, pgRepo.NewArticleRepo(database), logger)
}

// startScheduler schedules every enabled source and starts ticking.
func startScheduler(
	logger *slog.Logger,
	job *ingest.Job,
	sources *config.SourcesConfig,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
) *workerPkg.Scheduler {
	specs := lo.Map(sources.EnabledSources(), func(src entity.NewsSource, _ int) workerPkg.JobSpec {
		settings, _, _ := sources.Settings(src)
		return workerPkg.JobSpec{Source: src, Schedule: settings.Schedule}
	})
	if len(specs) == 0 {
		logger.Warn("no sources enabled, the worker will only serve health endpoints")
	}

	scheduler, err := workerPkg.NewScheduler(job, specs, workerPkg.SchedulerOptions{
		Location:   cfg.Location(),
		RunTimeout: cfg.RunTimeout,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	return scheduler
}
