package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"catchup-server/internal/pkg/config"
)

// ErrMissingDSN is returned by Open when DATABASE_URL is not set.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

const pingTimeout = 5 * time.Second

// Pool sizes the database/sql connection pool. Ingestion runs write in
// short transactions, so a handful of connections is plenty.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

var defaultPool = Pool{
	MaxOpen:     10,
	MaxIdle:     5,
	MaxLifetime: time.Hour,
	MaxIdleTime: 30 * time.Minute,
}

func (p Pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}

// poolFromEnv reads the DB_* overrides. Invalid values keep the default; the
// fallback is logged and counted on m, which may be nil.
func poolFromEnv(m *config.ConfigMetrics) Pool {
	conns := func(v int) error { return config.ValidateIntRange(v, 1, 1000) }
	logger := slog.Default()

	return Pool{
		MaxOpen: config.Resolve(config.LoadEnvInt("DB_MAX_OPEN_CONNS", defaultPool.MaxOpen, conns),
			"max_open_conns", logger, m),
		MaxIdle: config.Resolve(config.LoadEnvInt("DB_MAX_IDLE_CONNS", defaultPool.MaxIdle, conns),
			"max_idle_conns", logger, m),
		MaxLifetime: config.Resolve(config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", defaultPool.MaxLifetime, config.ValidatePositiveDuration),
			"conn_max_lifetime", logger, m),
		MaxIdleTime: config.Resolve(config.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", defaultPool.MaxIdleTime, config.ValidatePositiveDuration),
			"conn_max_idle_time", logger, m),
	}
}

// Open connects to DATABASE_URL through the pgx stdlib driver and pings it.
// Pool setting fallbacks are recorded on metrics, which may be nil.
func Open(ctx context.Context, metrics *config.ConfigMetrics) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool := poolFromEnv(metrics)
	pool.apply(db)
	metrics.MarkLoaded()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected",
		slog.Int("max_open_conns", pool.MaxOpen),
		slog.Int("max_idle_conns", pool.MaxIdle),
		slog.Duration("conn_max_lifetime", pool.MaxLifetime),
		slog.Duration("conn_max_idle_time", pool.MaxIdleTime))
	return db, nil
}
