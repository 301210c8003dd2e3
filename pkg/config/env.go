// Package config reads plain process settings from the environment.
// A value that does not parse is replaced by the default and logged.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// GetEnvString returns key with surrounding whitespace removed, or
// defaultValue when the result is empty.
func GetEnvString(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvDuration parses key with time.ParseDuration, e.g. HTTP_CLIENT_TIMEOUT=15s.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring invalid duration",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", defaultValue),
			slog.Any("error", err))
		return defaultValue
	}
	return d
}
