// Package config loads process settings from the environment in a fail-open way:
// an invalid value never stops the process, it is replaced by the default and
// reported as a warning so operators can fix it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one setting.
// Value always holds a usable value; when FallbackApplied is true it is the default
// and Warnings explains why the environment value was rejected.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvWithFallback reads envKey and validates it.
// Unset or empty variables yield the default without a warning.
//
// Example:
//
//	result := LoadEnvWithFallback("IRISHTIMES_SCHEDULE", "@every 30m", ValidateCronSchedule)
//	schedule := result.Value
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return LoadResult[string]{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, defaultValue, err)
		}
	}

	return LoadResult[string]{Value: value}
}

// LoadEnvDuration reads envKey with time.ParseDuration and then validates it.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return LoadResult[time.Duration]{Value: defaultValue}
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback(envKey, valueStr, defaultValue, err)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, valueStr, defaultValue, err)
		}
	}

	return LoadResult[time.Duration]{Value: value}
}

// LoadEnvInt reads envKey as a base-10 integer and then validates it.
// Surrounding whitespace is ignored.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	valueStr := strings.TrimSpace(os.Getenv(envKey))
	if valueStr == "" {
		return LoadResult[int]{Value: defaultValue}
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback(envKey, valueStr, defaultValue, err)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, valueStr, defaultValue, err)
		}
	}

	return LoadResult[int]{Value: value}
}

// LoadEnvBool reads envKey with strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return LoadResult[bool]{Value: defaultValue}
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback(envKey, valueStr, defaultValue, err)
	}

	return LoadResult[bool]{Value: value}
}

func fallback[T any](envKey, raw string, defaultValue T, err error) LoadResult[T] {
	return LoadResult[T]{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, err, defaultValue,
		)},
		FallbackApplied: true,
	}
}
