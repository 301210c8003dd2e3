// Package config holds the per-source ingestion settings shared by the API and the worker.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"catchup-server/internal/domain/entity"
	pkgconfig "catchup-server/internal/pkg/config"
	envconfig "catchup-server/pkg/config"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// SourceSettings configures one upstream news source.
type SourceSettings struct {
	// URL is the listing page or API endpoint fetched on every run.
	URL string `yaml:"url" validate:"required,url"`

	// Schedule is a standard cron expression or descriptor, e.g. "@every 30m".
	Schedule string `yaml:"schedule" validate:"required"`

	// Enabled controls whether the worker schedules the source.
	Enabled bool `yaml:"enabled"`
}

// HTMLSourceSettings configures a scraped source. Tag is applied to articles
// when the page itself carries none.
type HTMLSourceSettings struct {
	SourceSettings `yaml:",inline"`
	Tag            string `yaml:"tag" validate:"required"`
}

// SourcesConfig is the settings of every supported source.
type SourcesConfig struct {
	IrishTimes HTMLSourceSettings `yaml:"irishtimes"`
	HackerNews SourceSettings     `yaml:"hackernews"`
	Dou        HTMLSourceSettings `yaml:"dou"`
}

// DefaultSources returns the built-in settings.
func DefaultSources() SourcesConfig {
	return SourcesConfig{
		IrishTimes: HTMLSourceSettings{
			SourceSettings: SourceSettings{
				URL:      "https://www.irishtimes.com/technology",
				Schedule: "@every 30m",
				Enabled:  true,
			},
			Tag: "technology",
		},
		HackerNews: SourceSettings{
			URL:      "https://hn.algolia.com/api/v1/search_by_date?tags=story",
			Schedule: "@every 15m",
			Enabled:  false,
		},
		Dou: HTMLSourceSettings{
			SourceSettings: SourceSettings{
				URL:      "https://dou.ua/lenta",
				Schedule: "@every 30m",
				Enabled:  true,
			},
			Tag: "IT",
		},
	}
}

// Settings returns the common settings of source and its default tag,
// which is empty for API sources.
func (c *SourcesConfig) Settings(source entity.NewsSource) (SourceSettings, string, bool) {
	switch source {
	case entity.IrishTimes:
		return c.IrishTimes.SourceSettings, c.IrishTimes.Tag, true
	case entity.HackerNews:
		return c.HackerNews, "", true
	case entity.Dou:
		return c.Dou.SourceSettings, c.Dou.Tag, true
	default:
		return SourceSettings{}, "", false
	}
}

// EnabledSources lists the sources the worker should schedule, in display order.
func (c *SourcesConfig) EnabledSources() []entity.NewsSource {
	var out []entity.NewsSource
	for _, s := range entity.AllNewsSources() {
		if settings, _, ok := c.Settings(s); ok && settings.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks struct constraints and every cron schedule.
func (c *SourcesConfig) Validate() error {
	var errs []error
	if err := validator.New().Struct(c); err != nil {
		errs = append(errs, err)
	}
	for _, s := range entity.AllNewsSources() {
		settings, _, _ := c.Settings(s)
		if err := pkgconfig.ValidateCronSchedule(settings.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("%s schedule: %w", s.Key(), err))
		}
	}
	return errors.Join(errs...)
}

// LoadSources builds the source settings from the defaults, then the YAML file
// named by SOURCES_CONFIG_FILE (if set), then per-source environment variables:
//
//	IRISHTIMES_URL, IRISHTIMES_TAG, IRISHTIMES_SCHEDULE, IRISHTIMES_ENABLED
//	HACKERNEWS_URL, HACKERNEWS_SCHEDULE, HACKERNEWS_ENABLED
//	DOU_URL, DOU_TAG, DOU_SCHEDULE, DOU_ENABLED
//
// An invalid schedule or enabled flag in the environment falls back to the file or
// default value with a warning. A missing or malformed file, or a result that
// fails validation, is an error.
func LoadSources(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*SourcesConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := DefaultSources()

	if path := envconfig.GetEnvString("SOURCES_CONFIG_FILE", ""); path != "" {
		if err := loadSourcesFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applySourceEnv(entity.IrishTimes, &cfg.IrishTimes.SourceSettings, &cfg.IrishTimes.Tag, logger, metrics)
	applySourceEnv(entity.HackerNews, &cfg.HackerNews, nil, logger, metrics)
	applySourceEnv(entity.Dou, &cfg.Dou.SourceSettings, &cfg.Dou.Tag, logger, metrics)

	metrics.MarkLoaded()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}
	return &cfg, nil
}

// loadSourcesFile overlays the YAML file at path onto cfg. Keys missing from
// the file keep their current value.
func loadSourcesFile(path string, cfg *SourcesConfig) error {
	// #nosec G304 -- path comes from the operator's environment, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read sources file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}
	return nil
}

func applySourceEnv(source entity.NewsSource, s *SourceSettings, tag *string, logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) {
	prefix := strings.ToUpper(source.Key()) + "_"

	s.URL = envconfig.GetEnvString(prefix+"URL", s.URL)
	if tag != nil {
		*tag = envconfig.GetEnvString(prefix+"TAG", *tag)
	}

	s.Schedule = pkgconfig.Resolve(
		pkgconfig.LoadEnvWithFallback(prefix+"SCHEDULE", s.Schedule, pkgconfig.ValidateCronSchedule),
		prefix+"SCHEDULE", logger, metrics)
	s.Enabled = pkgconfig.Resolve(pkgconfig.LoadEnvBool(prefix+"ENABLED", s.Enabled), prefix+"ENABLED", logger, metrics)
}
