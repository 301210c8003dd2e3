package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/observability/metrics"
	"catchup-server/internal/observability/tracing"
	"catchup-server/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Job runs fetch, parse, validate and persist for one source at a time.
// Runs of different sources may overlap. A Run that finds a run of the same
// source still in flight returns *RunInProgressError without doing anything,
// whoever started the first one (scheduler tick or manual trigger).
type Job struct {
	registry *Registry
	articles repository.ArticleRepository
	logger   *slog.Logger

	mu      sync.Mutex
	states  map[entity.NewsSource]State
	running map[entity.NewsSource]bool
}

// NewJob creates a Job. A nil logger means slog.Default().
func NewJob(registry *Registry, articles repository.ArticleRepository, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		registry: registry,
		articles: articles,
		logger:   logger,
		states:   make(map[entity.NewsSource]State),
		running:  make(map[entity.NewsSource]bool),
	}
}

// State returns the current state of source. Sources that never ran are Idle.
func (j *Job) State(source entity.NewsSource) State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.states[source]
}

// Run performs one ingestion run for source and returns the number of persisted
// articles, which is zero when the upstream had nothing valid.
// Run-level failures are returned as *JobError; nothing of a failed run is left
// in the store. An unknown source yields *entity.UnsupportedSourceError.
func (j *Job) Run(ctx context.Context, source entity.NewsSource) (int, error) {
	if !j.acquire(source) {
		return 0, &RunInProgressError{Source: source}
	}
	defer j.release(source)

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.run",
		trace.WithAttributes(attribute.String("source", source.Key())))
	defer span.End()

	start := time.Now()
	logger := j.logger.With(slog.String("source", source.Key()))

	articles, err := j.collect(ctx, source, logger, true)
	if err == nil {
		j.setState(source, StatePersisting)
		if saveErr := j.articles.Save(ctx, articles); saveErr != nil {
			err = j.fail(source, StagePersist, saveErr)
		}
	}

	if err != nil {
		var jobErr *JobError
		if errors.As(err, &jobErr) {
			metrics.RecordIngestionRun(source.Key(), false, string(jobErr.Stage), time.Since(start))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("ingestion run failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return 0, err
	}

	j.setState(source, StateIdle)
	metrics.RecordIngestionRun(source.Key(), true, "", time.Since(start))
	metrics.RecordArticlesPersisted(source.Key(), len(articles))
	span.SetAttributes(attribute.Int("articles", len(articles)))
	logger.Info("ingestion run completed",
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)))

	return len(articles), nil
}

// Collect fetches, parses and validates source without persisting anything.
// It backs live reads of API sources. It is not a run: it neither takes the
// run guard nor moves the source's State.
func (j *Job) Collect(ctx context.Context, source entity.NewsSource) ([]*entity.Article, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.collect",
		trace.WithAttributes(attribute.String("source", source.Key())))
	defer span.End()

	articles, err := j.collect(ctx, source, j.logger.With(slog.String("source", source.Key())), false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return articles, nil
}

// collect moves the source's State only when track is set.
func (j *Job) collect(ctx context.Context, source entity.NewsSource, logger *slog.Logger, track bool) ([]*entity.Article, error) {
	adapter, err := j.registry.Adapter(source)
	if err != nil {
		return nil, err
	}
	mark := func(state State) {
		if track {
			j.setState(source, state)
		}
	}

	mark(StateFetching)
	doc, err := adapter.Fetch(ctx)
	if err != nil {
		mark(StateFailed)
		return nil, &JobError{Source: source, Stage: StageFetch, Err: err}
	}

	mark(StateParsing)
	candidates, err := adapter.Parse(doc)
	if err != nil {
		mark(StateFailed)
		return nil, &JobError{Source: source, Stage: StageParse, Err: err}
	}

	mark(StateValidating)
	articles := make([]*entity.Article, 0, 32)
	for c := range candidates {
		article, err := entity.NewArticle(entity.ArticleParams{
			Title:      c.Title,
			Summary:    c.Summary,
			Link:       c.Link,
			Source:     source,
			Tags:       c.Tags,
			AuthorName: c.AuthorName,
			BodyText:   c.BodyText,
		})
		if err != nil {
			metrics.RecordItemDropped(source.Key(), "validation")
			logger.Warn("dropping invalid article",
				slog.String("title", c.Title),
				slog.String("link", c.Link),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func (j *Job) fail(source entity.NewsSource, stage Stage, err error) error {
	j.setState(source, StateFailed)
	return &JobError{Source: source, Stage: stage, Err: err}
}

func (j *Job) acquire(source entity.NewsSource) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running[source] {
		return false
	}
	j.running[source] = true
	return true
}

func (j *Job) release(source entity.NewsSource) {
	j.mu.Lock()
	delete(j.running, source)
	j.mu.Unlock()
}

func (j *Job) setState(source entity.NewsSource, state State) {
	j.mu.Lock()
	j.states[source] = state
	j.mu.Unlock()
	metrics.SetJobState(source.Key(), state.String(), stateLabels())
}
