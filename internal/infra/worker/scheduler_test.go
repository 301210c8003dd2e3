package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/observability/metrics"
	"catchup-server/internal/usecase/ingest"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// blockingRunner blocks every run until release is closed or ctx ends.
type blockingRunner struct {
	release chan struct{}
	started chan entity.NewsSource
	calls   atomic.Int32
	err     error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{}), started: make(chan entity.NewsSource, 16)}
}

func (r *blockingRunner) Run(ctx context.Context, source entity.NewsSource) (int, error) {
	r.calls.Add(1)
	r.started <- source
	select {
	case <-r.release:
		return 3, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func newTestScheduler(t *testing.T, runner Runner, specs ...JobSpec) *Scheduler {
	t.Helper()
	s, err := NewScheduler(runner, specs, SchedulerOptions{
		Logger:  discardLogger,
		Metrics: NewWorkerMetricsWithRegistry(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return s
}

func TestScheduler_SkipsOverlappingTick(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(t, runner, JobSpec{Source: entity.Dou, Schedule: "@every 30m"})
	job := s.jobs[0]
	skippedBefore := testutil.ToFloat64(metrics.SchedulerTicksSkippedTotal.WithLabelValues("dou"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run()
	}()
	<-runner.started

	ran, err := job.trigger(context.Background())
	assert.False(t, ran)
	assert.NoError(t, err)
	job.Run() // a cron tick while running returns at once

	close(runner.release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(metrics.SchedulerTicksSkippedTotal.WithLabelValues("dou")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.RunningJobs.WithLabelValues("dou")))

	// the guard is released after the run
	ran, err = job.trigger(context.Background())
	assert.True(t, ran)
	assert.NoError(t, err)
}

func TestScheduler_DifferentJobsOverlap(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(t, runner,
		JobSpec{Source: entity.IrishTimes, Schedule: "@every 30m"},
		JobSpec{Source: entity.Dou, Schedule: "@every 30m"},
	)

	errCh := make(chan error, 1)
	go func() { errCh <- s.RunOnce(context.Background()) }()

	got := map[entity.NewsSource]bool{<-runner.started: true, <-runner.started: true}
	assert.Equal(t, map[entity.NewsSource]bool{entity.IrishTimes: true, entity.Dou: true}, got)

	close(runner.release)
	require.NoError(t, <-errCh)
}

func TestScheduler_RunOnceReturnsRunError(t *testing.T) {
	runner := newBlockingRunner()
	runner.err = errors.New("ingest dou: fetch: boom")
	close(runner.release)
	s := newTestScheduler(t, runner, JobSpec{Source: entity.Dou, Schedule: "*/5 * * * *"})

	err := s.RunOnce(context.Background())

	assert.EqualError(t, err, "ingest dou: fetch: boom")
}

func TestScheduler_StartRegistersEntries(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(t, runner,
		JobSpec{Source: entity.IrishTimes, Schedule: "@every 30m"},
		JobSpec{Source: entity.Dou, Schedule: "0 * * * *"},
	)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	assert.Len(t, s.cron.Entries(), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.ScheduledJobs))
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopWaitsThenCancels(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(t, runner, JobSpec{Source: entity.Dou, Schedule: "@every 30m"})

	errCh := make(chan error, 1)
	go func() { errCh <- s.RunOnce(context.Background()) }()
	<-runner.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, <-errCh, context.Canceled, "the run in progress is cancelled")
}

func TestScheduler_TickDuringManualRunIsSkipped(t *testing.T) {
	runner := newBlockingRunner()
	runner.err = &ingest.RunInProgressError{Source: entity.IrishTimes}
	close(runner.release)
	s := newTestScheduler(t, runner, JobSpec{Source: entity.IrishTimes, Schedule: "@every 30m"})
	skippedBefore := testutil.ToFloat64(metrics.SchedulerTicksSkippedTotal.WithLabelValues("irishtimes"))

	ran, err := s.jobs[0].trigger(context.Background())

	assert.False(t, ran)
	assert.NoError(t, err)
	assert.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(metrics.SchedulerTicksSkippedTotal.WithLabelValues("irishtimes")))
}

func TestScheduler_NoRunsAfterStop(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(t, runner, JobSpec{Source: entity.Dou, Schedule: "@every 30m"})

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.RunOnce(context.Background()))

	ran, err := s.jobs[0].trigger(context.Background())
	assert.False(t, ran)
	assert.NoError(t, err)
	assert.Zero(t, runner.calls.Load())
	assert.False(t, s.jobs[0].running.Load(), "the job guard is released")
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(newBlockingRunner(), []JobSpec{{Source: entity.Dou, Schedule: "every minute"}}, SchedulerOptions{})

	assert.ErrorContains(t, err, "schedule of dou")
}
