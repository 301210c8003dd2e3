package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"catchup-server/internal/domain/entity"
	"catchup-server/internal/observability/metrics"
	"catchup-server/internal/usecase/ingest"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Runner performs one ingestion run. *ingest.Job implements it.
type Runner interface {
	Run(ctx context.Context, source entity.NewsSource) (int, error)
}

// JobSpec schedules the ingestion of one source.
type JobSpec struct {
	Source   entity.NewsSource
	Schedule string
}

// SchedulerOptions configures a Scheduler. Zero values select the defaults.
type SchedulerOptions struct {
	Location   *time.Location // default time.UTC
	RunTimeout time.Duration  // default 5m
	Logger     *slog.Logger
	Metrics    *WorkerMetrics // optional
}

// Scheduler runs ingestion jobs on their cron schedules.
// Each job has its own guard: a tick that fires while the previous run of the
// same job is still in progress is dropped. Different jobs may overlap.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	jobs       []*guardedJob
	runTimeout time.Duration
	logger     *slog.Logger
	metrics    *WorkerMetrics

	baseCtx    context.Context
	cancelBase context.CancelFunc
	started    atomic.Bool

	// mu orders wg.Add in trigger against stopping in Stop.
	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

// guardedJob is the cron.Job of one JobSpec.
type guardedJob struct {
	spec      JobSpec
	scheduler *Scheduler
	running   atomic.Bool
}

// NewScheduler validates every schedule and builds a stopped Scheduler.
func NewScheduler(runner Runner, specs []JobSpec, opts SchedulerOptions) (*Scheduler, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(opts.Location)),
		runner:     runner,
		runTimeout: opts.RunTimeout,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}

	for _, spec := range specs {
		if _, err := cron.ParseStandard(spec.Schedule); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule of %s: %w", spec.Source.Key(), err)
		}
		s.jobs = append(s.jobs, &guardedJob{spec: spec, scheduler: s})
	}
	return s, nil
}

// Start registers every job with cron and starts ticking. It is a no-op when
// called again.
func (s *Scheduler) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	for _, job := range s.jobs {
		if _, err := s.cron.AddJob(job.spec.Schedule, job); err != nil {
			return fmt.Errorf("register %s: %w", job.spec.Source.Key(), err)
		}
		s.logger.Info("ingestion job scheduled",
			slog.String("source", job.spec.Source.Key()),
			slog.String("schedule", job.spec.Schedule))
	}
	if s.metrics != nil {
		s.metrics.ScheduledJobs.Set(float64(len(s.cron.Entries())))
	}
	s.cron.Start()
	return nil
}

// Stop stops ticking and waits for runs in progress. If ctx ends first, the
// runs are cancelled and ctx.Err() is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancelBase()
		return nil
	case <-ctx.Done():
		s.cancelBase()
		return ctx.Err()
	}
}

// RunOnce runs every job once, concurrently, through the same guards as the
// cron ticks. A job whose previous run is still going is skipped. It returns
// the first run error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var g errgroup.Group
	for _, job := range s.jobs {
		g.Go(func() error {
			_, err := job.trigger(ctx)
			return err
		})
	}
	return g.Wait()
}

// Run implements cron.Job.
func (j *guardedJob) Run() {
	_, _ = j.trigger(j.scheduler.baseCtx)
}

// trigger runs the job unless a run is already in progress, in which case it
// reports ran=false. Once Stop has been called nothing new is started.
func (j *guardedJob) trigger(ctx context.Context) (ran bool, err error) {
	s := j.scheduler
	source := j.spec.Source.Key()

	if !j.running.CompareAndSwap(false, true) {
		j.skipped("scheduler")
		return false, nil
	}
	if !s.enter() {
		j.running.Store(false)
		return false, nil
	}
	defer func() {
		j.running.Store(false)
		if s.metrics != nil {
			s.metrics.SetRunning(source, false)
		}
		s.wg.Done()
	}()
	if s.metrics != nil {
		s.metrics.SetRunning(source, true)
	}

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	// The job logs the outcome of the run itself.
	if _, err := s.runner.Run(ctx, j.spec.Source); err != nil {
		if errors.Is(err, ingest.ErrRunInProgress) {
			j.skipped("manual trigger")
			return false, nil
		}
		return true, err
	}
	return true, nil
}

// skipped records a dropped tick. holder names who owns the running run.
func (j *guardedJob) skipped(holder string) {
	metrics.RecordTickSkipped(j.spec.Source.Key())
	j.scheduler.logger.Warn("ingestion run still in progress, skipping tick",
		slog.String("source", j.spec.Source.Key()),
		slog.String("held_by", holder))
}

// enter registers a run with the wait group unless the scheduler is stopping.
func (s *Scheduler) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.wg.Add(1)
	return true
}
