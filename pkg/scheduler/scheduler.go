// Package scheduler runs maintenance jobs at fixed intervals.
//
// Jobs declare their own cadence: a stable name, a poll interval, and a
// per-run timeout. The scheduler enforces both, skips a tick when the
// previous run of the same job is still in flight, and drains running
// jobs on Stop. Job failures are logged, never fatal; the next tick
// runs regardless.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic maintenance work.
type Job interface {
	// Name identifies the job in logs and lookups. It must be unique
	// within one scheduler.
	Name() string

	// Interval is the period between run starts.
	Interval() time.Duration

	// Timeout bounds a single run. Zero means no timeout.
	Timeout() time.Duration

	// Run executes one cycle. The context carries the run timeout and
	// is cancelled when the scheduler shuts down.
	Run(ctx context.Context) error
}

type jobEntry struct {
	job     Job
	entryID cron.EntryID

	// mu is held for the duration of a run; an already-held lock means
	// the previous tick is still executing and this one is skipped.
	mu sync.Mutex
}

// Scheduler executes registered jobs on their declared intervals.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	jobs    []*jobEntry
	mu      sync.Mutex
	running bool
}

// New creates an empty scheduler. Register jobs with AddJob, then call
// Start.
func New() *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: slog.Default().With("component", "scheduler"),
	}
}

// AddJob registers a job. Jobs must be added before Start.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already started, cannot add job %q", job.Name())
	}
	if job.Interval() <= 0 {
		return fmt.Errorf("job %q has no interval", job.Name())
	}
	for _, entry := range s.jobs {
		if entry.job.Name() == job.Name() {
			return fmt.Errorf("job %q already registered", job.Name())
		}
	}

	s.jobs = append(s.jobs, &jobEntry{job: job})
	return nil
}

// Start schedules every registered job and begins ticking. The context
// is the parent of every run; cancelling it stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if len(s.jobs) == 0 {
		s.logger.Info("no jobs registered, scheduler idle")
		return nil
	}

	for _, entry := range s.jobs {
		entry := entry
		spec := fmt.Sprintf("@every %s", entry.job.Interval())

		id, err := s.cron.AddFunc(spec, func() {
			s.runJob(ctx, entry)
		})
		if err != nil {
			return fmt.Errorf("scheduling job %q: %w", entry.job.Name(), err)
		}
		entry.entryID = id

		s.logger.Info("job scheduled",
			"job", entry.job.Name(),
			"interval", entry.job.Interval(),
			"timeout", entry.job.Timeout(),
		)
	}

	s.cron.Start()
	s.running = true

	// Stop with the parent context in the background.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runJob executes one tick of a job, honoring the job's timeout and
// skipping the tick when the previous run has not finished.
func (s *Scheduler) runJob(ctx context.Context, entry *jobEntry) {
	if !entry.mu.TryLock() {
		s.logger.Warn("previous run still in progress, skipping tick",
			"job", entry.job.Name())
		return
	}
	defer entry.mu.Unlock()

	runCtx := ctx
	cancel := func() {}
	if timeout := entry.job.Timeout(); timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	start := time.Now()
	s.logger.Debug("job starting", "job", entry.job.Name())

	if err := entry.job.Run(runCtx); err != nil {
		s.logger.Error("job failed",
			"job", entry.job.Name(),
			"duration", time.Since(start),
			"error", err,
		)
		return
	}

	s.logger.Debug("job finished",
		"job", entry.job.Name(),
		"duration", time.Since(start),
	)
}

// Stop halts scheduling and waits for in-flight runs to finish. It is
// safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // wait for running jobs to finish
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning returns true while the scheduler is ticking.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled start of the named job, or nil if
// the job is unknown or the scheduler is not running.
func (s *Scheduler) NextRun(jobName string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.jobs {
		if entry.job.Name() != jobName {
			continue
		}
		e := s.cron.Entry(entry.entryID)
		if !e.Valid() {
			return nil
		}
		next := e.Next
		return &next
	}
	return nil
}
