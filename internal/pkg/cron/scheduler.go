package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one unit of periodic work. The context is cancelled on Stop.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
}

// Scheduler runs registered jobs on fixed intervals until stopped.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers fn. Jobs with a non-positive interval are ignored.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		slog.Info("cron job disabled", "name", name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
	slog.Info("cron job registered", "name", name, "interval", interval)
}

// Start launches every job once immediately and then on its interval. Calling
// Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	slog.Info("cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	s.wg.Wait()
	slog.Info("cron scheduler stopped")
}

// RunOnce runs every job sequentially in the caller's goroutine and returns
// the joined errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := run(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	_ = run(ctx, j)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = run(ctx, j)
		}
	}
}

func run(ctx context.Context, j job) error {
	start := time.Now()
	if err := j.fn(ctx); err != nil {
		slog.Error("cron job failed", "name", j.name, "error", err, "duration", time.Since(start))
		return err
	}
	slog.Debug("cron job completed", "name", j.name, "duration", time.Since(start))
	return nil
}
