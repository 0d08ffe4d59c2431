// Package jobs runs periodic database maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karloscodes/cartridge"
)

var _ cartridge.BackgroundWorker = (*Scheduler)(nil)

// Job is a named periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func() error
}

// Scheduler is responsible for running background jobs
type Scheduler struct {
	logger *slog.Logger
	jobs   []Job

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler returns a stopped scheduler for jobs.
func NewScheduler(logger *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		logger: logger,
		jobs:   jobs,
	}
}

// executeJobSafely runs a job, logging its error or recovered panic. Runs of
// one job never overlap since each job owns a single loop goroutine.
func (s *Scheduler) executeJobSafely(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", job.Name),
				slog.Any("panic", r))
		}
	}()

	if err := job.Run(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", job.Name), slog.Any("error", err))
	}
}

// Start launches one goroutine per job. Each job runs once immediately and
// then on its interval. No job is started if any interval is not positive.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %q: interval must be positive, got %s", job.Name, job.Interval)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.isRunning = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	s.logger.Info("Background jobs started", slog.Int("jobs", len(s.jobs)))
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	s.logger.Info("Starting job", slog.String("job", job.Name), slog.Duration("interval", job.Interval))
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.executeJobSafely(job)
	for {
		select {
		case <-ticker.C:
			s.executeJobSafely(job)
		case <-ctx.Done():
			s.logger.Info("Job stopped", slog.String("job", job.Name))
			return
		}
	}
}

// Stop halts all background jobs and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.logger.Info("Stopping background jobs...")
	s.cancel()
	s.isRunning = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
