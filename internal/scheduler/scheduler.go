// Package scheduler wraps github.com/robfig/cron/v3 to drive scheduled
// bulk reindex runs on a configured cron schedule. There is no
// per-job persistence or dynamic job-definition storage here, only the
// one reindex driver function the caller registers.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Job is one registered recurring task: a name for logging, and the
// function the cron schedule invokes.
type Job struct {
	Name    string
	Handler func() error

	entryID   cron.EntryID
	mu        sync.Mutex
	running   bool
	lastRun   *time.Time
	lastError string
}

// Scheduler runs registered Jobs on their cron schedules. Only one
// instance of a given Job runs at a time; an overlapping tick is logged
// and skipped rather than queued. The overlap guard is scoped per-job
// rather than process-wide, since reindex and resample jobs are
// independent of each other.
type Scheduler struct {
	cron   *cron.Cron
	logger arbor.ILogger

	mu      sync.Mutex
	jobs    map[string]*Job
	running bool
}

// New constructs an idle Scheduler.
func New(logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*Job),
	}
}

// Register adds job on the given cron schedule. Must be called before
// Start.
func (s *Scheduler) Register(schedule string, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for job %q: %w", schedule, job.Name, err)
	}
	job.entryID = entryID
	s.jobs[job.Name] = job

	s.logger.Info().Str("job", job.Name).Str("schedule", schedule).Msg("scheduler: job registered")
	return nil
}

// run executes job with panic recovery and overlap protection.
func (s *Scheduler) run(job *Job) {
	job.mu.Lock()
	if job.running {
		job.mu.Unlock()
		s.logger.Warn().Str("job", job.Name).Msg("scheduler: previous run still in progress, skipping this tick")
		return
	}
	job.running = true
	job.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("job", job.Name).Str("panic", fmt.Sprintf("%v", r)).Msg("scheduler: panic recovered in job")
			job.mu.Lock()
			job.running = false
			job.lastError = fmt.Sprintf("panic: %v", r)
			job.mu.Unlock()
		}
	}()

	start := time.Now()
	err := job.Handler()
	completed := time.Now()

	job.mu.Lock()
	job.running = false
	job.lastRun = &completed
	if err != nil {
		job.lastError = err.Error()
	} else {
		job.lastError = ""
	}
	job.mu.Unlock()

	if err != nil {
		s.logger.Error().Str("job", job.Name).Err(err).Dur("duration", time.Since(start)).Msg("scheduler: job run failed")
	} else {
		s.logger.Info().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("scheduler: job run completed")
	}
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info().Msg("scheduler: started")
}

// Stop halts the cron loop and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler: stopped")
}

// TriggerNow runs a registered job immediately, outside its schedule, for
// manual invocation from the serve subcommand's control surface.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: job %q not registered", name)
	}
	go s.run(job)
	return nil
}
