// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus is a point-in-time view of a registered job.
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
	Running   bool      `json:"running"`
}

type jobState struct {
	job      Job
	schedule string
	entryID  cron.EntryID
	status   JobStatus
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	now  func() time.Time

	mu   sync.Mutex
	jobs map[string]*jobState
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
		now:  time.Now,
		jobs: make(map[string]*jobState),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 0 9 * * MON-FRI"  - 9 AM weekdays
//   - "@every 30s"         - Every 30 seconds
//
// Job names must be unique. Overlapping runs of the same job are skipped.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	state := &jobState{job: job, schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.execute(state)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}
	state.entryID = id
	s.jobs[job.Name()] = state

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a registered job immediately (outside schedule)
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	state, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.log.Info().Str("job", name).Msg("Running job immediately")
	return s.execute(state)
}

var (
	// ErrJobRunning is returned by RunNow when the job is already executing.
	ErrJobRunning = errors.New("job already running")
	// ErrJobNotFound is returned by RunNow for unknown job names.
	ErrJobNotFound = errors.New("job not registered")
)

func (s *Scheduler) execute(state *jobState) error {
	name := state.job.Name()

	s.mu.Lock()
	if state.status.Running {
		s.mu.Unlock()
		s.log.Warn().Str("job", name).Msg("Previous run still in progress, skipping")
		return ErrJobRunning
	}
	state.status.Running = true
	s.mu.Unlock()

	s.log.Debug().Str("job", name).Msg("Running job")
	start := s.now()
	err := state.job.Run()

	s.mu.Lock()
	state.status.Running = false
	state.status.Runs++
	state.status.LastRun = start
	if err != nil {
		state.status.Failures++
		state.status.LastError = err.Error()
	} else {
		state.status.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", name).
			Msg("Job failed")
		return err
	}

	s.log.Debug().
		Str("job", name).
		Dur("duration", s.now().Sub(start)).
		Msg("Job completed")
	return nil
}

// Jobs returns the status of every registered job sorted by name.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, state := range s.jobs {
		status := state.status
		status.Name = name
		status.Schedule = state.schedule
		status.NextRun = s.cron.Entry(state.entryID).Next
		out = append(out, status)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
