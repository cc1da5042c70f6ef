// Package jobs provides background job scheduling.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/killsub/backend/internal/logger"
	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run.
const jobTimeout = 30 * time.Minute

// JobFunc is the function signature for jobs.
type JobFunc func(ctx context.Context) error

// Job represents a scheduled job.
type Job struct {
	Name     string
	Schedule string
	Func     JobFunc
	EntryID  cron.EntryID
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]*Job
	log  logger.Logger
	mu   sync.RWMutex
}

// NewScheduler creates a new job scheduler. Schedules use six-field cron
// expressions (with seconds).
func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]*Job),
		log:  log,
	}
}

// Register adds a job to the scheduler.
func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		Name:     name,
		Schedule: schedule,
		Func:     fn,
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return err
	}

	job.EntryID = entryID
	s.jobs[name] = job

	s.log.Info("job registered", logger.String("name", name), logger.String("schedule", schedule))
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.jobs)))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// RunNow runs a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return
	}

	go s.runJob(job)
}

func (s *Scheduler) runJob(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	s.log.Info("job started", logger.String("name", job.Name))

	err := job.Func(ctx)

	duration := time.Since(start)
	if err != nil {
		s.log.Error("job failed", logger.String("name", job.Name), logger.Duration("duration", duration), logger.Err(err))
	} else {
		s.log.Info("job completed", logger.String("name", job.Name), logger.Duration("duration", duration))
	}
}
