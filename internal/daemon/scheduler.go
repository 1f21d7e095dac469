package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/newsletter/internal/logfields"
)

// Scheduler wraps a gocron scheduler for the weekly run.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler evaluating cron expressions in loc.
func NewScheduler(loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleCron registers fn under a five-field cron expression. A run still in
// progress when the next tick fires causes that tick to be skipped.
func (s *Scheduler) ScheduleCron(name, expr string, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create cron job: %w", err)
	}
	slog.Info("Scheduled job", slog.String("name", name), logfields.Schedule(expr))
	return job.ID().String(), nil
}

// Remove unschedules a job by id.
func (s *Scheduler) Remove(id string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", id, err)
	}
	return s.scheduler.RemoveJob(jobID)
}

// NextRun reports when the job fires next; zero if unknown.
func (s *Scheduler) NextRun(id string) time.Time {
	for _, j := range s.scheduler.Jobs() {
		if j.ID().String() != id {
			continue
		}
		next, err := j.NextRun()
		if err != nil {
			return time.Time{}
		}
		return next
	}
	return time.Time{}
}
