package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/hubermanchat/internal/chat"
)

// Task is a job run at a fixed interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// SweepTask returns the task that ends expired sessions.
func SweepTask(registry *chat.Registry, interval time.Duration, logger *slog.Logger) Task {
	if logger == nil {
		logger = slog.Default()
	}
	return Task{
		Name:     "session_sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			removed := registry.Sweep()
			logger.DebugContext(ctx, "Session sweep finished", "removed", removed, "live_sessions", registry.Len())
			return nil
		},
	}
}

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	tasks     []Task
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a new scheduler instance using gocron.
func NewScheduler(logger *slog.Logger, tasks ...Task) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	log := logger.With("component", "scheduler")

	// *slog.Logger satisfies gocron.Logger.
	s, err := gocron.NewScheduler(gocron.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		tasks:     tasks,
	}, nil
}

// Start schedules every task and starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	scheduled := 0
	for _, task := range s.tasks {
		if task.Run == nil || task.Interval <= 0 {
			s.logger.Warn("Skipping task without function or interval", "task_name", task.Name)
			continue
		}

		_, err := s.scheduler.NewJob(
			gocron.DurationJob(task.Interval),
			gocron.NewTask(s.wrap(task)),
			gocron.WithName(task.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", task.Name, "interval", task.Interval, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", task.Name, "interval", task.Interval)
		scheduled++
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduled)
	return nil
}

func (s *Scheduler) wrap(task Task) func() {
	return func() {
		start := time.Now()
		s.logger.Debug("Running scheduled task", "task_name", task.Name)
		if err := task.Run(context.Background()); err != nil {
			s.logger.Error("Scheduled task failed", "task_name", task.Name, "error", err)
		}
		s.logger.Debug("Finished scheduled task", "task_name", task.Name, "duration", time.Since(start))
	}
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
