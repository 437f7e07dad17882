package transform

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers transformation runs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *slog.Logger
}

func NewScheduler(runner *Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
	}
}

// Start registers the schedule and starts the cron loop. An empty schedule
// disables scheduled runs without error.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("transformation schedule not configured, scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		result, err := s.runner.Run(context.Background())
		if err != nil {
			s.logger.Warn("scheduled transformation run failed", "error", err)
			return
		}
		s.logger.Info("scheduled transformation run complete",
			"executed", len(result.Executed))
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("transformation scheduler started", "schedule", schedule)
	return nil
}

// Stop gracefully stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("transformation scheduler stopped")
}
