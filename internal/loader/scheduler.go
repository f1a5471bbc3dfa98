package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic summary-table refreshes on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	loader *Loader
	logger *slog.Logger
}

// NewScheduler creates a scheduler that refreshes the summary tables on the
// given cron expression.
func NewScheduler(loader *Loader, schedule string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		loader: loader,
		logger: logger.With("component", "scheduler"),
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.loader.RefreshSummaries(ctx); err != nil {
			s.logger.Warn("scheduled summary refresh failed", "error", err)
			return
		}
		s.logger.Info("scheduled summary refresh completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running scheduled refreshes.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("summary refresh scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("summary refresh scheduler stopped")
}
