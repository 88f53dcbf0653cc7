package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"beantrace/internal/service/tracing"
)

// Scheduler rebuilds the index snapshot on a cron schedule, keeping the
// served lineage in step with a ledger that is written by other systems.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	spec    string
	entryID cron.EntryID
}

// NewScheduler registers a reindex job under the given cron spec.
// A reindex already running when the job fires is reported as a conflict
// by the service and logged, not retried.
func NewScheduler(svc *tracing.Service, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:   cron.New(),
		logger: logger.With("component", "scheduler"),
		spec:   spec,
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		stats, err := svc.Reindex(context.Background())
		if err != nil {
			s.logger.Warn("scheduled reindex failed", "error", err)
			return
		}
		s.logger.Info("scheduled reindex complete",
			"records", stats.Records,
			"lots", stats.Lots,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reindex cron %q: %w", spec, err)
	}
	s.entryID = entryID
	return s, nil
}

// Start begins firing the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reindex scheduler started", "schedule", s.spec)
}

// Stop stops the scheduler. A reindex in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("reindex scheduler stopped")
}
