// Package scheduler triggers ingestion cycles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	logpkg "github.com/kailas-cloud/feedradar/internal/logger"
)

// cycleTimeout bounds a scheduled cycle. Interactive runs are bounded by the
// caller's context instead.
const cycleTimeout = 15 * time.Minute

// Runner is the job the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) (*cycle.Summary, error)
}

// Scheduler runs cycles in the background on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *zap.Logger
}

// New creates a Scheduler in the given timezone.
func New(runner Runner, timezone string, logger *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		logger: logger,
	}, nil
}

// Schedule registers the cycle job. Spec uses the standard five-field cron
// format, e.g. "*/30 * * * *".
func (s *Scheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runCycle); err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}
	return nil
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()
	ctx = logpkg.ContextWithLogger(ctx, s.logger)

	s.logger.Info("Starting scheduled cycle")
	start := time.Now()

	sum, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled cycle failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled cycle completed",
		zap.String("cycle_id", sum.ID),
		zap.Int("fetched", sum.Fetched),
		zap.Int("rejected", sum.RejectedTotal()),
		zap.Int("persisted", len(sum.Persisted)),
		zap.Duration("took", time.Since(start)),
	)
}

// Start begins running scheduled cycles in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once any in-flight
// cycle finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
