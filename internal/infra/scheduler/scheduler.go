package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

const refreshTimeout = 30 * time.Second

// Refresher re-fetches conditions for a location, bypassing the cache.
type Refresher interface {
	Refresh(ctx context.Context, loc conditions.Location) (conditions.Conditions, error)
}

// Target is a named location kept warm in the forecast cache.
type Target struct {
	Name     string
	Location conditions.Location
}

// Scheduler periodically refreshes forecasts for watched locations.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	targets   []Target
	logger    *slog.Logger
	enabled   bool
}

// New registers the refresh job. A disabled scheduler never runs.
func New(enabled bool, spec string, targets []Target, refresher Refresher, logger *slog.Logger) (*Scheduler, error) {
	log := logger.With("component", "scheduler")
	cl := cronLogger{logger: log}
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		targets:   targets,
		logger:    log,
		enabled:   enabled && len(targets) > 0,
	}
	if !s.enabled {
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register refresh job %q: %w", spec, err)
	}
	return s, nil
}

// Start begins executing the job in the background.
func (s *Scheduler) Start() {
	if !s.enabled {
		s.logger.Info("scheduler disabled")
		return
	}
	s.logger.Info("scheduler starting", "targets", len(s.targets))
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce refreshes every target and returns the number of failures.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failures := 0
	for _, target := range s.targets {
		callCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		c, err := s.refresher.Refresh(callCtx, target.Location)
		cancel()
		if err != nil {
			failures++
			s.logger.Warn("forecast refresh failed", "target", target.Name, "error", err)
			continue
		}
		s.logger.Debug("forecast refreshed", "target", target.Name, "uv", c.UVIndex, "max_uv_today", c.MaxUVToday)
	}
	return failures
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
