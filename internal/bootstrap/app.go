package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/sunday/internal/domain/session"
	"github.com/yanqian/sunday/internal/infra/config"
	"github.com/yanqian/sunday/internal/infra/scheduler"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server, the refresh scheduler and live sessions.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
	sessions  session.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, sched *scheduler.Scheduler, sessions session.Service) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		scheduler: sched,
		sessions:  sessions,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.scheduler.Start()
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		shutdownErr := a.shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return shutdownErr
		}
		return errors.Join(err, shutdownErr)
	}
}

// shutdown drains HTTP traffic before live sessions are persisted.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.sessions.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to persist live sessions", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
