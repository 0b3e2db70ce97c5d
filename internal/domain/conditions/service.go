package conditions

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/sunday/pkg/errors"
)

// Service resolves current conditions for a location.
type Service interface {
	Current(ctx context.Context, loc Location) (Conditions, error)
	Refresh(ctx context.Context, loc Location) (Conditions, error)
}

type service struct {
	cfg      Config
	provider Provider
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the conditions domain.
func NewService(cfg Config, provider Provider, cache Cache, logger *slog.Logger) Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &service{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "conditions.service"),
		now:      time.Now,
	}
}

func (s *service) Current(ctx context.Context, loc Location) (Conditions, error) {
	if err := loc.Validate(); err != nil {
		return Conditions{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	key := loc.Key()
	forecast, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("conditions cache read failed", "key", key, "error", err)
	}
	if !ok || err != nil {
		return s.fetch(ctx, loc, key)
	}
	s.logger.Debug("conditions cache hit", "key", key)
	return Derive(forecast, s.now()), nil
}

func (s *service) Refresh(ctx context.Context, loc Location) (Conditions, error) {
	if err := loc.Validate(); err != nil {
		return Conditions{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	return s.fetch(ctx, loc, loc.Key())
}

func (s *service) fetch(ctx context.Context, loc Location, key string) (Conditions, error) {
	forecast, err := s.provider.Fetch(ctx, loc)
	if err != nil {
		return Conditions{}, apperrors.Wrap(apperrors.CodeUVDataError, "failed to fetch UV data", err)
	}
	if forecast.FetchedAt.IsZero() {
		forecast.FetchedAt = s.now().UTC()
	}
	if err := s.cache.Set(ctx, key, forecast, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("conditions cache write failed", "key", key, "error", err)
	}
	s.logger.Info("conditions fetched", "key", key, "hours", len(forecast.Hourly), "days", len(forecast.Days), "source", forecast.Source)
	return Derive(forecast, s.now()), nil
}
