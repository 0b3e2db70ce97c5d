package advisor

import (
	"context"
	"log/slog"

	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/exposure"
	"github.com/yanqian/sunday/internal/domain/session"
)

// RateEvaluator feeds live sessions with the profile's current vitamin D rate.
type RateEvaluator struct {
	cfg        Config
	profiles   ProfileReader
	conditions ConditionsSource
	logger     *slog.Logger
}

// NewRateEvaluator builds the evaluator used by the session service.
func NewRateEvaluator(cfg Config, profiles ProfileReader, conds ConditionsSource, logger *slog.Logger) *RateEvaluator {
	return &RateEvaluator{
		cfg:        cfg,
		profiles:   profiles,
		conditions: conds,
		logger:     logger.With("component", "advisor.rate"),
	}
}

var _ session.RateEvaluator = (*RateEvaluator)(nil)

// EvaluateRate returns the truncated rate for profileID at loc. A non-nil
// uvOverride is used as is and skips the conditions lookup and the
// time-of-day weighting.
func (e *RateEvaluator) EvaluateRate(ctx context.Context, profileID string, loc conditions.Location, uvOverride *float64) (session.RateSample, error) {
	p, err := e.profiles.Get(ctx, profileID)
	if err != nil {
		return session.RateSample{}, err
	}
	if uvOverride != nil {
		in := p.ExposureInput(*uvOverride)
		return session.RateSample{UVIndex: *uvOverride, RateIUPerMinute: exposure.VitaminDRatePerMinute(in)}, nil
	}

	conds, err := e.conditions.Current(ctx, loc)
	if err != nil {
		return session.RateSample{}, err
	}
	in := p.ExposureInput(conds.UVIndex)
	if e.cfg.ApplyTimeOfDay && !conds.ObservedAt.IsZero() {
		in.UVQualityFactor = exposure.TimeOfDayFactor(conds.ObservedAt)
	}
	rate := exposure.VitaminDRatePerMinute(in)
	e.logger.Debug("session rate evaluated", "profile_id", profileID, "uv", conds.UVIndex, "rate", rate)
	return session.RateSample{UVIndex: conds.UVIndex, RateIUPerMinute: rate}, nil
}
