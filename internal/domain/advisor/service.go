package advisor

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/exposure"
	"github.com/yanqian/sunday/internal/domain/profile"
	apperrors "github.com/yanqian/sunday/pkg/errors"
)

// Service exposes exposure estimates built from profiles and live conditions.
type Service interface {
	Estimate(ctx context.Context, profileID string, req EstimateRequest) (Estimate, error)
	Compute(ctx context.Context, in exposure.Input) (ComputeResponse, error)
}

type service struct {
	cfg        Config
	profiles   ProfileReader
	conditions ConditionsSource
	progress   ProgressReader
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires up the advisor domain.
func NewService(cfg Config, profiles ProfileReader, conds ConditionsSource, progress ProgressReader, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		profiles:   profiles,
		conditions: conds,
		progress:   progress,
		logger:     logger.With("component", "advisor.service"),
		now:        time.Now,
	}
}

func (s *service) Compute(_ context.Context, in exposure.Input) (ComputeResponse, error) {
	if in.SkinType == 0 {
		in.SkinType = exposure.DefaultSkinType
	}
	if in.ClothingLevel == "" {
		in.ClothingLevel = exposure.DefaultClothingLevel
	}
	if math.IsNaN(in.UVIndex) || math.IsInf(in.UVIndex, 0) {
		return ComputeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "uvIndex must be a finite number", nil)
	}
	if err := in.Validate(); err != nil {
		return ComputeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	return ComputeResponse{
		Output:              exposure.Compute(in),
		VitaminDRatePrecise: exposure.VitaminDRatePrecise(in),
		Category:            exposure.Category(math.Max(0, in.UVIndex)),
		SkinDescription:     in.SkinType.Description(),
		ClothingLabel:       in.ClothingLevel.Label(),
		BurnLimits:          burnLimitTable(in.UVIndex),
	}, nil
}

func (s *service) Estimate(ctx context.Context, profileID string, req EstimateRequest) (Estimate, error) {
	if err := req.Location.Validate(); err != nil {
		return Estimate{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return Estimate{}, err
	}

	res := Estimate{Profile: profile.ToView(p), DailyGoalIU: p.DailyGoalIU}
	conds, err := s.conditions.Current(ctx, req.Location)
	switch {
	case err == nil:
		res.Conditions = conds
	case req.BestEffort && apperrors.IsCode(err, apperrors.CodeUVDataError):
		s.logger.Warn("estimate without conditions", "profile_id", profileID, "error", err)
		res.Degraded = true
	default:
		return Estimate{}, err
	}

	uv, at := conds.UVIndex, conds.ObservedAt
	if req.At != nil {
		uv, at = uvAt(conds, *req.At)
	}
	if at.IsZero() {
		at = s.now()
	}

	in := p.ExposureInput(uv)
	in.UVQualityFactor = s.qualityFactor(at)
	res.UVIndex = uv
	res.Category = exposure.Category(uv)
	res.UVQualityFactor = positiveOr(in.UVQualityFactor, 1.0)
	res.BurnLimitMinutes = exposure.BurnLimitMinutes(in)
	res.BurnLimits = burnLimitTable(uv)
	res.VitaminDRateIUPerMinute = exposure.VitaminDRatePerMinute(in)
	res.VitaminDRatePrecise = exposure.VitaminDRatePrecise(in)
	res.Hourly = s.hourly(p, conds.Hourly)
	res.PeakHour = peakHour(conds.Hourly)

	s.fillProgress(ctx, profileID, &res)
	s.logger.Info("estimate computed", "profile_id", profileID, "uv", uv, "rate", res.VitaminDRateIUPerMinute, "burn_limit", res.BurnLimitMinutes, "degraded", res.Degraded)
	return res, nil
}

func (s *service) fillProgress(ctx context.Context, profileID string, res *Estimate) {
	res.RemainingIU = float64(res.DailyGoalIU)
	if s.progress != nil {
		total, err := s.progress.DailyTotal(ctx, profileID, "")
		if err != nil {
			s.logger.Warn("estimate progress unavailable", "profile_id", profileID, "error", err)
		} else {
			res.ConsumedIU = total.TotalIU
			res.RemainingIU = total.RemainingIU
		}
	}
	res.MinutesToGoal = minutesToGoal(res.RemainingIU, res.VitaminDRatePrecise)
}

func (s *service) qualityFactor(at time.Time) float64 {
	if !s.cfg.ApplyTimeOfDay {
		return 0
	}
	return exposure.TimeOfDayFactor(at)
}

func (s *service) hourly(p profile.Profile, readings []conditions.HourlyUV) []HourlyEstimate {
	out := make([]HourlyEstimate, 0, len(readings))
	for _, r := range readings {
		in := p.ExposureInput(r.UVIndex)
		in.UVQualityFactor = s.qualityFactor(r.Time)
		out = append(out, HourlyEstimate{
			Time:              r.Time,
			UVIndex:           r.UVIndex,
			CloudCoverPercent: r.CloudCoverPercent,
			BurnLimitMinutes:  exposure.BurnLimitMinutes(in),
			RateIUPerMinute:   exposure.VitaminDRatePerMinute(in),
		})
	}
	return out
}

// uvAt returns the reading for the hour containing at, or UV 0 when the
// forecast has no such hour.
func uvAt(c conditions.Conditions, at time.Time) (float64, time.Time) {
	for _, r := range c.Hourly {
		if !at.Before(r.Time) && at.Sub(r.Time) < time.Hour {
			return r.UVIndex, at.In(r.Time.Location())
		}
	}
	return 0, at
}

func peakHour(readings []conditions.HourlyUV) *time.Time {
	var (
		peak  time.Time
		maxUV = 0.0
	)
	for _, r := range readings {
		if r.UVIndex > maxUV || (r.UVIndex == maxUV && maxUV > 0 && r.Time.Before(peak)) {
			maxUV = r.UVIndex
			peak = r.Time
		}
	}
	if peak.IsZero() {
		return nil
	}
	return &peak
}

func burnLimitTable(uv float64) []SkinBurnLimit {
	limits := exposure.BurnLimits(uv)
	out := make([]SkinBurnLimit, 0, len(exposure.SkinTypes))
	for _, st := range exposure.SkinTypes {
		out = append(out, SkinBurnLimit{
			SkinType:    st,
			Label:       st.String(),
			Description: st.Description(),
			Minutes:     limits[st],
		})
	}
	return out
}

func minutesToGoal(remaining, rate float64) *int {
	if remaining <= 0 {
		zero := 0
		return &zero
	}
	if rate <= 0 {
		return nil
	}
	m := int(math.Ceil(remaining / rate))
	return &m
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
