package session

import (
	"context"
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/profile"
)

// Config wires runtime settings for live sessions.
type Config struct {
	TickInterval time.Duration
	RateRefresh  time.Duration
	Location     *time.Location
}

// StartRequest is the payload accepted when a session begins.
type StartRequest struct {
	conditions.Location
}

// ConditionsUpdate pins a UV index on a running session. The pinned value
// survives periodic refreshes until an update with Clear set hands the
// session back to fetched conditions.
type ConditionsUpdate struct {
	UVIndex float64 `json:"uvIndex"`
	Clear   bool    `json:"clear"`
}

// RateSample is one evaluation of the exposure model for a session.
type RateSample struct {
	UVIndex         float64
	RateIUPerMinute float64
}

// RateEvaluator re-evaluates the vitamin D rate for a profile. A non-nil
// uvOverride replaces the upstream UV index.
type RateEvaluator interface {
	EvaluateRate(ctx context.Context, profileID string, loc conditions.Location, uvOverride *float64) (RateSample, error)
}

// ProfileReader loads the daily goal owner.
type ProfileReader interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// Status is a point-in-time view of a live session.
type Status struct {
	ID              string    `json:"id"`
	ProfileID       string    `json:"profileId"`
	Latitude        float64   `json:"lat"`
	Longitude       float64   `json:"lon"`
	StartedAt       time.Time `json:"startedAt"`
	ElapsedSeconds  int64     `json:"elapsedSeconds"`
	Tracking        bool      `json:"tracking"`
	TotalIU         float64   `json:"totalIU"`
	RateIUPerMinute float64   `json:"rateIUPerMinute"`
	UVIndex         float64   `json:"uvIndex"`
	PeakUV          float64   `json:"peakUv"`
	Ticks           int64     `json:"ticks"`
}

// Record is a finished, persisted session.
type Record struct {
	ID                  string    `json:"id"`
	ProfileID           string    `json:"profileId"`
	Latitude            float64   `json:"lat"`
	Longitude           float64   `json:"lon"`
	StartedAt           time.Time `json:"startedAt"`
	EndedAt             time.Time `json:"endedAt"`
	TotalIU             float64   `json:"totalIU"`
	PeakUV              float64   `json:"peakUv"`
	LastUVIndex         float64   `json:"lastUvIndex"`
	LastRateIUPerMinute float64   `json:"lastRateIUPerMinute"`
	Ticks               int64     `json:"ticks"`
}

// DailyTotal aggregates a profile's sessions for one calendar day.
type DailyTotal struct {
	ProfileID   string  `json:"profileId"`
	Date        string  `json:"date"`
	TotalIU     float64 `json:"totalIU"`
	LiveIU      float64 `json:"liveIU"`
	Sessions    int     `json:"sessions"`
	GoalIU      int     `json:"goalIU"`
	GoalMet     bool    `json:"goalMet"`
	RemainingIU float64 `json:"remainingIU"`
}

// Repository persists finished sessions.
type Repository interface {
	Save(ctx context.Context, rec Record) error
	ListBetween(ctx context.Context, profileID string, from, to time.Time) ([]Record, error)
}

// Archive exports finished sessions to long-term storage.
type Archive interface {
	Put(ctx context.Context, rec Record) error
}
