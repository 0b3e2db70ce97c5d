package advisor

import (
	"context"
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/exposure"
	"github.com/yanqian/sunday/internal/domain/profile"
	"github.com/yanqian/sunday/internal/domain/session"
)

// Config wires runtime settings for the advisor domain.
type Config struct {
	// ApplyTimeOfDay weights the vitamin D rate by distance from solar noon.
	ApplyTimeOfDay bool
}

// EstimateRequest captures the payload accepted by Estimate.
type EstimateRequest struct {
	conditions.Location
	// At selects an hour of today's forecast instead of the current reading.
	At *time.Time `json:"at,omitempty"`
	// BestEffort treats unavailable conditions as no sun instead of failing.
	BestEffort bool `json:"bestEffort"`
}

// SkinBurnLimit is one row of the burn limit table.
type SkinBurnLimit struct {
	SkinType    exposure.SkinType `json:"skinType"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Minutes     int               `json:"minutes"`
}

// HourlyEstimate is the model evaluated against one forecast hour.
type HourlyEstimate struct {
	Time              time.Time `json:"time"`
	UVIndex           float64   `json:"uvIndex"`
	CloudCoverPercent int       `json:"cloudCoverPercent"`
	BurnLimitMinutes  int       `json:"burnLimitMinutes"`
	RateIUPerMinute   float64   `json:"rateIUPerMinute"`
}

// Estimate is serialized back to API consumers.
type Estimate struct {
	Profile                 profile.View          `json:"profile"`
	Conditions              conditions.Conditions `json:"conditions"`
	Degraded                bool                  `json:"degraded"`
	UVIndex                 float64               `json:"uvIndex"`
	Category                string                `json:"category"`
	UVQualityFactor         float64               `json:"uvQualityFactor"`
	BurnLimitMinutes        int                   `json:"burnLimitMinutes"`
	BurnLimits              []SkinBurnLimit       `json:"burnLimits"`
	VitaminDRateIUPerMinute float64               `json:"vitaminDRateIUPerMinute"`
	VitaminDRatePrecise     float64               `json:"vitaminDRatePrecise"`
	DailyGoalIU             int                   `json:"dailyGoalIU"`
	ConsumedIU              float64               `json:"consumedIU"`
	RemainingIU             float64               `json:"remainingIU"`
	MinutesToGoal           *int                  `json:"minutesToGoal,omitempty"`
	PeakHour                *time.Time            `json:"peakHour,omitempty"`
	Hourly                  []HourlyEstimate      `json:"hourly"`
}

// ComputeResponse is a direct model evaluation.
type ComputeResponse struct {
	exposure.Output
	VitaminDRatePrecise float64         `json:"vitaminDRatePrecise"`
	Category            string          `json:"category"`
	SkinDescription     string          `json:"skinDescription"`
	ClothingLabel       string          `json:"clothingLabel"`
	BurnLimits          []SkinBurnLimit `json:"burnLimits"`
}

// ProfileReader loads profile preferences.
type ProfileReader interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// ConditionsSource resolves current conditions for a location.
type ConditionsSource interface {
	Current(ctx context.Context, loc conditions.Location) (conditions.Conditions, error)
}

// ProgressReader reports how much of the daily goal is already covered.
type ProgressReader interface {
	DailyTotal(ctx context.Context, profileID, date string) (session.DailyTotal, error)
}
