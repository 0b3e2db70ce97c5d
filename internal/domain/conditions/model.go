package conditions

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Location identifies where conditions are requested for.
type Location struct {
	Latitude        float64  `json:"lat" yaml:"lat"`
	Longitude       float64  `json:"lon" yaml:"lon"`
	ElevationMeters *float64 `json:"elevation,omitempty" yaml:"elevation,omitempty"`
}

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("lat must be within [-90,90]")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("lon must be within [-180,180]")
	}
	if l.ElevationMeters != nil && (*l.ElevationMeters < -500 || *l.ElevationMeters > 9000) {
		return fmt.Errorf("elevation must be within [-500,9000]")
	}
	return nil
}

// Key is the cache key; coordinates are rounded to roughly one kilometre.
func (l Location) Key() string {
	key := fmt.Sprintf("%.2f:%.2f", l.Latitude, l.Longitude)
	if l.ElevationMeters != nil {
		key += fmt.Sprintf(":%d", int(math.Round(*l.ElevationMeters)))
	}
	return key
}

// UVSample is an hourly upstream reading.
type UVSample struct {
	Time              time.Time `json:"time"`
	UVIndex           float64   `json:"uvIndex"`
	CloudCoverPercent float64   `json:"cloudCoverPercent"`
}

// DailyForecast summarizes one calendar day.
type DailyForecast struct {
	Date          string    `json:"date"`
	MaxUV         float64   `json:"maxUv"`
	ClearSkyMaxUV float64   `json:"clearSkyMaxUv"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`
}

// Forecast is the provider-neutral upstream payload; it is what gets cached.
type Forecast struct {
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	ElevationMeters float64         `json:"elevationMeters"`
	Timezone        string          `json:"timezone"`
	Hourly          []UVSample      `json:"hourly"`
	Days            []DailyForecast `json:"days"`
	Source          string          `json:"source"`
	FetchedAt       time.Time       `json:"fetchedAt"`
}

// HourlyUV is an altitude adjusted reading exposed to clients.
type HourlyUV struct {
	Time              time.Time `json:"time"`
	UVIndex           float64   `json:"uvIndex"`
	CloudCoverPercent int       `json:"cloudCoverPercent"`
}

// Conditions is the derived view of a forecast at a specific instant.
type Conditions struct {
	Latitude          float64    `json:"lat"`
	Longitude         float64    `json:"lon"`
	ElevationMeters   float64    `json:"elevationMeters"`
	UVIndex           float64    `json:"uvIndex"`
	RawUVIndex        float64    `json:"rawUvIndex"`
	UVMultiplier      float64    `json:"uvMultiplier"`
	MaxUVToday        float64    `json:"maxUvToday"`
	MaxUVTomorrow     float64    `json:"maxUvTomorrow"`
	CloudCoverPercent int        `json:"cloudCoverPercent"`
	Category          string     `json:"category"`
	VitaminDWinter    bool       `json:"vitaminDWinter"`
	Sunrise           *time.Time `json:"sunrise,omitempty"`
	Sunset            *time.Time `json:"sunset,omitempty"`
	TomorrowSunrise   *time.Time `json:"tomorrowSunrise,omitempty"`
	TomorrowSunset    *time.Time `json:"tomorrowSunset,omitempty"`
	Hourly            []HourlyUV `json:"hourly"`
	Source            string     `json:"source"`
	ObservedAt        time.Time  `json:"observedAt"`
	FetchedAt         time.Time  `json:"fetchedAt"`
}

// Provider fetches forecasts from an upstream weather API.
type Provider interface {
	Fetch(ctx context.Context, loc Location) (Forecast, error)
}

// Cache stores forecasts keyed by Location.Key.
type Cache interface {
	Get(ctx context.Context, key string) (Forecast, bool, error)
	Set(ctx context.Context, key string, forecast Forecast, ttl time.Duration) error
}

// Config wires runtime settings for the conditions domain.
type Config struct {
	CacheTTL time.Duration
}
