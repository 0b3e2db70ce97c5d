package openmeteo

import (
	"errors"
	"fmt"
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

const localLayout = "2006-01-02T15:04"

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`
	Hourly    struct {
		Time       []string   `json:"time"`
		UVIndex    []*float64 `json:"uv_index"`
		CloudCover []*float64 `json:"cloud_cover"`
	} `json:"hourly"`
	Daily struct {
		Time               []string   `json:"time"`
		UVIndexMax         []*float64 `json:"uv_index_max"`
		UVIndexClearSkyMax []*float64 `json:"uv_index_clear_sky_max"`
		Sunrise            []string   `json:"sunrise"`
		Sunset             []string   `json:"sunset"`
	} `json:"daily"`
}

// normalize converts the Open-Meteo payload into a provider-neutral forecast.
// Hours without a UV value are dropped; local timestamps are interpreted in
// the response timezone.
func normalize(payload forecastResponse) (conditions.Forecast, error) {
	if len(payload.Hourly.Time) == 0 {
		return conditions.Forecast{}, errors.New("open-meteo response has no hourly data")
	}
	loc := time.UTC
	if payload.Timezone != "" {
		if l, err := time.LoadLocation(payload.Timezone); err == nil {
			loc = l
		}
	}

	f := conditions.Forecast{
		Latitude:        payload.Latitude,
		Longitude:       payload.Longitude,
		ElevationMeters: payload.Elevation,
		Timezone:        loc.String(),
		Source:          sourceName,
		Hourly:          make([]conditions.UVSample, 0, len(payload.Hourly.Time)),
	}
	for i, raw := range payload.Hourly.Time {
		uv := valueAt(payload.Hourly.UVIndex, i)
		if uv == nil {
			continue
		}
		ts, err := time.ParseInLocation(localLayout, raw, loc)
		if err != nil {
			return conditions.Forecast{}, fmt.Errorf("parse hourly time %q: %w", raw, err)
		}
		sample := conditions.UVSample{Time: ts, UVIndex: *uv}
		if cloud := valueAt(payload.Hourly.CloudCover, i); cloud != nil {
			sample.CloudCoverPercent = *cloud
		}
		f.Hourly = append(f.Hourly, sample)
	}
	for i, date := range payload.Daily.Time {
		day := conditions.DailyForecast{Date: date}
		if v := valueAt(payload.Daily.UVIndexMax, i); v != nil {
			day.MaxUV = *v
		}
		if v := valueAt(payload.Daily.UVIndexClearSkyMax, i); v != nil {
			day.ClearSkyMaxUV = *v
		}
		day.Sunrise = parseOptional(payload.Daily.Sunrise, i, loc)
		day.Sunset = parseOptional(payload.Daily.Sunset, i, loc)
		f.Days = append(f.Days, day)
	}
	return f, nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func parseOptional(values []string, i int, loc *time.Location) time.Time {
	if i >= len(values) || values[i] == "" {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(localLayout, values[i], loc)
	if err != nil {
		return time.Time{}
	}
	return ts
}
