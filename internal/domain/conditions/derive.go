package conditions

import (
	"math"
	"time"

	"github.com/yanqian/sunday/internal/domain/exposure"
)

// Derive computes the conditions at instant now from a cached forecast. UV
// values are scaled by the elevation multiplier; a missing current reading
// yields UV 0.
func Derive(f Forecast, now time.Time) Conditions {
	loc := forecastLocation(f)
	local := now.In(loc)
	multiplier := exposure.AltitudeMultiplier(f.ElevationMeters)

	current, found := currentSample(f.Hourly, local)
	raw := 0.0
	cloud := 0.0
	if found {
		raw = math.Max(0, current.UVIndex)
		cloud = current.CloudCoverPercent
	}

	today := local.Format("2006-01-02")
	tomorrow := local.AddDate(0, 0, 1).Format("2006-01-02")

	c := Conditions{
		Latitude:          f.Latitude,
		Longitude:         f.Longitude,
		ElevationMeters:   f.ElevationMeters,
		UVIndex:           round2(raw * multiplier),
		RawUVIndex:        raw,
		UVMultiplier:      multiplier,
		CloudCoverPercent: clampPercent(cloud),
		Source:            f.Source,
		ObservedAt:        local,
		FetchedAt:         f.FetchedAt,
		Hourly:            make([]HourlyUV, 0, len(f.Hourly)),
	}
	for _, day := range f.Days {
		switch day.Date {
		case today:
			c.MaxUVToday = round2(day.MaxUV * multiplier)
			c.Sunrise = timePtr(day.Sunrise)
			c.Sunset = timePtr(day.Sunset)
		case tomorrow:
			c.MaxUVTomorrow = round2(day.MaxUV * multiplier)
			c.TomorrowSunrise = timePtr(day.Sunrise)
			c.TomorrowSunset = timePtr(day.Sunset)
		}
	}
	for _, sample := range f.Hourly {
		if sample.Time.In(loc).Format("2006-01-02") != today {
			continue
		}
		c.Hourly = append(c.Hourly, HourlyUV{
			Time:              sample.Time,
			UVIndex:           round2(math.Max(0, sample.UVIndex) * multiplier),
			CloudCoverPercent: clampPercent(sample.CloudCoverPercent),
		})
	}
	c.Category = exposure.Category(c.UVIndex)
	c.VitaminDWinter = exposure.IsVitaminDWinter(f.Latitude, c.MaxUVToday, local.Month())
	return c
}

// currentSample returns the latest hourly sample at or before now, within one hour.
func currentSample(samples []UVSample, now time.Time) (UVSample, bool) {
	var (
		best  UVSample
		found bool
	)
	for _, s := range samples {
		if s.Time.After(now) || now.Sub(s.Time) >= time.Hour {
			continue
		}
		if !found || s.Time.After(best.Time) {
			best = s
			found = true
		}
	}
	return best, found
}

func forecastLocation(f Forecast) *time.Location {
	if f.Timezone != "" {
		if loc, err := time.LoadLocation(f.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func clampPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
