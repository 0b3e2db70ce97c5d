package exposure

import (
	"math"
	"time"
)

const (
	solarNoonHour     = 13.0
	qualityDecayPerHr = 0.2
	minQualityFactor  = 0.1
	winterLatitude    = 35.0
	winterUVThreshold = 3.0
	altitudeUVPerKm   = 0.1
)

// TimeOfDayFactor weights UV quality by distance from solar noon in t's location.
func TimeOfDayFactor(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60.0
	factor := math.Exp(-math.Abs(hour-solarNoonHour) * qualityDecayPerHr)
	return math.Max(minQualityFactor, math.Min(1.0, factor))
}

// AltitudeMultiplier scales UV by 10% per 1000 m of elevation.
func AltitudeMultiplier(elevationMeters float64) float64 {
	if elevationMeters <= 0 {
		return 1.0
	}
	return 1.0 + elevationMeters/1000.0*altitudeUVPerKm
}

// IsVitaminDWinter reports whether meaningful synthesis is unlikely for the
// given latitude, peak UV of the day and month.
func IsVitaminDWinter(latitude, maxUV float64, month time.Month) bool {
	if math.Abs(latitude) <= winterLatitude {
		return maxUV < winterUVThreshold
	}
	if latitude < 0 {
		month = (month+5)%12 + 1
	}
	switch month {
	case time.November, time.December, time.January, time.February:
		return true
	case time.March, time.October:
		return maxUV < winterUVThreshold
	default:
		return false
	}
}

// Category maps a UV index to the WHO exposure band.
func Category(uv float64) string {
	switch {
	case uv < 3:
		return "low"
	case uv < 6:
		return "moderate"
	case uv < 8:
		return "high"
	case uv < 11:
		return "very_high"
	default:
		return "extreme"
	}
}
