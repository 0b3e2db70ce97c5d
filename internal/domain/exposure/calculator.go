package exposure

import "math"

const (
	// baseVitaminDRateIU is the reference maximal synthesis rate in IU per hour.
	baseVitaminDRateIU = 21000.0
	uvHalfMax          = 4.0
	uvMaxFactor        = 3.0

	youngAge     = 20
	elderlyAge   = 70
	minAgeFactor = 0.25
)

// Compute evaluates the burn limit and vitamin D rate for in. It is pure and
// safe for concurrent use. Clothing, cloud cover and altitude never modulate
// the burn limit: callers are expected to supply a UV index that already
// accounts for sky and elevation.
func Compute(in Input) Output {
	return Output{
		BurnLimitMinutes:        BurnLimitMinutes(in),
		VitaminDRateIUPerMinute: VitaminDRatePerMinute(in),
	}
}

// BurnLimitMinutes returns the minutes until one MED is reached, truncated.
func BurnLimitMinutes(in Input) int {
	if !hasSun(in.UVIndex) {
		return 0
	}
	return int(in.SkinType.MEDMinutesAtUV1() / in.UVIndex)
}

// BurnLimits evaluates the burn limit for every skin type at uvIndex.
func BurnLimits(uvIndex float64) map[SkinType]int {
	out := make(map[SkinType]int, len(SkinTypes))
	for _, st := range SkinTypes {
		out[st] = BurnLimitMinutes(Input{UVIndex: uvIndex, SkinType: st})
	}
	return out
}

// VitaminDRatePerMinute returns the synthesis rate truncated to whole IU per minute.
func VitaminDRatePerMinute(in Input) float64 {
	return math.Trunc(VitaminDRatePrecise(in))
}

// VitaminDRatePrecise is VitaminDRatePerMinute without truncation.
func VitaminDRatePrecise(in Input) float64 {
	if !hasSun(in.UVIndex) {
		return 0
	}
	hourly := baseVitaminDRateIU *
		UVFactor(in.UVIndex) *
		in.ClothingLevel.ExposureFactor() *
		in.SkinType.VitaminDFactor() *
		AgeFactor(in.AgeYears) *
		positiveOr(in.AdaptationFactor, 1.0) *
		positiveOr(in.UVQualityFactor, 1.0)
	return hourly / 60.0
}

// UVFactor is the saturating response to UV: 1.5 at index 4, approaching 3.0.
func UVFactor(uvIndex float64) float64 {
	if !hasSun(uvIndex) {
		return 0
	}
	return (uvIndex * uvMaxFactor) / (uvHalfMax + uvIndex)
}

// AgeFactor decays linearly from 1.0 at 20 to 0.25 at 70. A nil age means no
// reduction.
func AgeFactor(age *int) float64 {
	if age == nil || *age <= youngAge {
		return 1.0
	}
	if *age >= elderlyAge {
		return minAgeFactor
	}
	slope := (1.0 - minAgeFactor) / float64(elderlyAge-youngAge)
	return math.Max(minAgeFactor, 1.0-float64(*age-youngAge)*slope)
}

// hasSun rejects NaN and both infinities as well as non-positive readings: a
// non-finite index is a broken sensor value, not unbounded sun.
func hasSun(uvIndex float64) bool {
	return uvIndex > 0 && !math.IsNaN(uvIndex) && !math.IsInf(uvIndex, 0)
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 && !math.IsNaN(v) {
		return v
	}
	return fallback
}
