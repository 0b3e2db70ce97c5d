package exposure

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeNoSunYieldsZero(t *testing.T) {
	age := 40
	for _, uv := range []float64{0, -1, -0.01, math.NaN()} {
		for _, st := range SkinTypes {
			for _, cl := range ClothingLevels {
				out := Compute(Input{
					UVIndex:           uv,
					SkinType:          st,
					ClothingLevel:     cl,
					CloudCoverPercent: 50,
					AltitudeMeters:    2000,
					AgeYears:          &age,
					AdaptationFactor:  1.3,
				})
				require.Zero(t, out.BurnLimitMinutes, "uv=%v skin=%s", uv, st)
				require.Zero(t, out.VitaminDRateIUPerMinute, "uv=%v skin=%s", uv, st)
			}
		}
	}
}

func TestBurnLimitAtUVOneMatchesTable(t *testing.T) {
	expected := map[SkinType]int{
		SkinTypeI:   150,
		SkinTypeII:  250,
		SkinTypeIII: 425,
		SkinTypeIV:  600,
		SkinTypeV:   850,
		SkinTypeVI:  1100,
	}
	for st, want := range expected {
		got := BurnLimitMinutes(Input{UVIndex: 1.0, SkinType: st, ClothingLevel: ClothingHeavy})
		require.Equal(t, want, got, "skin type %s", st)
	}
	require.Equal(t, expected, BurnLimits(1.0))
}

func TestBurnLimitTruncates(t *testing.T) {
	require.Equal(t, 50, BurnLimitMinutes(Input{UVIndex: 3.0, SkinType: SkinTypeI}))
	// 425 / 7 = 60.71...
	require.Equal(t, 60, BurnLimitMinutes(Input{UVIndex: 7.0, SkinType: SkinTypeIII}))
}

func TestBurnLimitIgnoresClothingCloudAndAltitude(t *testing.T) {
	base := BurnLimitMinutes(Input{UVIndex: 5, SkinType: SkinTypeII, ClothingLevel: ClothingNude})
	other := BurnLimitMinutes(Input{
		UVIndex:           5,
		SkinType:          SkinTypeII,
		ClothingLevel:     ClothingHeavy,
		CloudCoverPercent: 90,
		AltitudeMeters:    3000,
	})
	require.Equal(t, base, other)
}

func TestUnknownSkinTypeFallsBackToTypeIII(t *testing.T) {
	require.Equal(t, 425, BurnLimitMinutes(Input{UVIndex: 1, SkinType: SkinType(9)}))
	require.Equal(t, 1.0, SkinType(0).VitaminDFactor())
	require.Equal(t, 0.5, ClothingLevel("cape").ExposureFactor())
}

func TestUVFactorHalfMaximum(t *testing.T) {
	require.Equal(t, 1.5, UVFactor(4.0))
	require.Less(t, UVFactor(1000), 3.0)
	require.Zero(t, UVFactor(0))
}

func TestVitaminDRateScenario(t *testing.T) {
	in := Input{UVIndex: 6.0, SkinType: SkinTypeIII, ClothingLevel: ClothingLight}
	require.InDelta(t, 1.8, UVFactor(in.UVIndex), 1e-12)
	require.InDelta(t, 315.0, VitaminDRatePrecise(in), 1e-9)
	require.Equal(t, 315.0, VitaminDRatePerMinute(in))
}

func TestVitaminDRateTruncates(t *testing.T) {
	// 21000 * (9/7) * 0.8 * 1.25 / 60 = 450
	in := Input{UVIndex: 3.0, SkinType: SkinTypeI, ClothingLevel: ClothingMinimal}
	require.InDelta(t, 450.0, VitaminDRatePrecise(in), 1e-9)

	// 21000 * 0.6 * 0.1 * 0.2 / 60 = 4.2
	in = Input{UVIndex: 1.0, SkinType: SkinTypeVI, ClothingLevel: ClothingHeavy}
	require.InDelta(t, 4.2, VitaminDRatePrecise(in), 1e-9)
	require.Equal(t, 4.0, VitaminDRatePerMinute(in))
}

func TestVitaminDRateMonotonicInUV(t *testing.T) {
	for _, st := range SkinTypes {
		for _, cl := range ClothingLevels {
			prev := -1.0
			for uv := 0.0; uv <= 16; uv += 0.25 {
				rate := VitaminDRatePerMinute(Input{UVIndex: uv, SkinType: st, ClothingLevel: cl})
				require.GreaterOrEqual(t, rate, prev, "skin=%s clothing=%s uv=%v", st, cl, uv)
				prev = rate
			}
		}
	}
}

func TestVitaminDRateOptionalFactors(t *testing.T) {
	base := Input{UVIndex: 4.0, SkinType: SkinTypeIII, ClothingLevel: ClothingNude}
	// 21000 * 1.5 / 60 = 525
	require.InDelta(t, 525.0, VitaminDRatePrecise(base), 1e-9)

	age := 45
	aged := base
	aged.AgeYears = &age
	require.InDelta(t, 525.0*0.625, VitaminDRatePrecise(aged), 1e-9)

	adapted := base
	adapted.AdaptationFactor = 2
	require.InDelta(t, 1050.0, VitaminDRatePrecise(adapted), 1e-9)

	evening := base
	evening.UVQualityFactor = 0.5
	require.InDelta(t, 262.5, VitaminDRatePrecise(evening), 1e-9)
}

func TestAgeFactor(t *testing.T) {
	ages := []struct {
		age  int
		want float64
	}{
		{5, 1.0},
		{20, 1.0},
		{45, 0.625},
		{69, 0.265},
		{70, 0.25},
		{95, 0.25},
	}
	for _, tc := range ages {
		age := tc.age
		require.InDelta(t, tc.want, AgeFactor(&age), 1e-9, "age %d", tc.age)
	}
	require.Equal(t, 1.0, AgeFactor(nil))
}

func TestComputeIsIdempotent(t *testing.T) {
	age := 33
	in := Input{UVIndex: 7.3, SkinType: SkinTypeIV, ClothingLevel: ClothingModerate, AgeYears: &age, AdaptationFactor: 1.1}
	require.Equal(t, Compute(in), Compute(in))
}

func TestInputValidate(t *testing.T) {
	valid := Input{UVIndex: 5, SkinType: SkinTypeII, ClothingLevel: ClothingLight, CloudCoverPercent: 40}
	require.NoError(t, valid.Validate())

	negativeAge := -1
	cases := map[string]Input{
		"skin type":   {SkinType: 7, ClothingLevel: ClothingLight},
		"clothing":    {SkinType: SkinTypeI, ClothingLevel: "cape"},
		"cloud cover": {SkinType: SkinTypeI, ClothingLevel: ClothingLight, CloudCoverPercent: 101},
		"altitude":    {SkinType: SkinTypeI, ClothingLevel: ClothingLight, AltitudeMeters: -5},
		"age":         {SkinType: SkinTypeI, ClothingLevel: ClothingLight, AgeYears: &negativeAge},
		"adaptation":  {SkinType: SkinTypeI, ClothingLevel: ClothingLight, AdaptationFactor: -0.5},
		"quality":     {SkinType: SkinTypeI, ClothingLevel: ClothingLight, UVQualityFactor: 1.5},
	}
	for name, in := range cases {
		require.Error(t, in.Validate(), name)
	}
}

func TestParseClothingLevel(t *testing.T) {
	level, err := ParseClothingLevel("  Moderate ")
	require.NoError(t, err)
	require.Equal(t, ClothingModerate, level)

	level, err = ParseClothingLevel("Minimal (swimwear)")
	require.NoError(t, err)
	require.Equal(t, ClothingMinimal, level)

	_, err = ParseClothingLevel("toga")
	require.Error(t, err)
}

func TestTimeOfDayFactor(t *testing.T) {
	loc := time.FixedZone("test", 0)
	require.Equal(t, 1.0, TimeOfDayFactor(time.Date(2024, 6, 1, 13, 0, 0, 0, loc)))
	require.InDelta(t, math.Exp(-1), TimeOfDayFactor(time.Date(2024, 6, 1, 8, 0, 0, 0, loc)), 1e-12)
	require.InDelta(t, math.Exp(-0.1), TimeOfDayFactor(time.Date(2024, 6, 1, 13, 30, 0, 0, loc)), 1e-12)
	require.Equal(t, 0.1, TimeOfDayFactor(time.Date(2024, 6, 1, 1, 0, 0, 0, loc)))
}

func TestAltitudeMultiplier(t *testing.T) {
	require.Equal(t, 1.0, AltitudeMultiplier(0))
	require.Equal(t, 1.0, AltitudeMultiplier(-20))
	require.InDelta(t, 1.15, AltitudeMultiplier(1500), 1e-12)
}

func TestIsVitaminDWinter(t *testing.T) {
	require.True(t, IsVitaminDWinter(52, 8, time.December))
	require.True(t, IsVitaminDWinter(52, 2.5, time.March))
	require.False(t, IsVitaminDWinter(52, 4, time.March))
	require.False(t, IsVitaminDWinter(52, 1, time.July))

	// southern hemisphere seasons are shifted six months
	require.True(t, IsVitaminDWinter(-45, 9, time.June))
	require.False(t, IsVitaminDWinter(-45, 9, time.December))

	require.True(t, IsVitaminDWinter(10, 2, time.July))
	require.False(t, IsVitaminDWinter(10, 9, time.January))
}

func TestCategory(t *testing.T) {
	require.Equal(t, "low", Category(2.9))
	require.Equal(t, "moderate", Category(3))
	require.Equal(t, "high", Category(7.5))
	require.Equal(t, "very_high", Category(8))
	require.Equal(t, "extreme", Category(11))
}

func TestComputeNonFiniteUVYieldsZero(t *testing.T) {
	for _, uv := range []float64{math.Inf(1), math.Inf(-1)} {
		in := Input{UVIndex: uv, SkinType: SkinTypeIII, ClothingLevel: ClothingMinimal}
		require.Equal(t, Output{}, Compute(in))
		require.Zero(t, VitaminDRatePrecise(in))
	}
}
