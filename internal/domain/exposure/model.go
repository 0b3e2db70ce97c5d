package exposure

import (
	"fmt"
	"strings"
)

// SkinType is the Fitzpatrick classification, 1 (I) through 6 (VI).
type SkinType int

const (
	SkinTypeI SkinType = iota + 1
	SkinTypeII
	SkinTypeIII
	SkinTypeIV
	SkinTypeV
	SkinTypeVI
)

// DefaultSkinType is used whenever a lookup cannot resolve the caller's type.
const DefaultSkinType = SkinTypeIII

// SkinTypes lists every Fitzpatrick type in ascending order.
var SkinTypes = []SkinType{SkinTypeI, SkinTypeII, SkinTypeIII, SkinTypeIV, SkinTypeV, SkinTypeVI}

// Valid reports whether s is one of the six Fitzpatrick types.
func (s SkinType) Valid() bool {
	return s >= SkinTypeI && s <= SkinTypeVI
}

// MEDMinutesAtUV1 is the time in minutes to reach one minimal erythema dose at UV index 1.
func (s SkinType) MEDMinutesAtUV1() float64 {
	switch s {
	case SkinTypeI:
		return 150
	case SkinTypeII:
		return 250
	case SkinTypeIII:
		return 425
	case SkinTypeIV:
		return 600
	case SkinTypeV:
		return 850
	case SkinTypeVI:
		return 1100
	default:
		return 425
	}
}

// VitaminDFactor scales synthesis efficiency relative to type III skin.
func (s SkinType) VitaminDFactor() float64 {
	switch s {
	case SkinTypeI:
		return 1.25
	case SkinTypeII:
		return 1.1
	case SkinTypeIII:
		return 1.0
	case SkinTypeIV:
		return 0.7
	case SkinTypeV:
		return 0.4
	case SkinTypeVI:
		return 0.2
	default:
		return 1.0
	}
}

// Description is the short human readable label shown to users.
func (s SkinType) Description() string {
	switch s {
	case SkinTypeI:
		return "Very fair, always burns, never tans"
	case SkinTypeII:
		return "Fair, usually burns, tans minimally"
	case SkinTypeIII:
		return "Light, sometimes burns, tans uniformly"
	case SkinTypeIV:
		return "Medium, burns minimally, tans well"
	case SkinTypeV:
		return "Dark, rarely burns, tans profusely"
	case SkinTypeVI:
		return "Very dark, never burns, deeply pigmented"
	default:
		return "Unknown"
	}
}

// String renders the roman numeral form.
func (s SkinType) String() string {
	switch s {
	case SkinTypeI:
		return "I"
	case SkinTypeII:
		return "II"
	case SkinTypeIII:
		return "III"
	case SkinTypeIV:
		return "IV"
	case SkinTypeV:
		return "V"
	case SkinTypeVI:
		return "VI"
	default:
		return fmt.Sprintf("SkinType(%d)", int(s))
	}
}

// ClothingLevel describes how much skin is left uncovered.
type ClothingLevel string

const (
	ClothingNude     ClothingLevel = "nude"
	ClothingMinimal  ClothingLevel = "minimal"
	ClothingLight    ClothingLevel = "light"
	ClothingModerate ClothingLevel = "moderate"
	ClothingHeavy    ClothingLevel = "heavy"
)

// DefaultClothingLevel matches the app's initial selection.
const DefaultClothingLevel = ClothingLight

// ClothingLevels lists every level from least to most covered.
var ClothingLevels = []ClothingLevel{ClothingNude, ClothingMinimal, ClothingLight, ClothingModerate, ClothingHeavy}

// ExposureFactor is the fraction of skin exposed to the sun.
func (c ClothingLevel) ExposureFactor() float64 {
	switch c {
	case ClothingNude:
		return 1.0
	case ClothingMinimal:
		return 0.80
	case ClothingLight:
		return 0.50
	case ClothingModerate:
		return 0.30
	case ClothingHeavy:
		return 0.10
	default:
		return 0.5
	}
}

// Label is the user facing description.
func (c ClothingLevel) Label() string {
	switch c {
	case ClothingNude:
		return "Nude!"
	case ClothingMinimal:
		return "Minimal (swimwear)"
	case ClothingLight:
		return "Light (shorts & t-shirt)"
	case ClothingModerate:
		return "Moderate (long sleeves)"
	case ClothingHeavy:
		return "Heavy (fully covered)"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is a known level.
func (c ClothingLevel) Valid() bool {
	switch c {
	case ClothingNude, ClothingMinimal, ClothingLight, ClothingModerate, ClothingHeavy:
		return true
	}
	return false
}

// ParseClothingLevel accepts either the level name or its label, case-insensitively.
func ParseClothingLevel(raw string) (ClothingLevel, error) {
	clean := strings.TrimSpace(raw)
	for _, level := range ClothingLevels {
		if strings.EqualFold(clean, string(level)) || strings.EqualFold(clean, level.Label()) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown clothing level %q", raw)
}

// UnmarshalText normalizes JSON/YAML input.
func (c *ClothingLevel) UnmarshalText(text []byte) error {
	level, err := ParseClothingLevel(string(text))
	if err != nil {
		return err
	}
	*c = level
	return nil
}

// Input is everything the model needs for a single evaluation.
type Input struct {
	UVIndex           float64       `json:"uvIndex"`
	SkinType          SkinType      `json:"skinType"`
	ClothingLevel     ClothingLevel `json:"clothingLevel"`
	CloudCoverPercent int           `json:"cloudCoverPercent"`
	AltitudeMeters    int           `json:"altitudeMeters"`
	AgeYears          *int          `json:"ageYears,omitempty"`
	// AdaptationFactor defaults to 1.0 when not positive.
	AdaptationFactor float64 `json:"adaptationFactor,omitempty"`
	// UVQualityFactor is the time-of-day weighting; defaults to 1.0 when not positive.
	UVQualityFactor float64 `json:"uvQualityFactor,omitempty"`
}

// Output is the model result.
type Output struct {
	BurnLimitMinutes        int     `json:"burnLimitMinutes"`
	VitaminDRateIUPerMinute float64 `json:"vitaminDRateIUPerMinute"`
}

// Validate rejects values outside the declared input domain.
func (in Input) Validate() error {
	if !in.SkinType.Valid() {
		return fmt.Errorf("skinType must be between 1 and 6, got %d", int(in.SkinType))
	}
	if !in.ClothingLevel.Valid() {
		return fmt.Errorf("unknown clothingLevel %q", string(in.ClothingLevel))
	}
	if in.CloudCoverPercent < 0 || in.CloudCoverPercent > 100 {
		return fmt.Errorf("cloudCoverPercent must be within [0,100], got %d", in.CloudCoverPercent)
	}
	if in.AltitudeMeters < 0 {
		return fmt.Errorf("altitudeMeters cannot be negative")
	}
	if in.AgeYears != nil && *in.AgeYears < 0 {
		return fmt.Errorf("ageYears cannot be negative")
	}
	if in.AdaptationFactor < 0 {
		return fmt.Errorf("adaptationFactor cannot be negative")
	}
	if in.UVQualityFactor < 0 || in.UVQualityFactor > 1 {
		return fmt.Errorf("uvQualityFactor must be within [0,1]")
	}
	return nil
}
