package profile

import (
	"time"

	"github.com/yanqian/sunday/internal/domain/exposure"
)

// Config drives token issuance and profile defaults.
type Config struct {
	Secret        string
	TokenTTL      time.Duration
	DefaultGoalIU int
}

// Profile is a persisted set of user preferences.
type Profile struct {
	ID               string
	SkinType         exposure.SkinType
	ClothingLevel    exposure.ClothingLevel
	AgeYears         *int
	AdaptationFactor float64
	DailyGoalIU      int
	SecretHash       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// View trims sensitive fields.
type View struct {
	ID               string                 `json:"id"`
	SkinType         exposure.SkinType      `json:"skinType"`
	SkinDescription  string                 `json:"skinDescription"`
	ClothingLevel    exposure.ClothingLevel `json:"clothingLevel"`
	ClothingLabel    string                 `json:"clothingLabel"`
	AgeYears         *int                   `json:"ageYears,omitempty"`
	AdaptationFactor float64                `json:"adaptationFactor"`
	DailyGoalIU      int                    `json:"dailyGoalIU"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// CreateRequest captures the preferences submitted on first launch.
type CreateRequest struct {
	SkinType         exposure.SkinType      `json:"skinType"`
	ClothingLevel    exposure.ClothingLevel `json:"clothingLevel"`
	AgeYears         *int                   `json:"ageYears"`
	AdaptationFactor float64                `json:"adaptationFactor"`
	DailyGoalIU      int                    `json:"dailyGoalIU"`
}

// CreateResponse carries the one-time device secret.
type CreateResponse struct {
	Profile   View      `json:"profile"`
	Secret    string    `json:"secret"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UpdateRequest patches preferences; nil fields are left untouched.
type UpdateRequest struct {
	SkinType         *exposure.SkinType      `json:"skinType"`
	ClothingLevel    *exposure.ClothingLevel `json:"clothingLevel"`
	AgeYears         *int                    `json:"ageYears"`
	ClearAge         bool                    `json:"clearAge"`
	AdaptationFactor *float64                `json:"adaptationFactor"`
	DailyGoalIU      *int                    `json:"dailyGoalIU"`
}

// TokenRequest exchanges a device secret for an access token.
type TokenRequest struct {
	ProfileID string `json:"profileId"`
	Secret    string `json:"secret"`
}

// TokenResponse returns a signed access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a validated token.
type Claims struct {
	ProfileID string
	ExpiresAt time.Time
}

// ExposureInput builds a model input for this profile at the given UV index.
func (p Profile) ExposureInput(uvIndex float64) exposure.Input {
	return exposure.Input{
		UVIndex:          uvIndex,
		SkinType:         p.SkinType,
		ClothingLevel:    p.ClothingLevel,
		AgeYears:         p.AgeYears,
		AdaptationFactor: p.AdaptationFactor,
	}
}

// ToView strips the secret hash.
func ToView(p Profile) View {
	return View{
		ID:               p.ID,
		SkinType:         p.SkinType,
		SkinDescription:  p.SkinType.Description(),
		ClothingLevel:    p.ClothingLevel,
		ClothingLabel:    p.ClothingLevel.Label(),
		AgeYears:         p.AgeYears,
		AdaptationFactor: p.AdaptationFactor,
		DailyGoalIU:      p.DailyGoalIU,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
