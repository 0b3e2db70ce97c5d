package profile

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/sunday/internal/domain/exposure"
	apperrors "github.com/yanqian/sunday/pkg/errors"
)

func TestService_CreateIssueAndValidate(t *testing.T) {
	svc := newTestService()
	age := 34

	created, err := svc.Create(context.Background(), CreateRequest{
		SkinType:      exposure.SkinTypeII,
		ClothingLevel: exposure.ClothingMinimal,
		AgeYears:      &age,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Profile.ID)
	require.NotEmpty(t, created.Secret)
	require.NotEmpty(t, created.Token)
	require.Equal(t, exposure.SkinTypeII, created.Profile.SkinType)
	require.Equal(t, 1.0, created.Profile.AdaptationFactor)
	require.Equal(t, 1000, created.Profile.DailyGoalIU)
	require.Equal(t, "Minimal (swimwear)", created.Profile.ClothingLabel)

	claims, err := svc.ValidateToken(context.Background(), created.Token)
	require.NoError(t, err)
	require.Equal(t, created.Profile.ID, claims.ProfileID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	issued, err := svc.IssueToken(context.Background(), TokenRequest{ProfileID: created.Profile.ID, Secret: created.Secret})
	require.NoError(t, err)
	require.NotEqual(t, created.Token, issued.Token)

	_, err = svc.IssueToken(context.Background(), TokenRequest{ProfileID: created.Profile.ID, Secret: "wrong"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
}

func TestService_CreateDefaults(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{})
	require.NoError(t, err)
	require.Equal(t, exposure.SkinTypeIII, created.Profile.SkinType)
	require.Equal(t, exposure.ClothingLight, created.Profile.ClothingLevel)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), CreateRequest{SkinType: 8})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Create(context.Background(), CreateRequest{AdaptationFactor: -1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestService_ValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{})
	require.NoError(t, err)

	inner := svc.(*service)
	inner.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), created.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
	inner.now = time.Now

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   created.Profile.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.ValidateToken(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_UpdatePreferences(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{})
	require.NoError(t, err)

	skin := exposure.SkinTypeV
	clothing := exposure.ClothingHeavy
	goal := 2000
	age := 61
	updated, err := svc.UpdatePreferences(context.Background(), created.Profile.ID, UpdateRequest{
		SkinType:      &skin,
		ClothingLevel: &clothing,
		DailyGoalIU:   &goal,
		AgeYears:      &age,
	})
	require.NoError(t, err)
	require.Equal(t, skin, updated.SkinType)
	require.Equal(t, clothing, updated.ClothingLevel)
	require.Equal(t, goal, updated.DailyGoalIU)
	require.Equal(t, 61, *updated.AgeYears)

	cleared, err := svc.UpdatePreferences(context.Background(), created.Profile.ID, UpdateRequest{ClearAge: true})
	require.NoError(t, err)
	require.Nil(t, cleared.AgeYears)

	bad := 0
	_, err = svc.UpdatePreferences(context.Background(), created.Profile.ID, UpdateRequest{DailyGoalIU: &bad})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.UpdatePreferences(context.Background(), "missing", UpdateRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeProfileNotFound))
}

func newTestService() Service {
	return NewService(Config{Secret: "test-secret", TokenTTL: time.Hour}, newMemoryRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type memoryRepo struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{profiles: make(map[string]Profile)}
}

func (m *memoryRepo) Create(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	return p, ok, nil
}

func (m *memoryRepo) Update(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	m.profiles[p.ID] = p
	return nil
}
