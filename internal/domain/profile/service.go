package profile

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/sunday/internal/domain/exposure"
	apperrors "github.com/yanqian/sunday/pkg/errors"
	"github.com/yanqian/sunday/pkg/util"
)

// Service exposes profile and device token workflows.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (CreateResponse, error)
	IssueToken(ctx context.Context, req TokenRequest) (TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Get(ctx context.Context, id string) (Profile, error)
	UpdatePreferences(ctx context.Context, id string, req UpdateRequest) (Profile, error)
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

const (
	defaultGoalIU   = 1000
	maxGoalIU       = 100000
	maxAge          = 130
	maxAdaptation   = 5.0
	secretByteCount = 24
	tokenIssuer     = "sunday"
)

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	if cfg.DefaultGoalIU <= 0 {
		cfg.DefaultGoalIU = defaultGoalIU
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "profile.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	p := Profile{
		ID:               uuid.NewString(),
		SkinType:         req.SkinType,
		ClothingLevel:    req.ClothingLevel,
		AgeYears:         req.AgeYears,
		AdaptationFactor: req.AdaptationFactor,
		DailyGoalIU:      req.DailyGoalIU,
	}
	if p.SkinType == 0 {
		p.SkinType = exposure.DefaultSkinType
	}
	if p.ClothingLevel == "" {
		p.ClothingLevel = exposure.DefaultClothingLevel
	}
	if p.AdaptationFactor == 0 {
		p.AdaptationFactor = 1.0
	}
	if p.DailyGoalIU == 0 {
		p.DailyGoalIU = s.cfg.DefaultGoalIU
	}
	if err := validateProfile(p); err != nil {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	secret, err := newSecret()
	if err != nil {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to generate device secret", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to hash device secret", err)
	}
	now := s.now().UTC()
	p.SecretHash = string(hashed)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to store profile", err)
	}
	token, expires, err := s.generateToken(p.ID)
	if err != nil {
		return CreateResponse{}, err
	}
	s.logger.Info("profile created", "profile_id", p.ID, "skin_type", p.SkinType.String(), "clothing", string(p.ClothingLevel))
	return CreateResponse{
		Profile:   ToView(p),
		Secret:    secret,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

func (s *service) IssueToken(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	id := strings.TrimSpace(req.ProfileID)
	if id == "" || strings.TrimSpace(req.Secret) == "" {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "profileId and secret are required", nil)
	}
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load profile", err)
	}
	if !found {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid profile or secret", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.SecretHash), []byte(req.Secret)); err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid profile or secret", nil)
	}
	token, expires, err := s.generateToken(p.ID)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{Token: token, ExpiresAt: expires}, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	return Claims{ProfileID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *service) Get(ctx context.Context, id string) (Profile, error) {
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load profile", err)
	}
	if !found {
		return Profile{}, apperrors.Wrap(apperrors.CodeProfileNotFound, "profile not found", nil)
	}
	return p, nil
}

func (s *service) UpdatePreferences(ctx context.Context, id string, req UpdateRequest) (Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if req.SkinType != nil {
		p.SkinType = *req.SkinType
	}
	if req.ClothingLevel != nil {
		p.ClothingLevel = *req.ClothingLevel
	}
	if req.ClearAge {
		p.AgeYears = nil
	} else if req.AgeYears != nil {
		age := *req.AgeYears
		p.AgeYears = &age
	}
	if req.AdaptationFactor != nil {
		p.AdaptationFactor = *req.AdaptationFactor
	}
	if req.DailyGoalIU != nil {
		p.DailyGoalIU = *req.DailyGoalIU
	}
	if err := validateProfile(p); err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, apperrors.Wrap(apperrors.CodeProfileNotFound, "profile not found", err)
		}
		return Profile{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to update profile", err)
	}
	return p, nil
}

func (s *service) generateToken(profileID string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   profileID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to sign token", err)
	}
	return signed, expires.UTC(), nil
}

func validateProfile(p Profile) error {
	if !p.SkinType.Valid() {
		return fmt.Errorf("skinType must be between 1 and 6")
	}
	if !p.ClothingLevel.Valid() {
		return fmt.Errorf("unknown clothingLevel %q", string(p.ClothingLevel))
	}
	if p.AgeYears != nil && (*p.AgeYears < 0 || *p.AgeYears > maxAge) {
		return fmt.Errorf("ageYears must be within [0,%d]", maxAge)
	}
	if p.AdaptationFactor <= 0 || p.AdaptationFactor > maxAdaptation || math.IsNaN(p.AdaptationFactor) {
		return fmt.Errorf("adaptationFactor must be within (0,%.0f]", maxAdaptation)
	}
	if p.DailyGoalIU <= 0 || p.DailyGoalIU > maxGoalIU {
		return fmt.Errorf("dailyGoalIU must be within [1,%d]", maxGoalIU)
	}
	return nil
}

func newSecret() (string, error) {
	buf := make([]byte, secretByteCount)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
