package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/sunday/internal/domain/advisor"
	"github.com/yanqian/sunday/internal/domain/conditions"
	"github.com/yanqian/sunday/internal/domain/exposure"
	"github.com/yanqian/sunday/internal/domain/profile"
	"github.com/yanqian/sunday/internal/domain/session"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	profileSvc    profile.Service
	conditionsSvc conditions.Service
	advisorSvc    advisor.Service
	sessionSvc    session.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(profileSvc profile.Service, conditionsSvc conditions.Service, advisorSvc advisor.Service, sessionSvc session.Service, logger *slog.Logger) *Handler {
	return &Handler{
		profileSvc:    profileSvc,
		conditionsSvc: conditionsSvc,
		advisorSvc:    advisorSvc,
		sessionSvc:    sessionSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Compute evaluates the exposure model on explicit input.
func (h *Handler) Compute(c *gin.Context) {
	var in exposure.Input
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.advisorSvc.Compute(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Conditions returns current UV conditions for ?lat=&lon=[&elevation=][&refresh=true].
func (h *Handler) Conditions(c *gin.Context) {
	loc, err := parseLocation(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return
	}
	lookup := h.conditionsSvc.Current
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		lookup = h.conditionsSvc.Refresh
	}
	resp, err := lookup(c.Request.Context(), loc)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateProfile registers a new device profile.
func (h *Handler) CreateProfile(c *gin.Context) {
	var req profile.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.profileSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// IssueToken exchanges a device secret for an access token.
func (h *Handler) IssueToken(c *gin.Context) {
	var req profile.TokenRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.profileSvc.IssueToken(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's preferences.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), claims.ProfileID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, profile.ToView(p))
}

// UpdateMe patches the caller's preferences.
func (h *Handler) UpdateMe(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req profile.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profileSvc.UpdatePreferences(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, profile.ToView(p))
}

// Estimate returns burn limit and vitamin D guidance for a location.
func (h *Handler) Estimate(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req advisor.EstimateRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.advisorSvc.Estimate(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartSession begins live tracking.
func (h *Handler) StartSession(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req session.StartRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.sessionSvc.Start(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, status)
}

// SessionStatus reports the running session.
func (h *Handler) SessionStatus(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	status, err := h.sessionSvc.Status(c.Request.Context(), claims.ProfileID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateSessionConditions pins a UV index on the running session until a
// request with "clear": true hands it back to fetched conditions.
func (h *Handler) UpdateSessionConditions(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req session.ConditionsUpdate
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.sessionSvc.UpdateConditions(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

// StopSession ends and persists the running session.
func (h *Handler) StopSession(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	rec, err := h.sessionSvc.Stop(c.Request.Context(), claims.ProfileID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DailyTotal sums the caller's sessions for ?date=YYYY-MM-DD (default today).
func (h *Handler) DailyTotal(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	total, err := h.sessionSvc.DailyTotal(c.Request.Context(), claims.ProfileID, strings.TrimSpace(c.Query("date")))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, total)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func requireClaims(c *gin.Context) (profile.Claims, bool) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
	}
	return claims, ok
}

func parseLocation(c *gin.Context) (conditions.Location, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return conditions.Location{}, errInvalidQuery("lat")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return conditions.Location{}, errInvalidQuery("lon")
	}
	loc := conditions.Location{Latitude: lat, Longitude: lon}
	if raw := c.Query("elevation"); raw != "" {
		elevation, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return conditions.Location{}, errInvalidQuery("elevation")
		}
		loc.ElevationMeters = &elevation
	}
	return loc, nil
}

func errInvalidQuery(name string) error {
	return fmt.Errorf("%s must be a number", name)
}
