package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/sunday/internal/domain/profile"
	apperrors "github.com/yanqian/sunday/pkg/errors"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (profile.Claims, error)
}

func authMiddleware(svc TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		token := strings.TrimSpace(parts[1])
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			status := http.StatusForbidden
			code := apperrors.CodeInvalidToken
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				status = http.StatusInternalServerError
				code = "auth_failed"
			}
			abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
