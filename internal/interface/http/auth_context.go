package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/sunday/internal/domain/profile"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims profile.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (profile.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return profile.Claims{}, false
	}
	claims, ok := value.(profile.Claims)
	return claims, ok
}
