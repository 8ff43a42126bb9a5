package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtap-api/internal/middleware"
	"github.com/noah-isme/classtap-api/internal/models"
)

// claimsFromContext returns the authenticated user's claims, or nil on
// unauthenticated routes like tap ingestion.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
