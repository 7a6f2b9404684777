package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/config"
	"github.com/mountbook/mountbook/internal/http/api/handlers"
	"github.com/mountbook/mountbook/internal/models"
	"github.com/mountbook/mountbook/internal/security"
)

// userAuthMiddleware validates bearer tokens and loads the acting
// user into the gin context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handlers.AbortWithError(c, handlers.KindUnauthorized, "missing authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			handlers.AbortWithError(c, handlers.KindUnauthorized, "invalid authorization format")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			handlers.AbortWithError(c, handlers.KindUnauthorized, "empty token")
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, jwtCfg.Issuer, token)
		if errJWT != nil {
			handlers.AbortWithError(c, handlers.KindUnauthorized, errJWT.Error())
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID()).Error; errFind != nil {
			handlers.AbortWithError(c, handlers.KindUnauthorized, "user not found")
			return
		}

		c.Set(handlers.ContextUserIDKey, user.ID)
		// The stored role wins over the token claim, so demotions take
		// effect before the token expires.
		c.Set(handlers.ContextUserRoleKey, user.Role)
		c.Next()
	}
}

// adminRequired rejects non-admin callers. Must run after
// userAuthMiddleware.
func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(handlers.ContextUserRoleKey)
		if !exists || role != models.RoleAdmin {
			handlers.AbortWithError(c, handlers.KindForbidden, "You don't have access to this resource")
			return
		}
		c.Next()
	}
}
