package middleware

import (
	"net/http"
	"strings"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey  = "authUser"
	AuthEmailKey = "authEmail"
	AuthRoleKey  = "authRole"
)

// JWTAuthMiddleware creates a middleware for JWT authentication.
// A missing credential is 401; one that fails verification is 403.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		role, err := model.ParseRole(claims.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthEmailKey, claims.Email)
		c.Set(AuthRoleKey, role)

		c.Next()
	}
}

// AuthUserID returns the authenticated caller's id.
func AuthUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(AuthUserKey)
	return userID, userID != ""
}

// AuthRole returns the authenticated caller's role.
func AuthRole(c *gin.Context) (model.Role, bool) {
	roleVal, exists := c.Get(AuthRoleKey)
	if !exists {
		return "", false
	}
	role, ok := roleVal.(model.Role)
	return role, ok
}
