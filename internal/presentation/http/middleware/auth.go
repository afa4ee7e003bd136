package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	SubjectIDKey   = "subject_id"
	SubjectNameKey = "subject_name"
	SubjectRoleKey = "subject_role"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(SubjectIDKey, claims.SubjectID)
		c.Set(SubjectNameKey, claims.Name)
		c.Set(SubjectRoleKey, claims.Role)

		c.Next()
	}
}

// bearerToken reads "Bearer <token>" from the Authorization header.
// Browsers cannot set headers on a websocket upgrade, so the access_token
// query parameter is accepted as well.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("access_token"); t != "" {
			return t, true
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(SubjectRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}
