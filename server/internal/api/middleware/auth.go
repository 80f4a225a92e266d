package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/crypto"
	"github.com/opsx/collab/shared/wire"
)

const (
	userIDKey = "userID"
	claimsKey = "claims"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, wire.APIResponse[any]{Success: false, Error: msg})
}

// AuthMiddleware creates a middleware that validates JWT bearer tokens.
func AuthMiddleware(jwtManager *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		// Format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := jwtManager.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetClaims extracts the verified token claims from the Gin context.
func GetClaims(c *gin.Context) (*crypto.TokenClaims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*crypto.TokenClaims)
	return claims, ok
}
