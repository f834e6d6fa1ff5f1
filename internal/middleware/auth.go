package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(raw string) (*Identity, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's identity in the context.
func JWTAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			// Browsers cannot set headers on websocket upgrades.
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		id, err := parser.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUsername, id.Username)
		c.Set(ContextRole, id.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "permission denied",
				"role":  role,
			})
			return
		}
		c.Next()
	}
}
