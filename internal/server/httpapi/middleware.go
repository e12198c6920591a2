package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/server/auth"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

const (
	ctxKeySessionID = "session_id"
	ctxKeyLogin     = "login"
	ctxKeyRole      = "role"
)

// authRequired parses the Bearer session token and stores the identity on
// the request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseSessionToken(strings.TrimPrefix(h, "Bearer "), s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxKeySessionID, claims.SessionID())
		c.Set(ctxKeyLogin, claims.Login)
		c.Set(ctxKeyRole, string(claims.Role))
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxKeyRole) != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// bootstrapGuard refuses the request while no active admin exists yet,
// pointing the client at the bootstrap endpoint.
func (s *Server) bootstrapGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		required, err := s.users.BootstrapRequired(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
			return
		}
		if required {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "bootstrap required"})
			return
		}
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}
