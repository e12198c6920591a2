package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/server/auth"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

type bootstrapRequest struct {
	Login    string `json:"login" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

// bootstrap creates the first administrator. Once an active admin exists
// the endpoint is closed for good.
func (s *Server) bootstrap(c *gin.Context) {
	required, err := s.users.BootstrapRequired(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !required {
		c.JSON(http.StatusConflict, gin.H{"error": "already bootstrapped"})
		return
	}

	var req bootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	user, err := s.users.Create(c.Request.Context(), req.Login, req.Name, models.RoleAdmin, req.Password, true)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "login": user.Login})
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := auth.GenerateSessionToken(user, s.jwtSecret, s.sessionValidity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	// the token id keys this session's gate and batch state
	claims, err := auth.ParseSessionToken(token, s.jwtSecret)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.scans.StartSession(claims.SessionID(), user.Login)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"login": user.Login,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// logout ends the session and flushes any buffered records.
func (s *Server) logout(c *gin.Context) {
	if err := s.scans.EndSession(c.Request.Context(), sessionID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// notFoundAs404 lets admin handlers report a missing user id as 404 instead
// of the session-expired mapping.
func (s *Server) notFoundAs404(c *gin.Context, err error) {
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	s.writeError(c, err)
}
