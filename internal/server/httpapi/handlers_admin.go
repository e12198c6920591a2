package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

type userResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Login:     u.Login,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) listUsers(c *gin.Context) {
	found, err := s.users.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(found))
	for i := range found {
		out = append(out, toUserResponse(&found[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

type createUserRequest struct {
	Login    string `json:"login" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required"`
	Active   *bool  `json:"active"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := s.users.Create(c.Request.Context(), req.Login, req.Name, models.Role(req.Role), req.Password, active)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

type updateUserRequest struct {
	Name   string `json:"name"`
	Role   string `json:"role" binding:"required"`
	Active bool   `json:"active"`
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := s.users.Update(c.Request.Context(), c.Param("id"), req.Name, models.Role(req.Role), req.Active)
	if err != nil {
		s.notFoundAs404(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := s.users.ResetPassword(c.Request.Context(), c.Param("id"), req.Password)
	if err != nil {
		s.notFoundAs404(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password reset"})
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.notFoundAs404(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
