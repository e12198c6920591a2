package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/common"
)

// writeError maps service errors onto HTTP statuses. An unknown session id
// means the server restarted under a still-valid token; the client must log
// in again.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrMissingReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, common.ErrInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
	case errors.Is(err, common.ErrDuplicateLogin),
		errors.Is(err, common.ErrOverridePending),
		errors.Is(err, common.ErrNoPendingOverride),
		errors.Is(err, common.ErrBootstrapRequired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
