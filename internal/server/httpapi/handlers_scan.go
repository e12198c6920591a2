package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	"github.com/gabrielslopes/labelcheck/internal/server/scan"
)

type scanRequest struct {
	Screen    string `json:"screen" binding:"required"`
	Transport string `json:"transport"`
	Order     string `json:"order"`
}

type scanResponse struct {
	Verdict      string `json:"verdict"`
	Transport    string `json:"transport"`
	Order        string `json:"order"`
	Duplicate    bool   `json:"duplicate,omitempty"`
	Seq          int    `json:"seq,omitempty"`
	AuthorizedBy string `json:"authorized_by,omitempty"`
}

func toScanResponse(r *scan.Result) scanResponse {
	return scanResponse{
		Verdict:      string(r.Verdict),
		Transport:    r.TransportCode,
		Order:        r.OrderCode,
		Duplicate:    r.Duplicate,
		Seq:          r.Seq,
		AuthorizedBy: r.AuthorizedBy,
	}
}

// submitScan evaluates one code pair. All three verdicts are ordinary 200
// responses; the verdict field tells the front end what to render.
func (s *Server) submitScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	result, err := s.scans.Submit(c.Request.Context(), sessionID(c), models.Screen(req.Screen), req.Transport, req.Order)
	if err != nil && !errors.Is(err, common.ErrIncompleteScan) {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toScanResponse(result))
}

type overrideRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason"`
}

func (s *Server) overrideScan(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	result, err := s.scans.Override(c.Request.Context(), sessionID(c), req.Login, req.Password, req.Reason)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toScanResponse(result))
}

func (s *Server) cancelOverride(c *gin.Context) {
	if err := s.scans.CancelOverride(c.Request.Context(), sessionID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Server) batchItems(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	items, err := s.scans.BatchItems(sessionID(c), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, it := range items {
		out = append(out, gin.H{
			"seq":       it.Seq,
			"transport": it.TransportCode,
			"order":     it.OrderCode,
			"divergent": it.Divergent,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (s *Server) resetBatch(c *gin.Context) {
	if err := s.scans.ResetBatch(sessionID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// flushRecords is the explicit "save now" action.
func (s *Server) flushRecords(c *gin.Context) {
	if err := s.records.Flush(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}
