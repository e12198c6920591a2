package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
)

const exportDateLayout = "2006-01-02"

// export streams the record log for the requested range as a BOM-prefixed
// CSV, or, with archive=1 and a configured bucket, uploads it and returns
// a presigned download URL instead.
func (s *Server) export(c *gin.Context) {
	from, err := time.ParseInLocation(exportDateLayout, c.Query("from"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, want YYYY-MM-DD"})
		return
	}
	to, err := time.ParseInLocation(exportDateLayout, c.Query("to"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, want YYYY-MM-DD"})
		return
	}

	screen := models.Screen(c.Query("screen"))
	if screen != "" && !screen.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid screen"})
		return
	}
	divergentOnly := c.Query("divergent_only") == "1" || c.Query("divergent_only") == "true"

	entries, err := s.records.Query(c.Request.Context(), from, to, screen, divergentOnly)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := records.WriteCSV(&buf, entries); err != nil {
		s.writeError(c, err)
		return
	}

	if c.Query("archive") == "1" && s.records.ArchiveEnabled() {
		url, err := s.records.ArchiveExport(c.Request.Context(), buf.Bytes())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url, "rows": len(entries)})
		return
	}

	filename := records.ExportFileName(from, to, screen, divergentOnly)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
