package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/db"
	"github.com/02loveslollipop/Shizuku-building-sim/services/api/session"
)

// handleV1ArchiveReadings returns persisted readings for a session
// GET /api/v1/archive/readings?session=default&floor=...&zone=...&start=...&end=...&last_n=...
func (s *Server) handleV1ArchiveReadings(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive not configured"})
		return
	}

	q := db.ReadingQuery{
		SessionID: c.DefaultQuery("session", session.DefaultID),
		Floor:     c.Query("floor"),
		Zone:      c.Query("zone"),
	}

	if start := c.Query("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
		q.Since = &t
	}
	if end := c.Query("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}
		q.Until = &t
	}
	if n := c.Query("last_n"); n != "" {
		val, err := strconv.Atoi(n)
		if err != nil || val <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_n"})
			return
		}
		q.Limit = val
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	readings, err := s.archive.FetchReadings(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": readings,
		"meta": gin.H{
			"count":   len(readings),
			"session": q.SessionID,
		},
	})
}
