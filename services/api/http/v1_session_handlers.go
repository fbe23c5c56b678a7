package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// handleV1ListSessions returns all live sessions
// GET /api/v1/sessions
func (s *Server) handleV1ListSessions(c *gin.Context) {
	sessions := s.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"data": sessions,
		"meta": gin.H{
			"count": len(sessions),
		},
	})
}

// handleV1CreateSession starts a new simulation
// POST /api/v1/sessions?id=...&seed=...
func (s *Server) handleV1CreateSession(c *gin.Context) {
	var seed *int64
	if raw := c.Query("seed"); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seed"})
			return
		}
		seed = &val
	}

	summary, err := s.sessions.Create(c.Request.Context(), c.Query("id"), seed)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": summary})
}

// handleV1GetSession returns one session summary
// GET /api/v1/sessions/:id
func (s *Server) handleV1GetSession(c *gin.Context) {
	summary, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// handleV1DeleteSession discards a session
// DELETE /api/v1/sessions/:id
func (s *Server) handleV1DeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		writeSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleV1Tick advances a session by one or more steps
// POST /api/v1/sessions/:id/tick?steps=1
func (s *Server) handleV1Tick(c *gin.Context) {
	steps := 1
	if raw := c.Query("steps"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid steps"})
			return
		}
		steps = val
	}

	appended, summary, err := s.sessions.Tick(c.Request.Context(), c.Param("id"), steps)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": appended,
		"meta": gin.H{
			"count":   len(appended),
			"session": summary,
		},
	})
}

// handleV1Series returns the full table or one pair's history
// GET /api/v1/sessions/:id/series?floor=...&zone=...
func (s *Server) handleV1Series(c *gin.Context) {
	readings, err := s.sessions.Series(c.Param("id"), c.Query("floor"), c.Query("zone"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": readings,
		"meta": gin.H{
			"count": len(readings),
		},
	})
}
