package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// handleV1LiveChart returns three standard-normal series for the demo chart
// GET /api/v1/demo/live?rows=100&seed=42
func (s *Server) handleV1LiveChart(c *gin.Context) {
	rows := sim.DefaultLiveChartRows
	if raw := c.Query("rows"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 || val > sim.MaxLiveChartRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rows"})
			return
		}
		rows = val
	}

	seed := s.cfg.Simulation.Seed
	if raw := c.Query("seed"); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seed"})
			return
		}
		seed = val
	}

	points := sim.LiveChart(seed, rows)
	c.JSON(http.StatusOK, gin.H{
		"data": points,
		"meta": gin.H{
			"count":  len(points),
			"seed":   seed,
			"series": []string{"A", "B", "C"},
		},
	})
}
