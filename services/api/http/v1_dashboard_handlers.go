package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

const noDataMessage = "No data for the selected window."

const (
	statusAlert  = "alert"
	statusNormal = "normal"
	statusNoData = "no_data"
)

// handleV1Meta describes the building layout and alert defaults
// GET /api/v1/meta
func (s *Server) handleV1Meta(c *gin.Context) {
	opts := s.sessions.Options()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"floors":                 opts.Floors,
			"zones":                  opts.Zones,
			"metrics":                sim.Metrics,
			"history_minutes":        opts.HistoryMinutes,
			"default_window_minutes": s.cfg.DefaultWindowMinutes,
			"max_tick_steps":         s.sessions.MaxSteps(),
			"thresholds":             s.cfg.Thresholds,
			"alerts":                 sim.AlertNames,
		},
	})
}

// handleV1Window returns the trailing window of one floor/zone
// GET /api/v1/sessions/:id/window?floor=...&zone=...&minutes=15
func (s *Server) handleV1Window(c *gin.Context) {
	floor, zone := s.selection(c)
	minutes, ok := s.windowMinutes(c)
	if !ok {
		return
	}

	snap, err := s.sessions.Window(c.Param("id"), floor, zone, minutes)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	data := gin.H{
		"floor":    floor,
		"zone":     zone,
		"minutes":  minutes,
		"cutoff":   snap.Window.Cutoff,
		"readings": snap.Window.Readings,
		"current":  snap.Current,
		"deltas":   snap.Deltas,
	}
	if snap.Current == nil {
		data["message"] = noDataMessage
	}

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"count": len(snap.Window.Readings),
			"clock": snap.Clock,
		},
	})
}

// handleV1Alerts evaluates the current reading of one floor/zone
// GET /api/v1/sessions/:id/alerts?floor=...&zone=...&minutes=15&max_temp=27
func (s *Server) handleV1Alerts(c *gin.Context) {
	floor, zone := s.selection(c)
	minutes, ok := s.windowMinutes(c)
	if !ok {
		return
	}

	thresholds, err := s.thresholds(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.sessions.Window(c.Param("id"), floor, zone, minutes)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	data := gin.H{
		"floor":      floor,
		"zone":       zone,
		"thresholds": thresholds,
		"current":    snap.Current,
		"alerts":     []string{},
	}

	switch {
	case snap.Current == nil:
		data["status"] = statusNoData
		data["message"] = noDataMessage
	default:
		alerts := sim.Evaluate(*snap.Current, thresholds)
		data["alerts"] = alerts
		if len(alerts) > 0 {
			data["status"] = statusAlert
		} else {
			data["status"] = statusNormal
			data["message"] = "All systems normal"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"clock": snap.Clock,
		},
	})
}

// selection returns the requested floor/zone, defaulting to the first of each.
func (s *Server) selection(c *gin.Context) (string, string) {
	opts := s.sessions.Options()
	floor, zone := c.Query("floor"), c.Query("zone")
	if floor == "" && len(opts.Floors) > 0 {
		floor = opts.Floors[0]
	}
	if zone == "" && len(opts.Zones) > 0 {
		zone = opts.Zones[0]
	}
	return floor, zone
}

// windowMinutes parses ?minutes=, writing a 400 on failure.
func (s *Server) windowMinutes(c *gin.Context) (int, bool) {
	raw := c.Query("minutes")
	if raw == "" {
		return s.cfg.DefaultWindowMinutes, true
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minutes"})
		return 0, false
	}
	return val, true
}

// thresholds overlays query overrides on the configured defaults.
func (s *Server) thresholds(c *gin.Context) (sim.Thresholds, error) {
	t := s.cfg.Thresholds
	overrides := []struct {
		key string
		dst *float64
	}{
		{"max_temp", &t.MaxTemperature},
		{"max_co2", &t.MaxCO2},
		{"min_humidity", &t.MinHumidity},
		{"max_humidity", &t.MaxHumidity},
	}
	for _, o := range overrides {
		raw := c.Query(o.key)
		if raw == "" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, fmt.Errorf("invalid %s: %s", o.key, raw)
		}
		*o.dst = val
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
