package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	shared "github.com/02loveslollipop/Shizuku-building-sim/internal/config"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	Port                 int
	BearerToken          string
	DatabaseURL          string
	DefaultWindowMinutes int
	MaxSessions          int
	MaxTickSteps         int

	Simulation sim.Options
	Thresholds sim.Thresholds
	Logging    shared.Logging
	MQTT       shared.MQTT
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:                 8080,
		DefaultWindowMinutes: 15,
		MaxSessions:          64,
		MaxTickSteps:         120,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := os.Getenv("API_DEFAULT_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DefaultWindowMinutes = n
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_WINDOW_MINUTES: %s", v)
		}
	}

	if v := os.Getenv("API_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		} else {
			return cfg, fmt.Errorf("invalid API_MAX_SESSIONS: %s", v)
		}
	}

	if v := os.Getenv("API_MAX_TICK_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTickSteps = n
		} else {
			return cfg, fmt.Errorf("invalid API_MAX_TICK_STEPS: %s", v)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	var err error
	if cfg.Simulation, err = shared.SimulationFromEnv(); err != nil {
		return cfg, err
	}
	if cfg.Thresholds, err = shared.ThresholdsFromEnv(); err != nil {
		return cfg, err
	}
	if cfg.MQTT, err = shared.MQTTFromEnv("building-api"); err != nil {
		return cfg, err
	}
	cfg.Logging = shared.LoggingFromEnv()

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
