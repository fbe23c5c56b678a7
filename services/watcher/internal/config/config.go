package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	shared "github.com/02loveslollipop/Shizuku-building-sim/internal/config"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

const (
	defaultTicks         = 100
	defaultWindowMinutes = 15
)

// Config holds runtime configuration for the watcher service.
type Config struct {
	DatabaseURL   string
	Ticks         int
	TickDelay     time.Duration
	WindowMinutes int
	DryRun        bool

	Simulation sim.Options
	Thresholds sim.Thresholds
	Logging    shared.Logging
	MQTT       shared.MQTT
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		Ticks:         defaultTicks,
		WindowMinutes: defaultWindowMinutes,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("WATCHER_TICKS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid WATCHER_TICKS: %s", v)
		}
		cfg.Ticks = n
	}

	if v := strings.TrimSpace(os.Getenv("WATCHER_TICK_DELAY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid WATCHER_TICK_DELAY: %w", err)
		}
		if d < 0 {
			return cfg, fmt.Errorf("invalid WATCHER_TICK_DELAY: %s", v)
		}
		cfg.TickDelay = d
	}

	if v := strings.TrimSpace(os.Getenv("WATCHER_WINDOW_MINUTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid WATCHER_WINDOW_MINUTES: %s", v)
		}
		cfg.WindowMinutes = n
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	var err error
	if cfg.Simulation, err = shared.SimulationFromEnv(); err != nil {
		return cfg, err
	}
	if cfg.Thresholds, err = shared.ThresholdsFromEnv(); err != nil {
		return cfg, err
	}
	if cfg.MQTT, err = shared.MQTTFromEnv("building-watcher"); err != nil {
		return cfg, err
	}
	cfg.Logging = shared.LoggingFromEnv()

	return cfg, nil
}
