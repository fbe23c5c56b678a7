// Package config holds the environment settings shared by the API and the
// watcher: simulation layout, alert thresholds, logging and MQTT.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// Logging selects the zap level and encoder.
type Logging struct {
	Level  string
	Format string
}

// MQTT configures the optional tick publisher. An empty Broker disables it.
type MQTT struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Enabled reports whether a broker is configured.
func (m MQTT) Enabled() bool { return m.Broker != "" }

// SimulationFromEnv starts from sim.DefaultOptions and applies SIM_* overrides.
func SimulationFromEnv() (sim.Options, error) {
	opts := sim.DefaultOptions()

	if v := env("SIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid SIM_SEED: %w", err)
		}
		opts.Seed = seed
	}
	if v := env("SIM_FLOORS"); v != "" {
		opts.Floors = SplitCSV(v)
	}
	if v := env("SIM_ZONES"); v != "" {
		opts.Zones = SplitCSV(v)
	}
	if v := env("SIM_HISTORY_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid SIM_HISTORY_MINUTES: %w", err)
		}
		opts.HistoryMinutes = n
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// ThresholdsFromEnv reads the default alert thresholds (ALERT_*).
func ThresholdsFromEnv() (sim.Thresholds, error) {
	th := sim.DefaultThresholds()
	fields := []struct {
		key string
		dst *float64
	}{
		{"ALERT_MAX_TEMPERATURE", &th.MaxTemperature},
		{"ALERT_MAX_CO2", &th.MaxCO2},
		{"ALERT_MIN_HUMIDITY", &th.MinHumidity},
		{"ALERT_MAX_HUMIDITY", &th.MaxHumidity},
	}
	for _, f := range fields {
		v := env(f.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return th, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = parsed
	}
	if err := th.Validate(); err != nil {
		return th, err
	}
	return th, nil
}

// LoggingFromEnv reads LOG_LEVEL and LOG_FORMAT.
func LoggingFromEnv() Logging {
	cfg := Logging{Level: "info", Format: "json"}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	return cfg
}

// MQTTFromEnv reads the MQTT_* variables.
func MQTTFromEnv(defaultClientID string) (MQTT, error) {
	cfg := MQTT{
		Broker:      env("MQTT_BROKER"),
		ClientID:    defaultClientID,
		Username:    env("MQTT_USERNAME"),
		Password:    os.Getenv("MQTT_PASSWORD"),
		TopicPrefix: "building/readings",
	}
	if v := env("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := env("MQTT_TOPIC_PREFIX"); v != "" {
		cfg.TopicPrefix = strings.TrimRight(v, "/")
	}
	if v := env("MQTT_QOS"); v != "" {
		qos, err := strconv.Atoi(v)
		if err != nil || qos < 0 || qos > 2 {
			return cfg, fmt.Errorf("invalid MQTT_QOS: %s", v)
		}
		cfg.QoS = byte(qos)
	}
	return cfg, nil
}

// SplitCSV splits a comma separated list, dropping blank entries.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
