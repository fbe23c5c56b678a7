package sim

import (
	"errors"
	"fmt"
	"math"
)

// Alert names, in evaluation order.
const (
	AlertHighTemperature = "High temperature"
	AlertHighCO2         = "High CO₂"
	AlertHumidity        = "Humidity out of comfort"
	AlertLightsUnused    = "Lights on without occupancy"
)

// AlertNames lists every alert in the order Evaluate reports them.
var AlertNames = []string{AlertHighTemperature, AlertHighCO2, AlertHumidity, AlertLightsUnused}

// LightsOnLux is the lighting level above which an unoccupied zone is flagged.
const LightsOnLux = 200.0

// ErrInvalidThresholds is wrapped by Thresholds.Validate failures.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds are the user-adjustable alert bounds. The humidity range is
// inclusive.
type Thresholds struct {
	MaxTemperature float64 `json:"max_temperature"`
	MaxCO2         float64 `json:"max_co2"`
	MinHumidity    float64 `json:"min_humidity"`
	MaxHumidity    float64 `json:"max_humidity"`
}

// DefaultThresholds are the dashboard's initial slider positions.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxTemperature: 27, MaxCO2: 900, MinHumidity: 35, MaxHumidity: 60}
}

// Validate rejects non-finite bounds and an inverted humidity range.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"max temperature": t.MaxTemperature,
		"max co2":         t.MaxCO2,
		"min humidity":    t.MinHumidity,
		"max humidity":    t.MaxHumidity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidThresholds, name)
		}
	}
	if t.MinHumidity > t.MaxHumidity {
		return fmt.Errorf("%w: min humidity %v exceeds max humidity %v", ErrInvalidThresholds, t.MinHumidity, t.MaxHumidity)
	}
	return nil
}

// Evaluate returns the alerts r triggers under t, in AlertNames order. An
// empty result means all systems are normal.
func Evaluate(r Reading, t Thresholds) []string {
	alerts := make([]string, 0, len(AlertNames))
	if r.Temperature > t.MaxTemperature {
		alerts = append(alerts, AlertHighTemperature)
	}
	if r.CO2 > t.MaxCO2 {
		alerts = append(alerts, AlertHighCO2)
	}
	if r.Humidity < t.MinHumidity || r.Humidity > t.MaxHumidity {
		alerts = append(alerts, AlertHumidity)
	}
	if r.Lighting > LightsOnLux && !r.Motion {
		alerts = append(alerts, AlertLightsUnused)
	}
	return alerts
}
