package sim

import (
	"errors"
	"fmt"
	"math"
)

// Metric names a numeric field of a Reading.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricCO2         Metric = "co2"
	MetricLighting    Metric = "lighting"
	MetricPowerKW     Metric = "power_kw"
)

// Metrics lists the smoothed numeric fields in draw order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricCO2, MetricLighting, MetricPowerKW}

// Range is a closed interval used for uniform baseline draws.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid simulation options")

const (
	DefaultSeed              int64   = 42
	DefaultHistoryMinutes            = 30
	DefaultTailSize                  = 5
	DefaultMotionProbability float64 = 0.15

	// MinLighting and MinPowerKW are the clamp floors applied to every draw.
	MinLighting = 0.0
	MinPowerKW  = 0.1
)

// Options configures a Simulation. Every table is keyed by Metric and must
// cover all entries of Metrics.
type Options struct {
	Seed   int64
	Floors []string
	Zones  []string

	// HistoryMinutes of seeded history precede the reference minute, so each
	// pair starts with HistoryMinutes+1 readings.
	HistoryMinutes int
	// TailSize is how many recent readings of a pair feed the next tick.
	TailSize int

	MotionProbability float64
	Sigma             map[Metric]float64
	Fallback          map[Metric]float64
	Baseline          map[Metric]Range
}

// DefaultOptions returns the stock building layout and noise model.
func DefaultOptions() Options {
	return Options{
		Seed:              DefaultSeed,
		Floors:            []string{"Ground", "Level 1", "Level 2", "Level 3"},
		Zones:             []string{"North", "South", "East", "West"},
		HistoryMinutes:    DefaultHistoryMinutes,
		TailSize:          DefaultTailSize,
		MotionProbability: DefaultMotionProbability,
		Sigma: map[Metric]float64{
			MetricTemperature: 0.4,
			MetricHumidity:    1.5,
			MetricCO2:         8,
			MetricLighting:    20,
			MetricPowerKW:     0.5,
		},
		Fallback: map[Metric]float64{
			MetricTemperature: 24,
			MetricHumidity:    48,
			MetricCO2:         450,
			MetricLighting:    400,
			MetricPowerKW:     12,
		},
		Baseline: map[Metric]Range{
			MetricTemperature: {Min: 22, Max: 26},
			MetricHumidity:    {Min: 40, Max: 55},
			MetricCO2:         {Min: 380, Max: 520},
			MetricLighting:    {Min: 100, Max: 700},
			MetricPowerKW:     {Min: 5, Max: 25},
		},
	}
}

// Validate reports the first problem found in o.
func (o Options) Validate() error {
	if err := validateNames("floor", o.Floors); err != nil {
		return err
	}
	if err := validateNames("zone", o.Zones); err != nil {
		return err
	}
	if o.HistoryMinutes < 0 {
		return fmt.Errorf("%w: history minutes must be >= 0, got %d", ErrInvalidOptions, o.HistoryMinutes)
	}
	if o.TailSize < 1 {
		return fmt.Errorf("%w: tail size must be >= 1, got %d", ErrInvalidOptions, o.TailSize)
	}
	if o.MotionProbability < 0 || o.MotionProbability > 1 || math.IsNaN(o.MotionProbability) {
		return fmt.Errorf("%w: motion probability must be in [0,1], got %v", ErrInvalidOptions, o.MotionProbability)
	}
	for _, m := range Metrics {
		sigma, ok := o.Sigma[m]
		if !ok {
			return fmt.Errorf("%w: missing sigma for %s", ErrInvalidOptions, m)
		}
		if sigma < 0 || math.IsNaN(sigma) {
			return fmt.Errorf("%w: sigma for %s must be >= 0, got %v", ErrInvalidOptions, m, sigma)
		}
		if _, ok := o.Fallback[m]; !ok {
			return fmt.Errorf("%w: missing fallback for %s", ErrInvalidOptions, m)
		}
		r, ok := o.Baseline[m]
		if !ok {
			return fmt.Errorf("%w: missing baseline range for %s", ErrInvalidOptions, m)
		}
		if r.Max < r.Min {
			return fmt.Errorf("%w: baseline range for %s is inverted (%v > %v)", ErrInvalidOptions, m, r.Min, r.Max)
		}
	}
	return nil
}

func validateNames(kind string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one %s is required", ErrInvalidOptions, kind)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: empty %s name", ErrInvalidOptions, kind)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate %s %q", ErrInvalidOptions, kind, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Clone deep-copies the slices and maps so the result never shares them
// with o.
func (o Options) Clone() Options {
	out := o
	out.Floors = append([]string(nil), o.Floors...)
	out.Zones = append([]string(nil), o.Zones...)
	out.Sigma = make(map[Metric]float64, len(o.Sigma))
	for k, v := range o.Sigma {
		out.Sigma[k] = v
	}
	out.Fallback = make(map[Metric]float64, len(o.Fallback))
	for k, v := range o.Fallback {
		out.Fallback[k] = v
	}
	out.Baseline = make(map[Metric]Range, len(o.Baseline))
	for k, v := range o.Baseline {
		out.Baseline[k] = v
	}
	return out
}
