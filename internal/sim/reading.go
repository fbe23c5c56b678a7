package sim

import "time"

// Reading is one synthetic sensor sample for a floor/zone pair.
type Reading struct {
	Timestamp   time.Time `json:"ts"`
	Floor       string    `json:"floor"`
	Zone        string    `json:"zone"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	Lighting    float64   `json:"lighting"`
	Motion      bool      `json:"motion"`
	PowerKW     float64   `json:"power_kw"`
}

// Value returns the numeric field named by m.
func (r Reading) Value(m Metric) float64 {
	switch m {
	case MetricTemperature:
		return r.Temperature
	case MetricHumidity:
		return r.Humidity
	case MetricCO2:
		return r.CO2
	case MetricLighting:
		return r.Lighting
	case MetricPowerKW:
		return r.PowerKW
	}
	return 0
}

// MotionFlag encodes Motion as 0/1.
func (r Reading) MotionFlag() int {
	if r.Motion {
		return 1
	}
	return 0
}

// Pair identifies one independent series within the table.
type Pair struct {
	Floor string `json:"floor"`
	Zone  string `json:"zone"`
}

func (r Reading) pair() Pair {
	return Pair{Floor: r.Floor, Zone: r.Zone}
}
