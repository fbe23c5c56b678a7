package sim

import (
	"math"
	"time"
)

// maxWindowMinutes is the longest window whose cutoff fits in a Duration.
const maxWindowMinutes = math.MaxInt64 / int64(Step)

// Window is an ascending-time slice of one pair's series.
type Window struct {
	Floor    string
	Zone     string
	Cutoff   time.Time
	Readings []Reading
}

// Select returns the readings of floor/zone at or after cutoff, oldest first.
// An unknown pair or a cutoff past the clock yields an empty Window.
func (s *Simulation) Select(cutoff time.Time, floor, zone string) Window {
	w := Window{Floor: floor, Zone: zone, Cutoff: cutoff, Readings: []Reading{}}
	for _, i := range s.index[Pair{Floor: floor, Zone: zone}] {
		if r := s.rows[i]; !r.Timestamp.Before(cutoff) {
			w.Readings = append(w.Readings, r)
		}
	}
	return w
}

// SelectLast selects the trailing window of the given length, measured back
// from the simulation clock. Lengths too large to express as a Duration
// select the whole history.
func (s *Simulation) SelectLast(minutes int, floor, zone string) Window {
	if int64(minutes) > maxWindowMinutes {
		return s.Select(time.Time{}, floor, zone)
	}
	return s.Select(s.clock.Add(-time.Duration(minutes)*Step), floor, zone)
}

// Empty reports whether the window holds no readings.
func (w Window) Empty() bool { return len(w.Readings) == 0 }

// Current returns the newest reading, or ok == false for an empty window.
func (w Window) Current() (r Reading, ok bool) {
	if len(w.Readings) == 0 {
		return Reading{}, false
	}
	return w.Readings[len(w.Readings)-1], true
}

// Deltas is the change of each metric between the two newest readings. It is
// nil when the window has fewer than two readings.
func (w Window) Deltas() map[Metric]float64 {
	n := len(w.Readings)
	if n < 2 {
		return nil
	}
	cur, prev := w.Readings[n-1], w.Readings[n-2]
	out := make(map[Metric]float64, len(Metrics))
	for _, m := range Metrics {
		out[m] = cur.Value(m) - prev.Value(m)
	}
	return out
}
