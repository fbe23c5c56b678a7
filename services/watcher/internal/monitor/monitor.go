// Package monitor evaluates the alert state of every floor/zone after a tick
// and filters it down to the pairs whose state changed.
package monitor

import (
	"slices"
	"time"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// Status is the alert state of one pair at a given clock.
type Status struct {
	Pair    sim.Pair
	Clock   time.Time
	Current *sim.Reading
	Alerts  []string
}

// NoData reports whether the window held no readings.
func (s Status) NoData() bool { return s.Current == nil }

// Snapshot evaluates the current reading of every pair, looking back minutes
// from the simulation clock.
func Snapshot(s *sim.Simulation, minutes int, t sim.Thresholds) []Status {
	pairs := s.Pairs()
	out := make([]Status, 0, len(pairs))
	for _, p := range pairs {
		st := Status{Pair: p, Clock: s.Clock(), Alerts: []string{}}
		if cur, ok := s.SelectLast(minutes, p.Floor, p.Zone).Current(); ok {
			st.Current = &cur
			st.Alerts = sim.Evaluate(cur, t)
		}
		out = append(out, st)
	}
	return out
}

// Tracker remembers the last reported alert set per pair.
type Tracker struct {
	last map[sim.Pair][]string
}

// NewTracker returns a Tracker with no history.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[sim.Pair][]string)}
}

// Changed returns the statuses whose alert set differs from the last one
// seen for the pair, and records them. A pair seen for the first time counts
// as changed only when it has alerts.
func (t *Tracker) Changed(statuses []Status) []Status {
	out := make([]Status, 0, len(statuses))
	for _, st := range statuses {
		prev, ok := t.last[st.Pair]
		t.last[st.Pair] = st.Alerts
		if !ok {
			if len(st.Alerts) > 0 {
				out = append(out, st)
			}
			continue
		}
		if !slices.Equal(prev, st.Alerts) {
			out = append(out, st)
		}
	}
	return out
}

// Active counts the statuses that carry at least one alert.
func Active(statuses []Status) int {
	n := 0
	for _, st := range statuses {
		if len(st.Alerts) > 0 {
			n++
		}
	}
	return n
}
