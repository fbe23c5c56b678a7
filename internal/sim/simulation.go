// Package sim generates the synthetic building telemetry behind the dashboard:
// a seeded per-floor/zone history, tick-by-tick continuation biased toward the
// recent tail of each series, window selection and threshold alerts.
//
// A Simulation is owned by a single caller at a time and is not safe for
// concurrent use.
package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Step is the spacing between consecutive readings of one pair.
const Step = time.Minute

// Simulation holds the Series Table and the Simulation Clock.
type Simulation struct {
	opts  Options
	rng   *rand.Rand
	rows  []Reading
	index map[Pair][]int
	pairs []Pair
	clock time.Time
}

// New seeds a Simulation with HistoryMinutes+1 readings per pair ending at the
// minute containing now.
func New(opts Options, now time.Time) (*Simulation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.Clone()

	s := &Simulation{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed))),
		index: make(map[Pair][]int, len(opts.Floors)*len(opts.Zones)),
	}
	for _, f := range opts.Floors {
		for _, z := range opts.Zones {
			s.pairs = append(s.pairs, Pair{Floor: f, Zone: z})
		}
	}

	baselines := make(map[Pair]map[Metric]float64, len(s.pairs))
	for _, p := range s.pairs {
		b := make(map[Metric]float64, len(Metrics))
		for _, m := range Metrics {
			r := opts.Baseline[m]
			b[m] = r.Min + (r.Max-r.Min)*s.rng.Float64()
		}
		baselines[p] = b
	}

	end := now.UTC().Truncate(Step)
	start := end.Add(-time.Duration(opts.HistoryMinutes) * Step)
	s.rows = make([]Reading, 0, len(s.pairs)*(opts.HistoryMinutes+1))
	for ts := start; !ts.After(end); ts = ts.Add(Step) {
		for _, p := range s.pairs {
			s.append(s.draw(ts, p, baselines[p]))
		}
	}
	s.clock = end
	return s, nil
}

// Tick advances the clock by one Step and appends one reading per pair, each
// drawn around the mean of that pair's most recent TailSize readings. It
// returns the appended batch.
func (s *Simulation) Tick() []Reading {
	next := s.clock.Add(Step)
	batch := make([]Reading, 0, len(s.pairs))
	for _, p := range s.pairs {
		batch = append(batch, s.draw(next, p, s.tailMeans(p)))
	}
	for _, r := range batch {
		s.append(r)
	}
	s.clock = next
	return batch
}

// tailMeans averages each metric over the pair's recent tail. A pair without
// history gets the configured fallback values.
func (s *Simulation) tailMeans(p Pair) map[Metric]float64 {
	idx := s.index[p]
	if len(idx) > s.opts.TailSize {
		idx = idx[len(idx)-s.opts.TailSize:]
	}
	out := make(map[Metric]float64, len(Metrics))
	if len(idx) == 0 {
		for _, m := range Metrics {
			out[m] = s.opts.Fallback[m]
		}
		return out
	}
	for _, m := range Metrics {
		var sum float64
		for _, i := range idx {
			sum += s.rows[i].Value(m)
		}
		out[m] = sum / float64(len(idx))
	}
	return out
}

func (s *Simulation) draw(ts time.Time, p Pair, center map[Metric]float64) Reading {
	noisy := func(m Metric) float64 {
		return center[m] + s.opts.Sigma[m]*s.rng.NormFloat64()
	}
	r := Reading{Timestamp: ts, Floor: p.Floor, Zone: p.Zone}
	r.Temperature = noisy(MetricTemperature)
	r.Humidity = noisy(MetricHumidity)
	r.CO2 = noisy(MetricCO2)
	r.Lighting = math.Max(MinLighting, noisy(MetricLighting))
	r.PowerKW = math.Max(MinPowerKW, noisy(MetricPowerKW))
	r.Motion = s.rng.Float64() < s.opts.MotionProbability
	return r
}

func (s *Simulation) append(r Reading) {
	p := r.pair()
	s.index[p] = append(s.index[p], len(s.rows))
	s.rows = append(s.rows, r)
}

// Clock returns the timestamp of the most recent batch.
func (s *Simulation) Clock() time.Time { return s.clock }

// Len returns the number of readings in the table.
func (s *Simulation) Len() int { return len(s.rows) }

// Pairs returns the floor/zone pairs in generation order.
func (s *Simulation) Pairs() []Pair { return append([]Pair(nil), s.pairs...) }

// Options returns a copy of the options the simulation was built with.
func (s *Simulation) Options() Options { return s.opts.Clone() }

// Readings returns a copy of the full table in insertion order.
func (s *Simulation) Readings() []Reading { return append([]Reading(nil), s.rows...) }

func (p Pair) String() string { return fmt.Sprintf("%s/%s", p.Floor, p.Zone) }
