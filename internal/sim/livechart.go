package sim

import "math/rand/v2"

const (
	DefaultLiveChartRows = 100
	MaxLiveChartRows     = 1000
)

// ChartRow is one point of the live demo chart.
type ChartRow struct {
	Index int     `json:"index"`
	A     float64 `json:"A"`
	B     float64 `json:"B"`
	C     float64 `json:"C"`
}

// LiveChart draws rows of three independent standard-normal series. rows is
// clamped to [1, MaxLiveChartRows].
func LiveChart(seed int64, rows int) []ChartRow {
	if rows < 1 {
		rows = 1
	}
	if rows > MaxLiveChartRows {
		rows = MaxLiveChartRows
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	out := make([]ChartRow, rows)
	for i := range out {
		out[i] = ChartRow{Index: i, A: rng.NormFloat64(), B: rng.NormFloat64(), C: rng.NormFloat64()}
	}
	return out
}
