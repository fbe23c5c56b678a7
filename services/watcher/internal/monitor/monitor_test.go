package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

var refNow = time.Date(2024, 5, 6, 10, 15, 0, 0, time.UTC)

func newSim(t *testing.T) *sim.Simulation {
	t.Helper()
	opts := sim.DefaultOptions()
	opts.Floors = []string{"Ground", "Level 1"}
	opts.Zones = []string{"North", "South"}
	s, err := sim.New(opts, refNow)
	require.NoError(t, err)
	return s
}

func TestSnapshot(t *testing.T) {
	s := newSim(t)

	statuses := Snapshot(s, 5, sim.DefaultThresholds())
	require.Len(t, statuses, 4)
	for _, st := range statuses {
		require.False(t, st.NoData())
		assert.Equal(t, refNow, st.Current.Timestamp)
		assert.Equal(t, st.Pair.Floor, st.Current.Floor)
		assert.Equal(t, sim.Evaluate(*st.Current, sim.DefaultThresholds()), st.Alerts)
	}

	all := sim.Thresholds{MaxTemperature: -100, MaxCO2: -100, MinHumidity: 200, MaxHumidity: 300}
	assert.Equal(t, 4, Active(Snapshot(s, 5, all)))
}

func TestTracker_Changed(t *testing.T) {
	a := sim.Pair{Floor: "Ground", Zone: "North"}
	b := sim.Pair{Floor: "Ground", Zone: "South"}
	tr := NewTracker()

	first := tr.Changed([]Status{
		{Pair: a, Alerts: []string{sim.AlertHighCO2}},
		{Pair: b, Alerts: []string{}},
	})
	require.Len(t, first, 1)
	assert.Equal(t, a, first[0].Pair)

	assert.Empty(t, tr.Changed([]Status{
		{Pair: a, Alerts: []string{sim.AlertHighCO2}},
		{Pair: b, Alerts: []string{}},
	}))

	next := tr.Changed([]Status{
		{Pair: a, Alerts: []string{}},
		{Pair: b, Alerts: []string{sim.AlertHumidity}},
	})
	require.Len(t, next, 2)
	assert.Empty(t, next[0].Alerts)
	assert.Equal(t, []string{sim.AlertHumidity}, next[1].Alerts)
}
