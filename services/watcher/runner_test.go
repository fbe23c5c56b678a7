package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
	"github.com/02loveslollipop/Shizuku-building-sim/services/watcher/internal/config"
)

var refNow = time.Date(2024, 5, 6, 10, 15, 0, 0, time.UTC)

type countingSink struct {
	batches []int
	failAt  int
}

func (c *countingSink) Publish(_ context.Context, _ string, batch []sim.Reading) error {
	c.batches = append(c.batches, len(batch))
	if c.failAt > 0 && len(c.batches) == c.failAt {
		return errors.New("broker gone")
	}
	return nil
}

func testConfig(ticks int) config.Config {
	opts := sim.DefaultOptions()
	opts.Floors = []string{"Ground", "Level 1"}
	opts.Zones = []string{"North", "South", "East"}
	return config.Config{
		Ticks:         ticks,
		WindowMinutes: 15,
		Simulation:    opts,
		Thresholds:    sim.DefaultThresholds(),
	}
}

func newTestRunner(t *testing.T, cfg config.Config, sinks ...sink) (*runner, *observer.ObservedLogs) {
	t.Helper()
	s, err := sim.New(cfg.Simulation, refNow)
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	return newRunner(cfg, s, "watcher-test", sinks, zap.New(core)), logs
}

func TestRun_TicksAndPublishes(t *testing.T) {
	out := &countingSink{}
	r, logs := newTestRunner(t, testConfig(4), out)

	rep, err := r.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Ticks)
	assert.Equal(t, 6*31+4*6, rep.Readings)
	assert.Equal(t, []int{6 * 31, 6, 6, 6, 6}, out.batches)
	assert.Equal(t, refNow.Add(4*time.Minute), r.sim.Clock())
	assert.Equal(t, 4, logs.FilterMessage("tick complete").Len())
}

func TestRun_LogsAlertTransitions(t *testing.T) {
	cfg := testConfig(3)
	cfg.Thresholds = sim.Thresholds{MaxTemperature: -100, MaxCO2: -100, MinHumidity: 200, MaxHumidity: 300}
	r, logs := newTestRunner(t, cfg)

	rep, err := r.run(context.Background())
	require.NoError(t, err)
	// Every pair raises alerts on the first tick.
	assert.GreaterOrEqual(t, rep.Transitions, 6)
	assert.GreaterOrEqual(t, logs.FilterMessage("alerts raised").Len(), 6)
}

func TestRun_SinkErrorStops(t *testing.T) {
	out := &countingSink{failAt: 3}
	r, _ := newTestRunner(t, testConfig(10), out)

	rep, err := r.run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")
	assert.Equal(t, 2, rep.Ticks)
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	cfg := testConfig(5)
	cfg.TickDelay = time.Hour
	r, _ := newTestRunner(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rep, err := r.run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, rep.Ticks)
}
