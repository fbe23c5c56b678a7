package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
	"github.com/02loveslollipop/Shizuku-building-sim/services/watcher/internal/config"
	"github.com/02loveslollipop/Shizuku-building-sim/services/watcher/internal/monitor"
)

// sink receives every batch the watcher generates.
type sink interface {
	Publish(ctx context.Context, sessionID string, batch []sim.Reading) error
}

type runner struct {
	cfg       config.Config
	sim       *sim.Simulation
	sessionID string
	sinks     []sink
	logger    *zap.Logger
	tracker   *monitor.Tracker
}

type report struct {
	Ticks       int
	Readings    int
	Transitions int
}

func newRunner(cfg config.Config, s *sim.Simulation, sessionID string, sinks []sink, logger *zap.Logger) *runner {
	return &runner{
		cfg:       cfg,
		sim:       s,
		sessionID: sessionID,
		sinks:     sinks,
		logger:    logger,
		tracker:   monitor.NewTracker(),
	}
}

// run ships the seed history, then ticks cfg.Ticks times.
func (r *runner) run(ctx context.Context) (report, error) {
	var rep report

	seeded := r.sim.Readings()
	if err := r.publish(ctx, seeded); err != nil {
		return rep, err
	}
	rep.Readings += len(seeded)

	for i := 0; i < r.cfg.Ticks; i++ {
		if i > 0 && r.cfg.TickDelay > 0 {
			select {
			case <-ctx.Done():
				return rep, ctx.Err()
			case <-time.After(r.cfg.TickDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		batch := r.sim.Tick()
		rep.Ticks++
		rep.Readings += len(batch)
		if err := r.publish(ctx, batch); err != nil {
			return rep, err
		}

		statuses := monitor.Snapshot(r.sim, r.cfg.WindowMinutes, r.cfg.Thresholds)
		changed := r.tracker.Changed(statuses)
		rep.Transitions += len(changed)
		for _, st := range changed {
			r.logTransition(st)
		}
		r.logger.Debug("tick complete",
			zap.Int("tick", rep.Ticks),
			zap.Time("clock", r.sim.Clock()),
			zap.Int("active_alerts", monitor.Active(statuses)),
		)
	}

	return rep, nil
}

func (r *runner) publish(ctx context.Context, batch []sim.Reading) error {
	for _, s := range r.sinks {
		if err := s.Publish(ctx, r.sessionID, batch); err != nil {
			return fmt.Errorf("publish %d readings: %w", len(batch), err)
		}
	}
	return nil
}

func (r *runner) logTransition(st monitor.Status) {
	fields := []zap.Field{
		zap.Stringer("pair", st.Pair),
		zap.Time("clock", st.Clock),
	}
	if st.NoData() {
		r.logger.Warn("no data for the selected window", fields...)
		return
	}
	fields = append(fields,
		zap.Float64("temperature", st.Current.Temperature),
		zap.Float64("humidity", st.Current.Humidity),
		zap.Float64("co2", st.Current.CO2),
		zap.Float64("lighting", st.Current.Lighting),
		zap.Bool("motion", st.Current.Motion),
	)
	if len(st.Alerts) == 0 {
		r.logger.Info("all systems normal", fields...)
		return
	}
	r.logger.Warn("alerts raised", append(fields, zap.Strings("alerts", st.Alerts))...)
}
