package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/db"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/logging"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/publish"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
	"github.com/02loveslollipop/Shizuku-building-sim/services/watcher/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, "building-watcher")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sinks []sink

	switch {
	case cfg.DryRun:
		logger.Info("dry-run: skipping archive")
	case cfg.DatabaseURL != "":
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	if cfg.MQTT.Enabled() {
		pub, err := publish.Connect(cfg.MQTT)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	s, err := sim.New(cfg.Simulation, time.Now())
	if err != nil {
		return err
	}

	sessionID := "watcher-" + uuid.NewString()
	logger.Info("simulation initialised",
		zap.String("session_id", sessionID),
		zap.Int64("seed", cfg.Simulation.Seed),
		zap.Int("rows", s.Len()),
		zap.Int("ticks", cfg.Ticks),
		zap.Duration("tick_delay", cfg.TickDelay),
		zap.Int("sinks", len(sinks)),
	)

	rep, err := newRunner(cfg, s, sessionID, sinks, logger).run(ctx)
	if err != nil {
		return err
	}

	logger.Info("watcher finished",
		zap.String("session_id", sessionID),
		zap.Int("ticks", rep.Ticks),
		zap.Int("readings", rep.Readings),
		zap.Int("transitions", rep.Transitions),
		zap.Time("clock", s.Clock()),
	)
	return nil
}
