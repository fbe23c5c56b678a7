package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/db"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/logging"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/publish"
	"github.com/02loveslollipop/Shizuku-building-sim/services/api/config"
	httpserver "github.com/02loveslollipop/Shizuku-building-sim/services/api/http"
	"github.com/02loveslollipop/Shizuku-building-sim/services/api/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, "building-api")
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		sinks   []session.Sink
		archive httpserver.Archive
	)

	if cfg.DatabaseURL != "" {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connection error", zap.Error(err))
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			logger.Fatal("db ping error", zap.Error(err))
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("db schema error", zap.Error(err))
		}
		sinks = append(sinks, store)
		archive = store
		logger.Info("archive enabled")
	}

	if cfg.MQTT.Enabled() {
		pub, err := publish.Connect(cfg.MQTT)
		if err != nil {
			logger.Fatal("mqtt connection error", zap.Error(err), zap.String("broker", cfg.MQTT.Broker))
		}
		defer pub.Close()
		sinks = append(sinks, pub)
		logger.Info("mqtt publishing enabled",
			zap.String("broker", cfg.MQTT.Broker),
			zap.String("topic_prefix", cfg.MQTT.TopicPrefix),
		)
	}

	sessions, err := session.NewManager(session.Config{
		Options:  cfg.Simulation,
		Limit:    cfg.MaxSessions,
		MaxSteps: cfg.MaxTickSteps,
		Sinks:    sinks,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("simulation options error", zap.Error(err))
	}
	if _, err := sessions.Create(ctx, session.DefaultID, nil); err != nil {
		logger.Fatal("default session error", zap.Error(err))
	}

	srv := httpserver.New(cfg, sessions, archive, logger)
	logger.Info("REST API listening", zap.String("addr", cfg.ListenAddr()))

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
