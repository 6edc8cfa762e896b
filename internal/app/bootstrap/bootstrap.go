package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	directmessage "agora/contexts/community-experience/direct-message-service"
	dmpostgres "agora/contexts/community-experience/direct-message-service/adapters/postgres"
	dmworkers "agora/contexts/community-experience/direct-message-service/application/workers"
	feedservice "agora/contexts/community-experience/feed-service"
	feedpostgres "agora/contexts/community-experience/feed-service/adapters/postgres"
	pollservice "agora/contexts/community-experience/poll-service"
	pollpostgres "agora/contexts/community-experience/poll-service/adapters/postgres"
	pollworkers "agora/contexts/community-experience/poll-service/application/workers"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	dmRelay      dmworkers.OutboxRelay
	pollRelay    pollworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	dmRepo := dmpostgres.NewRepository(pg.DB, logger)
	dmModule := directmessage.NewModule(directmessage.Dependencies{
		Repo:   dmRepo,
		Outbox: dmRepo,
		Clock:  dmpostgres.SystemClock{},
		IDGen:  dmpostgres.UUIDGenerator{},
		Logger: logger,
	})

	pollRepo := pollpostgres.NewRepository(pg.DB, logger)
	pollModule := pollservice.NewModule(pollservice.Dependencies{
		Repo:   pollRepo,
		Outbox: pollRepo,
		Clock:  pollpostgres.SystemClock{},
		IDGen:  pollpostgres.UUIDGenerator{},
		Logger: logger,
	})

	feedRepo := feedpostgres.NewRepository(pg.DB, logger)
	feedModule := feedservice.NewModule(feedservice.Dependencies{
		Repo:   feedRepo,
		Clock:  feedpostgres.SystemClock{},
		IDGen:  feedpostgres.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(dmModule, pollModule, feedModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	dmRepo := dmpostgres.NewRepository(pg.DB, logger)
	pollRepo := pollpostgres.NewRepository(pg.DB, logger)

	return &WorkerApp{
		postgres: pg,
		dmRelay: dmworkers.OutboxRelay{
			Outbox:    dmRepo,
			Publisher: bus,
			Clock:     dmpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollRelay: pollworkers.OutboxRelay{
			Outbox:    pollRepo,
			Publisher: bus,
			Clock:     pollpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.dmRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.pollRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
