package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stoic-notes/notes/broker"
	"stoic-notes/notes/config"
	"stoic-notes/notes/database"
	"stoic-notes/notes/handlers"
	"stoic-notes/notes/services"
	"stoic-notes/notes/utils/logging"
	"stoic-notes/notes/validator"
)

// app holds the process-wide components. They are built once at start-up
// and shared by every invocation.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	gateway   database.Gateway
	publisher broker.Publisher
	handler   *handlers.NoteHandler
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// newApp wires storage, events and handlers. Missing region or table is not
// fatal: the handlers are still built and answer every request with 500.
func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, publisher: broker.NoopPublisher{}}

	if err := environmentReady(cfg); err != nil {
		logger.Error("Storage is not configured, all requests will fail", zap.Error(err))
		a.handler = handlers.NewNoteHandler(cfg, nil, logger)
		return a, nil
	}

	gateway, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a.gateway = gateway

	publisher, err := broker.NewPublisher(cfg, logger)
	if err != nil {
		// Events are best effort; notes are still served without them.
		logger.Warn("Note events are disabled", zap.Error(err))
	} else {
		a.publisher = publisher
	}

	service := services.NewNoteService(gateway, cfg, logger, services.WithPublisher(a.publisher))
	a.handler = handlers.NewNoteHandler(cfg, service, logger)
	return a, nil
}

func environmentReady(cfg config.Config) error {
	if err := validator.CheckRegion(cfg); err != nil {
		return err
	}
	return validator.CheckStorageTable(cfg)
}

func (a *app) Close() {
	a.publisher.Close()
	if a.gateway != nil {
		if err := a.gateway.Close(); err != nil {
			a.logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
