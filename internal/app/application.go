package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/seoaudit/internal/logging"
)

// Application is the global runtime state container. It holds config and the
// core services shared across commands (orchestrator, logger). Pass it into
// modules that need access to the global state rather than using
// package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger
	Orch   *Orchestrator
}

// NewApplication builds the client, the history store and the orchestrator
// from cfg.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = NewLogger(cfg.Log, nil)
	}

	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := OpenHistory(cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Application{
		Config: cfg,
		Logger: logger,
		Orch:   NewOrchestrator(cfg, client, store, logger),
	}, nil
}

// Start logs the effective setup.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	base := a.Config.API.BaseURL
	if a.Config.API.Offline {
		base = "offline"
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "api", Value: base},
		logging.Field{Key: "history", Value: a.Config.History.Enabled})
	return nil
}

// Shutdown attempts a graceful shutdown, delegating to the orchestrator.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if a.Orch != nil {
		if err := a.Orch.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("orchestrator shutdown returned error", logging.Field{Key: "error", Value: err.Error()})
			return err
		}
	}
	return nil
}
