// Package common holds the setup shared by every CLI action.
package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/aiqueue"
	"github.com/dtnitsch/actionsense/pkg/battery"
	"github.com/dtnitsch/actionsense/pkg/db"
	"github.com/dtnitsch/actionsense/pkg/focus"
	"github.com/dtnitsch/actionsense/pkg/pipeline"
	"github.com/dtnitsch/actionsense/pkg/snapshot"
	"github.com/dtnitsch/actionsense/pkg/tabs"
)

// Logger builds the JSON stderr logger: INFO by default, ERROR with
// --quiet, DEBUG with --verbose.
func Logger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		logLevel = slog.LevelError
	case c.Bool("verbose"):
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies flag overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("no-ai") {
		cfg.AI.Enabled = !c.Bool("no-ai")
	}
	if c.IsSet("model") {
		cfg.AI.Model = c.String("model")
	}
	return cfg, nil
}

// Runtime is the wired core shared by serve, ingest and report.
type Runtime struct {
	Config   *models.Config
	Logger   *slog.Logger
	Store    *db.DB
	Provider ai.Provider
	Service  *pipeline.Service
}

// Open wires store, engine, tab arena and pipeline around provider.
// A nil provider disables AI.
func Open(cfg *models.Config, logger *slog.Logger, provider ai.Provider) (*Runtime, error) {
	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if provider == nil {
		provider = ai.Unavailable{}
	}

	engine := snapshot.NewEngine(store, nil, snapshot.Options{
		TextClamp:        cfg.Storage.TextClamp,
		MaxActionHistory: cfg.Storage.MaxActionHistory,
		Logger:           logger,
	})
	arena := tabs.NewArena(focus.SessionRule{Min: cfg.Focus.MinSession, Max: cfg.Focus.MaxSession})
	svc := pipeline.New(store, engine, arena, provider, pipeline.Options{Config: *cfg, Logger: logger})

	return &Runtime{Config: cfg, Logger: logger, Store: store, Provider: provider, Service: svc}, nil
}

func (r *Runtime) Close() error { return r.Store.Close() }

// Context returns the action's context, never nil.
func Context(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// Provider returns the queued Ollama client, or nil when AI is disabled.
// Every call goes through one serial queue behind the battery gate.
func Provider(cfg *models.Config, logger *slog.Logger) ai.Provider {
	if !cfg.AI.Enabled {
		return nil
	}
	queue := aiqueue.New(aiqueue.Options{
		Pause:          cfg.AI.QueuePause,
		Timeouts:       cfg.AI.Timeouts,
		DefaultTimeout: cfg.AI.Timeouts[models.LabelDefault],
		Gate: &aiqueue.Gate{
			Probe:     battery.NewSysfsProbe(),
			Threshold: cfg.AI.BatteryThreshold,
			Logger:    logger,
		},
		Logger: logger,
	})
	return ai.NewClient(ai.NewOllama(cfg.AI.Endpoint, cfg.AI.Model, nil), queue)
}
