package serve

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/actionsense/internal/common"
	"github.com/dtnitsch/actionsense/pkg/maintenance"
	"github.com/dtnitsch/actionsense/pkg/server"
)

// ServeAction runs the HTTP bridge and the maintenance loop until
// interrupted.
func ServeAction(c *cli.Context) error {
	logger := common.Logger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(common.Context(c), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := common.Open(cfg, logger, common.Provider(cfg, logger))
	if err != nil {
		return err
	}
	defer rt.Close()

	maint := maintenance.New(rt.Store, rt.Provider, maintenance.Options{
		Interval: cfg.Cleanup.Interval,
		MaxAge:   cfg.Cleanup.MaxAge,
		MaxBytes: cfg.Cleanup.MaxBytes,
		Logger:   logger,
	})
	go maint.Run(ctx)

	logger.Info("actionsense starting",
		"listen", cfg.Listen,
		"db", cfg.DBPath,
		"ai_enabled", cfg.AI.Enabled,
		"model", cfg.AI.Model)
	return server.New(rt.Service, logger).ListenAndServe(ctx, cfg.Listen)
}
