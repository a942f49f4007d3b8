// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/worldcrafter/worldcrafter/internal/config"
	"github.com/worldcrafter/worldcrafter/internal/logging"
	mcpserver "github.com/worldcrafter/worldcrafter/internal/mcp"
	"github.com/worldcrafter/worldcrafter/internal/observability"
	"github.com/worldcrafter/worldcrafter/internal/store"
	"github.com/worldcrafter/worldcrafter/internal/world"
	"github.com/worldcrafter/worldcrafter/internal/world/postgres"
	"github.com/worldcrafter/worldcrafter/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewMCPCmd creates the mcp subcommand.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve world-management tools over MCP stdio",
		Long: `Start the MCP server on stdin/stdout. Tool calls act as the
configured user identity; metrics and health probes are served on the
observability address when one is configured.`,
		RunE: runMCP,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string (or DATABASE_URL)")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("user-id", "", "caller identity (ULID) for tool invocations")

	return cmd
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}
	if cfg.MCP.UserID == "" {
		return oops.Code("CONFIG_INVALID").Errorf("mcp user ID is required (--user-id or mcp.user_id)")
	}
	caller, err := ulid.Parse(cfg.MCP.UserID)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("user_id", cfg.MCP.UserID).Wrapf(err, "parsing mcp user ID")
	}

	// Logs go to stderr; stdout belongs to the MCP transport.
	logging.SetDefault("worldcrafter", version, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	svc := world.NewService(world.ServiceConfig{
		WorldRepo:     postgres.NewWorldRepository(pool),
		LocationRepo:  postgres.NewLocationRepository(pool),
		CharacterRepo: postgres.NewCharacterRepository(pool),
		ActivityRepo:  postgres.NewActivityRepository(pool),
		Transactor:    postgres.NewTransactor(pool),
	})

	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.Observability.Addr != "" {
		obsServer = observability.NewServer(cfg.Observability.Addr, func() bool {
			return pool.Ping(ctx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	srv, err := mcpserver.New(svc, caller, metrics)
	if err != nil {
		return err
	}

	runErr := srv.Run(ctx)

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("error stopping observability server", "error", stopErr)
		}
	}

	slog.Info("shutdown complete")
	return runErr
}

// monitorServerErrors cancels the context when a background server
// reports an error, so a failing sidecar takes the process down
// gracefully.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			errutil.LogError(slog.Default(), "server error, triggering shutdown", err,
				"server", serverName,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
