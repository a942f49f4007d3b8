// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/worldcrafter/worldcrafter/internal/config"
	"github.com/worldcrafter/worldcrafter/internal/store"
)

// Default timeout for status checks.
const defaultStatusTimeout = 10 * time.Second

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity and schema version",
		RunE:  runStatus,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string (or DATABASE_URL)")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultStatusTimeout)
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	cmd.Println("Database: reachable")

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Debug("error closing migrator", "error", closeErr)
		}
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		cmd.Println("Schema: no migrations applied")
	case dirty:
		cmd.Printf("Schema: version %d (dirty)\n", version)
	default:
		cmd.Printf("Schema: version %d\n", version)
	}

	return nil
}
