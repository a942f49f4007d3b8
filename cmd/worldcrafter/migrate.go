// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/worldcrafter/worldcrafter/internal/config"
	"github.com/worldcrafter/worldcrafter/internal/store"
)

// migrateConfig holds flags for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
	force int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	mc := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending database migrations against the PostgreSQL database.
By default all pending migrations run; --steps and --down narrow or
reverse the operation, and --force repairs a dirty migration state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, mc)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string (or DATABASE_URL)")
	cmd.Flags().BoolVar(&mc.down, "down", false, "roll back all migrations")
	cmd.Flags().IntVar(&mc.steps, "steps", 0, "apply exactly n migrations (negative rolls back)")
	cmd.Flags().IntVar(&mc.force, "force", -1, "force the schema version without running migrations")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string, mc *migrateConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Debug("error closing migrator", "error", closeErr)
		}
	}()

	switch {
	case mc.force >= 0:
		cmd.Printf("Forcing schema version %d...\n", mc.force)
		err = migrator.Force(mc.force)
	case mc.down:
		cmd.Println("Rolling back all migrations...")
		err = migrator.Down()
	case mc.steps != 0:
		cmd.Printf("Applying %d migration step(s)...\n", mc.steps)
		err = migrator.Steps(mc.steps)
	default:
		cmd.Println("Running migrations...")
		err = migrator.Up()
	}

	if err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Migration finished but schema version %d is dirty\n", version)
		return nil
	}
	cmd.Printf("Migrations completed successfully (version %d)\n", version)
	return nil
}
