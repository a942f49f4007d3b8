// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/worldcrafter/worldcrafter/internal/config"
	"github.com/worldcrafter/worldcrafter/internal/store"
	"github.com/worldcrafter/worldcrafter/internal/world"
	"github.com/worldcrafter/worldcrafter/internal/world/postgres"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// Well-known IDs for demo data. Fixed IDs make the seed idempotent:
// re-running hits unique violations and skips.
const (
	seedUserID    = "01J3WC0000000000000000000A"
	seedWorldID   = "01J3WC0000000000000000000B"
	seedKingdomID = "01J3WC0000000000000000000C"
	seedCityID    = "01J3WC0000000000000000000D"
	seedTavernID  = "01J3WC0000000000000000000E"
	seedInnkeepID = "01J3WC0000000000000000000F"
)

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	sc := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo world with example locations",
		Long: `Creates a demo world with a small location hierarchy and a character.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, sc)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string (or DATABASE_URL)")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, sc *seedConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck // migration error takes precedence
		return err
	}
	if err := migrator.Close(); err != nil {
		slog.Debug("error closing migrator", "error", err)
	}

	worldRepo := postgres.NewWorldRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	characterRepo := postgres.NewCharacterRepository(pool)

	userID := ulid.MustParse(seedUserID)
	now := time.Now().UTC()

	demoWorld := &world.World{
		ID:          ulid.MustParse(seedWorldID),
		UserID:      userID,
		Name:        "Eldoria",
		Slug:        "eldoria-demo00",
		Description: "A demonstration fantasy world seeded with a small location hierarchy.",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := createIgnoringDuplicate(ctx, cmd, "world", demoWorld.Name, func() error {
		return worldRepo.Create(ctx, demoWorld)
	}); err != nil {
		return err
	}

	kingdomID := ulid.MustParse(seedKingdomID)
	cityID := ulid.MustParse(seedCityID)

	locations := []*world.Location{
		{
			ID:          kingdomID,
			WorldID:     demoWorld.ID,
			Name:        "Kingdom of Eldoria",
			Slug:        "kingdom-of-eldoria-demo00",
			Type:        "kingdom",
			Description: "A sprawling realm of misty highlands and river valleys.",
			Geography:   "Highlands in the north, fertile river valleys in the south.",
			Government:  "Hereditary monarchy under House Altharion.",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          cityID,
			WorldID:     demoWorld.ID,
			Name:        "Silverhold",
			Slug:        "silverhold-demo00",
			Type:        "city",
			ParentID:    &kingdomID,
			Description: "The capital city, built around ancient silver mines.",
			Population:  "Roughly forty thousand souls.",
			Economy:     "Silver mining, smithing, and river trade.",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          ulid.MustParse(seedTavernID),
			WorldID:     demoWorld.ID,
			Name:        "The Gilded Griffin",
			Slug:        "the-gilded-griffin-demo00",
			Type:        "tavern",
			ParentID:    &cityID,
			Description: "A rowdy tavern near the mine gates, famous for spiced cider.",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, loc := range locations {
		if err := createIgnoringDuplicate(ctx, cmd, "location", loc.Name, func() error {
			return locationRepo.Create(ctx, loc)
		}); err != nil {
			return err
		}
	}

	tavernID := ulid.MustParse(seedTavernID)
	innkeep := &world.Character{
		ID:          ulid.MustParse(seedInnkeepID),
		WorldID:     demoWorld.ID,
		Name:        "Marta Coppervein",
		Slug:        "marta-coppervein-demo00",
		Role:        "innkeeper",
		Description: "Proprietor of the Gilded Griffin and collector of miners' gossip.",
		LocationID:  &tavernID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := createIgnoringDuplicate(ctx, cmd, "character", innkeep.Name, func() error {
		return characterRepo.Create(ctx, innkeep)
	}); err != nil {
		return err
	}

	cmd.Println("Seed completed successfully")
	return nil
}

// createIgnoringDuplicate runs a create and treats an existing row as
// success, keeping the seed idempotent.
func createIgnoringDuplicate(_ context.Context, cmd *cobra.Command, kind, name string, create func() error) error {
	err := create()
	if err == nil {
		cmd.Printf("Created %s %q\n", kind, name)
		return nil
	}
	if errors.Is(err, world.ErrSlugTaken) {
		cmd.Printf("%s %q already exists, skipping\n", kind, name)
		return nil
	}
	return oops.Code("SEED_FAILED").With("kind", kind).With("name", name).Wrap(err)
}
