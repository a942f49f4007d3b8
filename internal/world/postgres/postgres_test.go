// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/worldcrafter/worldcrafter/internal/store"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// testCleanup is called to terminate the container after tests.
var testCleanup func()

// TestMain sets up a PostgreSQL testcontainer for integration tests.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("worldcrafter_test"),
		tcpostgres.WithUsername("worldcrafter"),
		tcpostgres.WithPassword("worldcrafter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create pool: " + err.Error())
	}

	testPool = pool
	testCleanup = func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	code := m.Run()

	testCleanup()

	os.Exit(code)
}
