// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package postgres implements the world repository interfaces using
// PostgreSQL via pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DB is the subset of *pgxpool.Pool the repositories use. pgxmock's
// PgxPoolIface satisfies it too, which keeps the repositories testable
// without a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier abstracts query execution over a pool or an active transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey carries the active pgx.Tx through context, set by Transactor.
type txKey struct{}

// q returns the transaction stored in ctx if there is one, else db.
// Repository methods route every statement through this so they
// participate in a surrounding Transactor.InTransaction call.
func q(ctx context.Context, db DB) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer into a ULID
// pointer. Returns nil if the input is nil.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}
