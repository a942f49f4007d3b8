// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

// Transactor implements world.Transactor. It stores the active pgx.Tx in
// context so repository methods called inside fn share one transaction.
// A transaction alone does not serialize conflicting writers under READ
// COMMITTED; callers that need that, like the re-parent cycle check, must
// also take row locks (GetParentIDForUpdate) on the rows they read.
type Transactor struct {
	db DB
}

// NewTransactor creates a Transactor backed by the given pool.
func NewTransactor(db DB) *Transactor {
	return &Transactor{db: db}
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// If fn returns nil, the transaction is committed. Otherwise it is rolled back.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ world.Transactor = (*Transactor)(nil)
