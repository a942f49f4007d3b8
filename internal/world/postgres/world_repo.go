// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

const worldColumns = `id, user_id, name, slug, description, created_at, updated_at`

// WorldRepository implements world.WorldRepository using PostgreSQL.
type WorldRepository struct {
	db DB
}

// NewWorldRepository creates a new WorldRepository.
func NewWorldRepository(db DB) *WorldRepository {
	return &WorldRepository{db: db}
}

// Get retrieves a world by ID.
func (r *WorldRepository) Get(ctx context.Context, id ulid.ULID) (*world.World, error) {
	row := q(ctx, r.db).QueryRow(ctx, `
		SELECT `+worldColumns+` FROM worlds WHERE id = $1
	`, id.String())
	w, err := scanWorldRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("WORLD_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world").With("id", id.String()).Wrap(err)
	}
	return w, nil
}

// GetBySlug retrieves a world by its slug.
func (r *WorldRepository) GetBySlug(ctx context.Context, slug string) (*world.World, error) {
	row := q(ctx, r.db).QueryRow(ctx, `
		SELECT `+worldColumns+` FROM worlds WHERE slug = $1
	`, slug)
	w, err := scanWorldRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("WORLD_NOT_FOUND").With("slug", slug).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world by slug").With("slug", slug).Wrap(err)
	}
	return w, nil
}

// Create persists a new world. A unique-violation on the slug maps to
// world.ErrSlugTaken.
func (r *WorldRepository) Create(ctx context.Context, w *world.World) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO worlds (`+worldColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID.String(), w.UserID.String(), w.Name, w.Slug, w.Description, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("WORLD_SLUG_TAKEN").With("slug", w.Slug).Wrap(world.ErrSlugTaken)
		}
		return oops.With("operation", "create world").With("id", w.ID.String()).Wrap(err)
	}
	return nil
}

// Update applies a partial update and returns the updated world.
func (r *WorldRepository) Update(ctx context.Context, id ulid.ULID, in world.UpdateWorldInput) (*world.World, error) {
	set := []string{"updated_at = $2"}
	args := []any{id.String(), time.Now().UTC()}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}

	row := q(ctx, r.db).QueryRow(ctx, `
		UPDATE worlds SET `+strings.Join(set, ", ")+`
		WHERE id = $1
		RETURNING `+worldColumns, args...)
	w, err := scanWorldRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("WORLD_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "update world").With("id", id.String()).Wrap(err)
	}
	return w, nil
}

// Delete removes a world; the schema cascades to locations, characters,
// and activities.
func (r *WorldRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := q(ctx, r.db).Exec(ctx, `DELETE FROM worlds WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete world").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("WORLD_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByOwner returns all worlds owned by a user, most recent first.
func (r *WorldRepository) ListByOwner(ctx context.Context, userID ulid.ULID) ([]*world.World, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT `+worldColumns+` FROM worlds
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.With("operation", "list worlds").With("user_id", userID.String()).Wrap(err)
	}
	defer rows.Close()

	worlds := make([]*world.World, 0)
	for rows.Next() {
		var w world.World
		var idStr, userIDStr string
		if err := rows.Scan(&idStr, &userIDStr, &w.Name, &w.Slug, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, oops.With("operation", "scan world").Wrap(err)
		}
		if err := parseWorldIDs(&w, idStr, userIDStr); err != nil {
			return nil, err
		}
		worlds = append(worlds, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate worlds").Wrap(err)
	}
	return worlds, nil
}

func scanWorldRow(row pgx.Row) (*world.World, error) {
	var w world.World
	var idStr, userIDStr string
	err := row.Scan(&idStr, &userIDStr, &w.Name, &w.Slug, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := parseWorldIDs(&w, idStr, userIDStr); err != nil {
		return nil, err
	}
	return &w, nil
}

func parseWorldIDs(w *world.World, idStr, userIDStr string) error {
	var err error
	w.ID, err = ulid.Parse(idStr)
	if err != nil {
		return oops.With("operation", "parse world id").With("id", idStr).Wrap(err)
	}
	w.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return oops.With("operation", "parse user id").With("user_id", userIDStr).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ world.WorldRepository = (*WorldRepository)(nil)
