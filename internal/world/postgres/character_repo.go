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

const characterColumns = `id, world_id, name, slug, role, description, location_id, image_url, created_at, updated_at`

// CharacterRepository implements world.CharacterRepository using PostgreSQL.
type CharacterRepository struct {
	db DB
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(db DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Get retrieves a character by ID.
func (r *CharacterRepository) Get(ctx context.Context, id ulid.ULID) (*world.Character, error) {
	row := q(ctx, r.db).QueryRow(ctx, `
		SELECT `+characterColumns+` FROM characters WHERE id = $1
	`, id.String())
	c, err := scanCharacterRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CHARACTER_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get character").With("id", id.String()).Wrap(err)
	}
	return c, nil
}

// Create persists a new character.
func (r *CharacterRepository) Create(ctx context.Context, c *world.Character) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID.String(), c.WorldID.String(), c.Name, c.Slug, c.Role, c.Description,
		ulidToStringPtr(c.LocationID), c.ImageURL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("CHARACTER_SLUG_TAKEN").With("slug", c.Slug).Wrap(world.ErrSlugTaken)
		}
		return oops.With("operation", "create character").With("id", c.ID.String()).Wrap(err)
	}
	return nil
}

// Update applies a partial update and returns the updated character.
func (r *CharacterRepository) Update(ctx context.Context, id ulid.ULID, in world.UpdateCharacterInput) (*world.Character, error) {
	set := []string{"updated_at = $2"}
	args := []any{id.String(), time.Now().UTC()}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Role != nil {
		add("role", *in.Role)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Location.Set {
		add("location_id", ulidToStringPtr(in.Location.ID))
	}
	if in.ImageURL != nil {
		add("image_url", *in.ImageURL)
	}

	row := q(ctx, r.db).QueryRow(ctx, `
		UPDATE characters SET `+strings.Join(set, ", ")+`
		WHERE id = $1
		RETURNING `+characterColumns, args...)
	c, err := scanCharacterRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CHARACTER_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "update character").With("id", id.String()).Wrap(err)
	}
	return c, nil
}

// Delete removes a character by ID.
func (r *CharacterRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := q(ctx, r.db).Exec(ctx, `DELETE FROM characters WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete character").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CHARACTER_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// List returns characters matching the filters, most recently created first.
func (r *CharacterRepository) List(ctx context.Context, filters world.CharacterFilters) ([]*world.Character, error) {
	where := []string{"world_id = $1"}
	args := []any{filters.WorldID.String()}
	if filters.LocationID != nil {
		args = append(args, filters.LocationID.String())
		where = append(where, fmt.Sprintf("location_id = $%d", len(args)))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = world.DefaultLimit
	}
	if limit > world.MaxLimit {
		limit = world.MaxLimit
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf("LIMIT $%d", len(args))
	args = append(args, filters.Offset)
	offsetClause := fmt.Sprintf("OFFSET $%d", len(args))

	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT `+characterColumns+` FROM characters
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
		`+limitClause+" "+offsetClause, args...)
	if err != nil {
		return nil, oops.With("operation", "list characters").With("world_id", filters.WorldID.String()).Wrap(err)
	}
	defer rows.Close()

	chars := make([]*world.Character, 0)
	for rows.Next() {
		var c world.Character
		var idStr, worldIDStr string
		var locStr *string
		if err := rows.Scan(&idStr, &worldIDStr, &c.Name, &c.Slug, &c.Role, &c.Description,
			&locStr, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, oops.With("operation", "scan character").Wrap(err)
		}
		if err := parseCharacterIDs(&c, idStr, worldIDStr, locStr); err != nil {
			return nil, err
		}
		chars = append(chars, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate characters").Wrap(err)
	}
	return chars, nil
}

func scanCharacterRow(row pgx.Row) (*world.Character, error) {
	var c world.Character
	var idStr, worldIDStr string
	var locStr *string
	err := row.Scan(&idStr, &worldIDStr, &c.Name, &c.Slug, &c.Role, &c.Description,
		&locStr, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := parseCharacterIDs(&c, idStr, worldIDStr, locStr); err != nil {
		return nil, err
	}
	return &c, nil
}

func parseCharacterIDs(c *world.Character, idStr, worldIDStr string, locStr *string) error {
	var err error
	c.ID, err = ulid.Parse(idStr)
	if err != nil {
		return oops.With("operation", "parse character id").With("id", idStr).Wrap(err)
	}
	c.WorldID, err = ulid.Parse(worldIDStr)
	if err != nil {
		return oops.With("operation", "parse world id").With("world_id", worldIDStr).Wrap(err)
	}
	c.LocationID, err = parseOptionalULID(locStr, "location_id")
	if err != nil {
		return err
	}
	return nil
}

// Compile-time interface check.
var _ world.CharacterRepository = (*CharacterRepository)(nil)
