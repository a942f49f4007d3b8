// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

// ActivityRepository implements world.ActivityRepository using PostgreSQL.
// The activities table is append-only; rows carry no foreign key to the
// entity they describe, so audit records outlive deleted entities.
type ActivityRepository struct {
	db DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append persists an audit record.
func (r *ActivityRepository) Append(ctx context.Context, a *world.Activity) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO activities (id, world_id, user_id, entity_type, entity_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID.String(), a.WorldID.String(), a.UserID.String(), string(a.EntityType),
		a.EntityID.String(), string(a.Action), a.Metadata, a.CreatedAt)
	if err != nil {
		return oops.With("operation", "append activity").With("entity_id", a.EntityID.String()).Wrap(err)
	}
	return nil
}

// ListByWorld returns the most recent activities for a world.
func (r *ActivityRepository) ListByWorld(ctx context.Context, worldID ulid.ULID, limit int) ([]*world.Activity, error) {
	if limit <= 0 {
		limit = world.DefaultLimit
	}
	if limit > world.MaxLimit {
		limit = world.MaxLimit
	}
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT id, world_id, user_id, entity_type, entity_id, action, metadata, created_at
		FROM activities WHERE world_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, worldID.String(), limit)
	if err != nil {
		return nil, oops.With("operation", "list activities").With("world_id", worldID.String()).Wrap(err)
	}
	defer rows.Close()

	activities := make([]*world.Activity, 0)
	for rows.Next() {
		var a world.Activity
		var idStr, worldIDStr, userIDStr, entityIDStr, entityType, action string
		if err := rows.Scan(&idStr, &worldIDStr, &userIDStr, &entityType, &entityIDStr,
			&action, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan activity").Wrap(err)
		}
		if a.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse activity id").With("id", idStr).Wrap(err)
		}
		if a.WorldID, err = ulid.Parse(worldIDStr); err != nil {
			return nil, oops.With("operation", "parse world id").With("world_id", worldIDStr).Wrap(err)
		}
		if a.UserID, err = ulid.Parse(userIDStr); err != nil {
			return nil, oops.With("operation", "parse user id").With("user_id", userIDStr).Wrap(err)
		}
		if a.EntityID, err = ulid.Parse(entityIDStr); err != nil {
			return nil, oops.With("operation", "parse entity id").With("entity_id", entityIDStr).Wrap(err)
		}
		a.EntityType = world.EntityType(entityType)
		a.Action = world.Action(action)
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate activities").Wrap(err)
	}
	return activities, nil
}

// Compile-time interface check.
var _ world.ActivityRepository = (*ActivityRepository)(nil)
