// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// WorldRepository manages world persistence.
type WorldRepository interface {
	// Get retrieves a world by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*World, error)

	// GetBySlug retrieves a world by its slug.
	GetBySlug(ctx context.Context, slug string) (*World, error)

	// Create persists a new world.
	Create(ctx context.Context, w *World) error

	// Update applies a partial update and returns the updated world.
	Update(ctx context.Context, id ulid.ULID, in UpdateWorldInput) (*World, error)

	// Delete removes a world; the store cascades to its locations and
	// characters.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByOwner returns all worlds owned by a user, most recent first.
	ListByOwner(ctx context.Context, userID ulid.ULID) ([]*World, error)
}

// LocationRepository manages location persistence.
type LocationRepository interface {
	ParentLookup

	// GetParentIDForUpdate is GetParentID with a row lock held until the
	// surrounding transaction ends. The re-parent cycle check walks the
	// ancestor chain through this variant so two concurrent re-parents
	// touching the same chain serialize instead of racing.
	GetParentIDForUpdate(ctx context.Context, id ulid.ULID) (*ulid.ULID, error)

	// Get retrieves a location by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Location, error)

	// GetBySlug retrieves a location by its compound (worldID, slug) key
	// with parent and children attached.
	GetBySlug(ctx context.Context, worldID ulid.ULID, slug string) (*LocationNode, error)

	// Create persists a new location. A unique-violation on
	// (world_id, slug) surfaces as ErrSlugTaken so the caller can retry
	// with a regenerated slug.
	Create(ctx context.Context, loc *Location) error

	// Update applies a partial update: only supplied fields overwrite
	// existing values. Returns the updated location.
	Update(ctx context.Context, id ulid.ULID, in UpdateLocationInput) (*Location, error)

	// Delete removes a location; the store's cascade rule removes all
	// descendants.
	Delete(ctx context.Context, id ulid.ULID) error

	// List returns locations matching the filters, most recently
	// created first.
	List(ctx context.Context, filters LocationFilters) ([]*LocationNode, error)

	// Search executes a ranked full-text query (tsquery syntax) scoped
	// to a world, capped at SearchResultCap rows.
	Search(ctx context.Context, worldID ulid.ULID, tsquery string) ([]*SearchResult, error)
}

// CharacterRepository manages character persistence.
type CharacterRepository interface {
	// Get retrieves a character by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Character, error)

	// Create persists a new character.
	Create(ctx context.Context, c *Character) error

	// Update applies a partial update and returns the updated character.
	Update(ctx context.Context, id ulid.ULID, in UpdateCharacterInput) (*Character, error)

	// Delete removes a character.
	Delete(ctx context.Context, id ulid.ULID) error

	// List returns characters matching the filters, most recently
	// created first.
	List(ctx context.Context, filters CharacterFilters) ([]*Character, error)
}

// ActivityRepository manages the append-only audit log.
type ActivityRepository interface {
	// Append persists an audit record.
	Append(ctx context.Context, a *Activity) error

	// ListByWorld returns the most recent activities for a world.
	ListByWorld(ctx context.Context, worldID ulid.ULID, limit int) ([]*Activity, error)
}

// Transactor runs a function inside a single store transaction.
// Repository calls made with the context it passes to fn participate in
// that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
