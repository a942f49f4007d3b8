// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Character is a person or creature within a world, optionally placed
// at a location. Deleting the location detaches the character rather
// than deleting it.
type Character struct {
	ID          ulid.ULID
	WorldID     ulid.ULID
	Name        string
	Slug        string
	Role        string
	Description string
	LocationID  *ulid.ULID
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCharacterInput carries the caller-supplied fields for character
// creation.
type CreateCharacterInput struct {
	WorldID     ulid.ULID
	Name        string
	Role        string
	Description string
	LocationID  *ulid.ULID
	ImageURL    string
}

// UpdateCharacterInput carries a partial character update. Nil fields
// are left untouched; Location follows ParentUpdate tri-state semantics.
type UpdateCharacterInput struct {
	Name        *string
	Role        *string
	Description *string
	Location    ParentUpdate
	ImageURL    *string
}

// CharacterFilters narrows a character listing.
type CharacterFilters struct {
	WorldID    ulid.ULID
	LocationID *ulid.ULID
	Limit      int
	Offset     int
}
