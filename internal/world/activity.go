// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EntityType identifies what kind of entity an activity refers to.
type EntityType string

// Tracked entity types.
const (
	EntityWorld     EntityType = "world"
	EntityLocation  EntityType = "location"
	EntityCharacter EntityType = "character"
)

// Action identifies what happened to an entity.
type Action string

// Audit actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Activity is an immutable audit record appended on every mutation of a
// tracked entity. Activities are never deleted when their referenced
// entity is deleted, for audit continuity.
type Activity struct {
	ID         ulid.ULID
	WorldID    ulid.ULID
	UserID     ulid.ULID
	EntityType EntityType
	EntityID   ulid.ULID
	Action     Action
	Metadata   map[string]string
	CreatedAt  time.Time
}
