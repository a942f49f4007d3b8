// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package world contains the world model domain types and logic.
package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// World is the top-level container for an author's fictional setting.
// All access control flows through World ownership: a caller may touch
// a Location or Character only if they own its World.
type World struct {
	ID          ulid.ULID
	UserID      ulid.ULID
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateWorldInput carries the caller-supplied fields for world creation.
type CreateWorldInput struct {
	Name        string
	Description string
}

// UpdateWorldInput carries a partial world update. Nil fields are left
// untouched.
type UpdateWorldInput struct {
	Name        *string
	Description *string
}
