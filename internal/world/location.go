// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Coordinates is an arbitrary 2D position on a world map.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Location represents a place within a world. Locations form a tree via
// ParentID; the parent graph must stay acyclic and parent and child must
// belong to the same world.
type Location struct {
	ID          ulid.ULID
	WorldID     ulid.ULID
	Name        string
	Slug        string
	Type        string
	ParentID    *ulid.ULID
	Description string
	Geography   string
	Climate     string
	Population  string
	Government  string
	Economy     string
	Culture     string
	Coordinates *Coordinates
	Attributes  map[string]string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationRef is the slim form of a location attached to hierarchy
// expansions and search results for breadcrumb display.
type LocationRef struct {
	ID   ulid.ULID
	Name string
	Slug string
	Type string
}

// LocationNode is a location with its immediate parent and children
// attached, one level each direction.
type LocationNode struct {
	Location
	Parent   *LocationRef
	Children []LocationRef
}

// SearchResult is a location matched by full-text search, with its
// relevance rank and parent breadcrumb.
type SearchResult struct {
	Location
	Rank   float64
	Parent *LocationRef
}

// CreateLocationInput carries the caller-supplied fields for location
// creation. WorldID and Name are required; everything else is optional.
type CreateLocationInput struct {
	WorldID     ulid.ULID
	Name        string
	Type        string
	ParentID    *ulid.ULID
	Description string
	Geography   string
	Climate     string
	Population  string
	Government  string
	Economy     string
	Culture     string
	Coordinates *Coordinates
	Attributes  map[string]string
	ImageURL    string
}

// ParentUpdate expresses the three states of a parent change in a
// partial update: not supplied, explicitly cleared, or set to a new
// parent.
type ParentUpdate struct {
	// Set reports whether the update supplies a parent change at all.
	Set bool
	// ID is the new parent, or nil to detach the location from its
	// parent. Ignored unless Set is true.
	ID *ulid.ULID
}

// SetParent returns a ParentUpdate assigning the given parent.
func SetParent(id ulid.ULID) ParentUpdate {
	return ParentUpdate{Set: true, ID: &id}
}

// ClearParent returns a ParentUpdate detaching the location.
func ClearParent() ParentUpdate {
	return ParentUpdate{Set: true}
}

// UpdateLocationInput carries a partial location update. Nil fields are
// left untouched; Parent follows ParentUpdate tri-state semantics. Slug
// and WorldID are immutable after creation.
type UpdateLocationInput struct {
	Name        *string
	Type        *string
	Parent      ParentUpdate
	Description *string
	Geography   *string
	Climate     *string
	Population  *string
	Government  *string
	Economy     *string
	Culture     *string
	Coordinates *Coordinates
	Attributes  map[string]string
	ImageURL    *string
}

// Empty reports whether the update supplies no fields at all.
func (in UpdateLocationInput) Empty() bool {
	return in.Name == nil && in.Type == nil && !in.Parent.Set &&
		in.Description == nil && in.Geography == nil && in.Climate == nil &&
		in.Population == nil && in.Government == nil && in.Economy == nil &&
		in.Culture == nil && in.Coordinates == nil && in.Attributes == nil &&
		in.ImageURL == nil
}

// LocationFilters narrows a location listing.
type LocationFilters struct {
	WorldID ulid.ULID
	// Type filters on exact type match when non-empty.
	Type string
	// Parent filters on parent when Set; a nil ID selects root-level
	// locations only.
	Parent ParentUpdate
	// Limit caps the page size; non-positive uses DefaultLimit.
	Limit  int
	Offset int
	// IncludeHierarchy attaches each result's immediate parent and
	// children, one level each direction.
	IncludeHierarchy bool
}

// Pagination defaults for listings.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// SearchResultCap bounds how many rows a full-text search returns
// regardless of how many match.
const SearchResultCap = 50
