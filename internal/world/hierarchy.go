// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ParentLookup resolves a location's parent link. Implemented by
// LocationRepository; split out so the walk can be tested in isolation.
type ParentLookup interface {
	// GetParentID returns the parent of the given location, or nil for
	// a root. Returns ErrNotFound if the location does not exist.
	GetParentID(ctx context.Context, id ulid.ULID) (*ulid.ULID, error)
}

// ParentLookupFunc adapts a plain function to ParentLookup, so a caller
// can point the walk at a specific lookup variant.
type ParentLookupFunc func(ctx context.Context, id ulid.ULID) (*ulid.ULID, error)

func (f ParentLookupFunc) GetParentID(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	return f(ctx, id)
}

// WouldCreateCircularHierarchy reports whether assigning candidateParent
// as the parent of locationID would make locationID its own ancestor.
//
// A nil candidate (detaching) is always safe. Otherwise the walk follows
// parent links upward from the candidate, one point lookup per level,
// with a visited set seeded with locationID. Revisiting any node means a
// cycle. An ancestor deleted mid-walk terminates the chain and is
// treated as reaching a root.
func WouldCreateCircularHierarchy(ctx context.Context, lookup ParentLookup, locationID ulid.ULID, candidateParent *ulid.ULID) (bool, error) {
	if candidateParent == nil {
		return false, nil
	}
	if *candidateParent == locationID {
		return true, nil
	}

	visited := map[ulid.ULID]struct{}{locationID: {}}
	current := *candidateParent
	for {
		if _, seen := visited[current]; seen {
			return true, nil
		}
		visited[current] = struct{}{}

		parent, err := lookup.GetParentID(ctx, current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, oops.With("operation", "walk ancestor chain").With("location_id", current.String()).Wrap(err)
		}
		if parent == nil {
			return false, nil
		}
		current = *parent
	}
}
