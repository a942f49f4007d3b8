// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import "errors"

// Sentinel errors for the operation taxonomy. Callers pattern-match on
// the message substrings, so the wording is part of the contract.
var (
	// ErrNotAuthenticated is returned when no caller identity is supplied.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is returned when the caller is authenticated
	// but does not own the world being touched.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a world, location, or character is absent.
	ErrNotFound = errors.New("not found")

	// ErrParentNotFound is returned when a supplied parent location does
	// not exist or belongs to a different world.
	ErrParentNotFound = errors.New("parent location not found")

	// ErrCircularHierarchy is returned when a re-parent would make a
	// location its own ancestor.
	ErrCircularHierarchy = errors.New("circular hierarchy")

	// ErrSlugTaken is returned by repositories on a slug unique-violation.
	// The service treats it as retryable and regenerates the slug.
	ErrSlugTaken = errors.New("slug already taken")
)
