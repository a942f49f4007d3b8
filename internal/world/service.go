// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// slugAttempts bounds how many times a create regenerates its slug
// after a unique-violation before giving up.
const slugAttempts = 3

// slugRetryBackoff is the pause between slug regeneration attempts.
const slugRetryBackoff = 10 * time.Millisecond

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	WorldRepo     WorldRepository
	LocationRepo  LocationRepository
	CharacterRepo CharacterRepository
	ActivityRepo  ActivityRepository
	Transactor    Transactor
}

// Service orchestrates world, location, and character operations. Every
// operation requires a caller identity and authorizes through World
// ownership before touching the store; every mutation appends an audit
// Activity.
type Service struct {
	worlds     WorldRepository
	locations  LocationRepository
	characters CharacterRepository
	activities ActivityRepository
	transactor Transactor
}

// NewService creates a new Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		worlds:     cfg.WorldRepo,
		locations:  cfg.LocationRepo,
		characters: cfg.CharacterRepo,
		activities: cfg.ActivityRepo,
		transactor: cfg.Transactor,
	}
}

// authorizeWorld loads a world and checks the caller owns it.
func (s *Service) authorizeWorld(ctx context.Context, callerID, worldID ulid.ULID) (*World, error) {
	w, err := s.worlds.Get(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if w.UserID != callerID {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

func authenticate(callerID ulid.ULID) error {
	if callerID.IsZero() {
		return ErrNotAuthenticated
	}
	return nil
}

// recordActivity appends an audit record. Append failures never fail the
// mutation they describe; they are logged and dropped.
func (s *Service) recordActivity(ctx context.Context, a *Activity) {
	a.ID = ulid.Make()
	a.CreatedAt = time.Now().UTC()
	if err := s.activities.Append(ctx, a); err != nil {
		slog.Warn("failed to append activity",
			"world_id", a.WorldID.String(),
			"entity_type", string(a.EntityType),
			"entity_id", a.EntityID.String(),
			"action", string(a.Action),
			"error", err)
	}
}

// withSlugRetry runs fn, regenerating and retrying on slug collision.
// fn receives the attempt's slug and must return ErrSlugTaken (possibly
// wrapped) when the store rejects it.
func withSlugRetry(ctx context.Context, name string, fn func(ctx context.Context, slug string) error) error {
	backoff := retry.WithMaxRetries(slugAttempts-1, retry.NewConstant(slugRetryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx, GenerateSlug(name))
		if errors.Is(err, ErrSlugTaken) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// CreateWorld creates a new world owned by the caller.
func (s *Service) CreateWorld(ctx context.Context, callerID ulid.ULID, in CreateWorldInput) (*World, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := ValidateTextField("description", in.Description); err != nil {
		return nil, err
	}

	var w *World
	err := withSlugRetry(ctx, in.Name, func(ctx context.Context, slug string) error {
		now := time.Now().UTC()
		w = &World{
			ID:          ulid.Make(),
			UserID:      callerID,
			Name:        in.Name,
			Slug:        slug,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.worlds.Create(ctx, w)
	})
	if err != nil {
		return nil, oops.Wrapf(err, "create world %q", in.Name)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    w.ID,
		UserID:     callerID,
		EntityType: EntityWorld,
		EntityID:   w.ID,
		Action:     ActionCreated,
		Metadata:   map[string]string{"world_name": w.Name},
	})
	return w, nil
}

// GetWorld retrieves a world the caller owns.
func (s *Service) GetWorld(ctx context.Context, callerID, worldID ulid.ULID) (*World, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	return s.authorizeWorld(ctx, callerID, worldID)
}

// GetWorldBySlug retrieves a world by its slug. A world owned by someone
// else reports ErrNotFound rather than ErrPermissionDenied: slugs are
// global, and a denial would confirm the slug exists.
func (s *Service) GetWorldBySlug(ctx context.Context, callerID ulid.ULID, slug string) (*World, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	w, err := s.worlds.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if w.UserID != callerID {
		return nil, oops.With("slug", slug).Wrap(ErrNotFound)
	}
	return w, nil
}

// ListWorlds returns all worlds owned by the caller, most recent first.
func (s *Service) ListWorlds(ctx context.Context, callerID ulid.ULID) ([]*World, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	worlds, err := s.worlds.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, oops.Wrapf(err, "list worlds for %s", callerID)
	}
	return worlds, nil
}

// UpdateWorld applies a partial update to a world the caller owns.
func (s *Service) UpdateWorld(ctx context.Context, callerID, worldID ulid.ULID, in UpdateWorldInput) (*World, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, worldID); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := ValidateName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := ValidateTextField("description", *in.Description); err != nil {
			return nil, err
		}
	}

	w, err := s.worlds.Update(ctx, worldID, in)
	if err != nil {
		return nil, oops.Wrapf(err, "update world %s", worldID)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    w.ID,
		UserID:     callerID,
		EntityType: EntityWorld,
		EntityID:   w.ID,
		Action:     ActionUpdated,
		Metadata:   map[string]string{"world_name": w.Name},
	})
	return w, nil
}

// DeleteWorld removes a world the caller owns. The store cascades to its
// locations, characters, and activities.
func (s *Service) DeleteWorld(ctx context.Context, callerID, worldID ulid.ULID) error {
	if err := authenticate(callerID); err != nil {
		return err
	}
	if _, err := s.authorizeWorld(ctx, callerID, worldID); err != nil {
		return err
	}
	if err := s.worlds.Delete(ctx, worldID); err != nil {
		return oops.Wrapf(err, "delete world %s", worldID)
	}
	return nil
}

// CreateLocation creates a new location in a world the caller owns. A
// supplied parent must exist in the same world; no cycle check is needed
// at create time since a new node cannot be anyone's ancestor yet.
func (s *Service) CreateLocation(ctx context.Context, callerID ulid.ULID, in CreateLocationInput) (*Location, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if err := validateLocationFields(in); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, in.WorldID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.locations.Get(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, oops.Wrapf(err, "look up parent %s", *in.ParentID)
		}
		if parent.WorldID != in.WorldID {
			return nil, ErrParentNotFound
		}
	}

	var loc *Location
	err := withSlugRetry(ctx, in.Name, func(ctx context.Context, slug string) error {
		now := time.Now().UTC()
		loc = &Location{
			ID:          ulid.Make(),
			WorldID:     in.WorldID,
			Name:        in.Name,
			Slug:        slug,
			Type:        in.Type,
			ParentID:    in.ParentID,
			Description: in.Description,
			Geography:   in.Geography,
			Climate:     in.Climate,
			Population:  in.Population,
			Government:  in.Government,
			Economy:     in.Economy,
			Culture:     in.Culture,
			Coordinates: in.Coordinates,
			Attributes:  in.Attributes,
			ImageURL:    in.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.locations.Create(ctx, loc)
	})
	if err != nil {
		return nil, oops.Wrapf(err, "create location %q in world %s", in.Name, in.WorldID)
	}

	meta := map[string]string{"location_name": loc.Name}
	if loc.ParentID != nil {
		meta["parent_id"] = loc.ParentID.String()
	}
	s.recordActivity(ctx, &Activity{
		WorldID:    loc.WorldID,
		UserID:     callerID,
		EntityType: EntityLocation,
		EntityID:   loc.ID,
		Action:     ActionCreated,
		Metadata:   meta,
	})
	return loc, nil
}

// UpdateLocation applies a partial update to a location. When the update
// re-parents the location, the cycle check runs inside a transaction and
// walks the ancestor chain through locked reads, so concurrent re-parents
// touching the same chain serialize instead of jointly introducing a
// cycle.
func (s *Service) UpdateLocation(ctx context.Context, callerID, locationID ulid.ULID, in UpdateLocationInput) (*Location, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, loc.WorldID); err != nil {
		return nil, err
	}
	if err := validateLocationUpdate(in); err != nil {
		return nil, err
	}

	var updated *Location
	err = s.transactor.InTransaction(ctx, func(ctx context.Context) error {
		if in.Parent.Set && in.Parent.ID != nil {
			// Lock this location's row before walking. Without the
			// locks, two READ COMMITTED transactions re-parenting A
			// under B and B under A could each pass the walk against
			// the old chain and both commit. Detaching skips all of
			// this: a nil parent cannot close a cycle.
			if _, err := s.locations.GetParentIDForUpdate(ctx, locationID); err != nil {
				return err
			}
			parent, err := s.locations.Get(ctx, *in.Parent.ID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return ErrParentNotFound
				}
				return oops.Wrapf(err, "look up parent %s", *in.Parent.ID)
			}
			if parent.WorldID != loc.WorldID {
				return ErrParentNotFound
			}
			circular, err := WouldCreateCircularHierarchy(ctx, ParentLookupFunc(s.locations.GetParentIDForUpdate), locationID, in.Parent.ID)
			if err != nil {
				return err
			}
			if circular {
				return ErrCircularHierarchy
			}
		}
		var updateErr error
		updated, updateErr = s.locations.Update(ctx, locationID, in)
		return updateErr
	})
	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    updated.WorldID,
		UserID:     callerID,
		EntityType: EntityLocation,
		EntityID:   updated.ID,
		Action:     ActionUpdated,
		Metadata:   map[string]string{"location_name": updated.Name},
	})
	return updated, nil
}

// DeleteLocation removes a location and, via the store's cascade rule,
// all of its descendants.
func (s *Service) DeleteLocation(ctx context.Context, callerID, locationID ulid.ULID) error {
	if err := authenticate(callerID); err != nil {
		return err
	}
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeWorld(ctx, callerID, loc.WorldID); err != nil {
		return err
	}
	if err := s.locations.Delete(ctx, locationID); err != nil {
		return oops.Wrapf(err, "delete location %s", locationID)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    loc.WorldID,
		UserID:     callerID,
		EntityType: EntityLocation,
		EntityID:   loc.ID,
		Action:     ActionDeleted,
		Metadata:   map[string]string{"location_name": loc.Name},
	})
	return nil
}

// ListLocations returns locations in a world the caller owns, filtered
// and paginated.
func (s *Service) ListLocations(ctx context.Context, callerID ulid.ULID, filters LocationFilters) ([]*LocationNode, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, filters.WorldID); err != nil {
		return nil, err
	}
	nodes, err := s.locations.List(ctx, filters)
	if err != nil {
		return nil, oops.Wrapf(err, "list locations in world %s", filters.WorldID)
	}
	return nodes, nil
}

// GetLocation retrieves a location by its compound (worldID, slug) key
// with parent and children attached.
func (s *Service) GetLocation(ctx context.Context, callerID, worldID ulid.ULID, slug string) (*LocationNode, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, worldID); err != nil {
		return nil, err
	}
	return s.locations.GetBySlug(ctx, worldID, slug)
}

// SearchLocations runs a ranked prefix full-text search scoped to a
// world the caller owns. An empty or whitespace-only query returns an
// empty result without touching the store.
func (s *Service) SearchLocations(ctx context.Context, callerID, worldID ulid.ULID, query string) ([]*SearchResult, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, worldID); err != nil {
		return nil, err
	}
	tsquery := PrefixQuery(query)
	if tsquery == "" {
		return []*SearchResult{}, nil
	}
	results, err := s.locations.Search(ctx, worldID, tsquery)
	if err != nil {
		return nil, oops.Wrapf(err, "search locations in world %s", worldID)
	}
	return results, nil
}

// CreateCharacter creates a new character in a world the caller owns.
func (s *Service) CreateCharacter(ctx context.Context, callerID ulid.ULID, in CreateCharacterInput) (*Character, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := ValidateTextField("description", in.Description); err != nil {
		return nil, err
	}
	if err := ValidateImageURL(in.ImageURL); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, in.WorldID); err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		if err := s.checkLocationInWorld(ctx, *in.LocationID, in.WorldID); err != nil {
			return nil, err
		}
	}

	var c *Character
	err := withSlugRetry(ctx, in.Name, func(ctx context.Context, slug string) error {
		now := time.Now().UTC()
		c = &Character{
			ID:          ulid.Make(),
			WorldID:     in.WorldID,
			Name:        in.Name,
			Slug:        slug,
			Role:        in.Role,
			Description: in.Description,
			LocationID:  in.LocationID,
			ImageURL:    in.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.characters.Create(ctx, c)
	})
	if err != nil {
		return nil, oops.Wrapf(err, "create character %q in world %s", in.Name, in.WorldID)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    c.WorldID,
		UserID:     callerID,
		EntityType: EntityCharacter,
		EntityID:   c.ID,
		Action:     ActionCreated,
		Metadata:   map[string]string{"character_name": c.Name},
	})
	return c, nil
}

// UpdateCharacter applies a partial update to a character.
func (s *Service) UpdateCharacter(ctx context.Context, callerID, characterID ulid.ULID, in UpdateCharacterInput) (*Character, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	c, err := s.characters.Get(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, c.WorldID); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := ValidateName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := ValidateTextField("description", *in.Description); err != nil {
			return nil, err
		}
	}
	if in.Location.Set && in.Location.ID != nil {
		if err := s.checkLocationInWorld(ctx, *in.Location.ID, c.WorldID); err != nil {
			return nil, err
		}
	}

	updated, err := s.characters.Update(ctx, characterID, in)
	if err != nil {
		return nil, oops.Wrapf(err, "update character %s", characterID)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    updated.WorldID,
		UserID:     callerID,
		EntityType: EntityCharacter,
		EntityID:   updated.ID,
		Action:     ActionUpdated,
		Metadata:   map[string]string{"character_name": updated.Name},
	})
	return updated, nil
}

// DeleteCharacter removes a character.
func (s *Service) DeleteCharacter(ctx context.Context, callerID, characterID ulid.ULID) error {
	if err := authenticate(callerID); err != nil {
		return err
	}
	c, err := s.characters.Get(ctx, characterID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeWorld(ctx, callerID, c.WorldID); err != nil {
		return err
	}
	if err := s.characters.Delete(ctx, characterID); err != nil {
		return oops.Wrapf(err, "delete character %s", characterID)
	}

	s.recordActivity(ctx, &Activity{
		WorldID:    c.WorldID,
		UserID:     callerID,
		EntityType: EntityCharacter,
		EntityID:   c.ID,
		Action:     ActionDeleted,
		Metadata:   map[string]string{"character_name": c.Name},
	})
	return nil
}

// ListCharacters returns characters in a world the caller owns.
func (s *Service) ListCharacters(ctx context.Context, callerID ulid.ULID, filters CharacterFilters) ([]*Character, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, filters.WorldID); err != nil {
		return nil, err
	}
	chars, err := s.characters.List(ctx, filters)
	if err != nil {
		return nil, oops.Wrapf(err, "list characters in world %s", filters.WorldID)
	}
	return chars, nil
}

// ListActivities returns the most recent audit records for a world the
// caller owns.
func (s *Service) ListActivities(ctx context.Context, callerID, worldID ulid.ULID, limit int) ([]*Activity, error) {
	if err := authenticate(callerID); err != nil {
		return nil, err
	}
	if _, err := s.authorizeWorld(ctx, callerID, worldID); err != nil {
		return nil, err
	}
	acts, err := s.activities.ListByWorld(ctx, worldID, limit)
	if err != nil {
		return nil, oops.Wrapf(err, "list activities in world %s", worldID)
	}
	return acts, nil
}

func (s *Service) checkLocationInWorld(ctx context.Context, locationID, worldID ulid.ULID) error {
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return err
	}
	if loc.WorldID != worldID {
		return ErrNotFound
	}
	return nil
}
