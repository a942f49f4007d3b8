// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

func parseID(field, value string) (ulid.ULID, error) {
	id, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("invalid %s %q", field, value)
	}
	return id, nil
}

func parseOptionalID(field, value string) (*ulid.ULID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func worldPayload(w *world.World) WorldPayload {
	return WorldPayload{
		ID:          w.ID.String(),
		Name:        w.Name,
		Slug:        w.Slug,
		Description: w.Description,
		CreatedAt:   formatTime(w.CreatedAt),
		UpdatedAt:   formatTime(w.UpdatedAt),
	}
}

func refPayload(r *world.LocationRef) *LocationRefPayload {
	if r == nil {
		return nil
	}
	return &LocationRefPayload{
		ID:   r.ID.String(),
		Name: r.Name,
		Slug: r.Slug,
		Type: r.Type,
	}
}

func locationPayload(l *world.Location) LocationPayload {
	p := LocationPayload{
		ID:          l.ID.String(),
		WorldID:     l.WorldID.String(),
		Name:        l.Name,
		Slug:        l.Slug,
		Type:        l.Type,
		Description: l.Description,
		Geography:   l.Geography,
		Climate:     l.Climate,
		Population:  l.Population,
		Government:  l.Government,
		Economy:     l.Economy,
		Culture:     l.Culture,
		Attributes:  l.Attributes,
		ImageURL:    l.ImageURL,
		CreatedAt:   formatTime(l.CreatedAt),
		UpdatedAt:   formatTime(l.UpdatedAt),
	}
	if l.ParentID != nil {
		p.ParentID = l.ParentID.String()
	}
	return p
}

func nodePayload(n *world.LocationNode) LocationPayload {
	p := locationPayload(&n.Location)
	p.Parent = refPayload(n.Parent)
	for i := range n.Children {
		p.Children = append(p.Children, *refPayload(&n.Children[i]))
	}
	return p
}

func characterPayload(c *world.Character) CharacterPayload {
	p := CharacterPayload{
		ID:          c.ID.String(),
		WorldID:     c.WorldID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Role:        c.Role,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	if c.LocationID != nil {
		p.LocationID = c.LocationID.String()
	}
	return p
}

func activityPayload(a *world.Activity) ActivityPayload {
	return ActivityPayload{
		ID:         a.ID.String(),
		EntityType: string(a.EntityType),
		EntityID:   a.EntityID.String(),
		Action:     string(a.Action),
		Metadata:   a.Metadata,
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

// WorldCreateHandler executes a world creation request.
func WorldCreateHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[WorldCreateInput, WorldPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldCreateInput) (*mcp.CallToolResult, WorldPayload, error) {
		w, err := svc.CreateWorld(ctx, caller, world.CreateWorldInput{
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return nil, WorldPayload{}, err
		}
		return nil, worldPayload(w), nil
	}
}

// WorldGetHandler fetches a world the caller owns by its slug.
func WorldGetHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[WorldGetInput, WorldPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldGetInput) (*mcp.CallToolResult, WorldPayload, error) {
		w, err := svc.GetWorldBySlug(ctx, caller, input.Slug)
		if err != nil {
			return nil, WorldPayload{}, err
		}
		return nil, worldPayload(w), nil
	}
}

// WorldListHandler lists the caller's worlds.
func WorldListHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[WorldListInput, WorldListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ WorldListInput) (*mcp.CallToolResult, WorldListResult, error) {
		worlds, err := svc.ListWorlds(ctx, caller)
		if err != nil {
			return nil, WorldListResult{}, err
		}
		result := WorldListResult{Worlds: make([]WorldPayload, 0, len(worlds))}
		for _, w := range worlds {
			result.Worlds = append(result.Worlds, worldPayload(w))
		}
		return nil, result, nil
	}
}

// LocationCreateHandler executes a location creation request.
func LocationCreateHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationCreateInput, LocationPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationCreateInput) (*mcp.CallToolResult, LocationPayload, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		parentID, err := parseOptionalID("parent_id", input.ParentID)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		l, err := svc.CreateLocation(ctx, caller, world.CreateLocationInput{
			WorldID:     worldID,
			Name:        input.Name,
			Type:        input.Type,
			ParentID:    parentID,
			Description: input.Description,
			Geography:   input.Geography,
			Climate:     input.Climate,
			Population:  input.Population,
			Government:  input.Government,
			Economy:     input.Economy,
			Culture:     input.Culture,
			Attributes:  input.Attributes,
			ImageURL:    input.ImageURL,
		})
		if err != nil {
			return nil, LocationPayload{}, err
		}
		return nil, locationPayload(l), nil
	}
}

// LocationUpdateHandler executes a partial location update.
func LocationUpdateHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationUpdateInput, LocationPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationUpdateInput) (*mcp.CallToolResult, LocationPayload, error) {
		locationID, err := parseID("location_id", input.LocationID)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		update := world.UpdateLocationInput{
			Name:        input.Name,
			Type:        input.Type,
			Description: input.Description,
			Geography:   input.Geography,
			Climate:     input.Climate,
			Population:  input.Population,
			Government:  input.Government,
			Economy:     input.Economy,
			Culture:     input.Culture,
			Attributes:  input.Attributes,
			ImageURL:    input.ImageURL,
		}
		switch {
		case input.ClearParent:
			update.Parent = world.ClearParent()
		case input.ParentID != nil:
			parentID, err := parseID("parent_id", *input.ParentID)
			if err != nil {
				return nil, LocationPayload{}, err
			}
			update.Parent = world.SetParent(parentID)
		}
		l, err := svc.UpdateLocation(ctx, caller, locationID, update)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		return nil, locationPayload(l), nil
	}
}

// LocationDeleteHandler deletes a location subtree.
func LocationDeleteHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationDeleteInput, LocationDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationDeleteInput) (*mcp.CallToolResult, LocationDeleteResult, error) {
		locationID, err := parseID("location_id", input.LocationID)
		if err != nil {
			return nil, LocationDeleteResult{}, err
		}
		if err := svc.DeleteLocation(ctx, caller, locationID); err != nil {
			return nil, LocationDeleteResult{}, err
		}
		return nil, LocationDeleteResult{Deleted: true}, nil
	}
}

// LocationListHandler lists locations with filters and pagination.
func LocationListHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationListInput, LocationListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationListInput) (*mcp.CallToolResult, LocationListResult, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, LocationListResult{}, err
		}
		filters := world.LocationFilters{
			WorldID:          worldID,
			Type:             input.Type,
			Limit:            input.Limit,
			Offset:           input.Offset,
			IncludeHierarchy: input.IncludeHierarchy,
		}
		switch {
		case input.RootsOnly:
			filters.Parent = world.ClearParent()
		case input.ParentID != "":
			parentID, err := parseID("parent_id", input.ParentID)
			if err != nil {
				return nil, LocationListResult{}, err
			}
			filters.Parent = world.SetParent(parentID)
		}
		nodes, err := svc.ListLocations(ctx, caller, filters)
		if err != nil {
			return nil, LocationListResult{}, err
		}
		result := LocationListResult{Locations: make([]LocationPayload, 0, len(nodes))}
		for _, n := range nodes {
			result.Locations = append(result.Locations, nodePayload(n))
		}
		return nil, result, nil
	}
}

// LocationGetHandler fetches a location by world and slug.
func LocationGetHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationGetInput, LocationPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationGetInput) (*mcp.CallToolResult, LocationPayload, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		n, err := svc.GetLocation(ctx, caller, worldID, input.Slug)
		if err != nil {
			return nil, LocationPayload{}, err
		}
		return nil, nodePayload(n), nil
	}
}

// LocationSearchHandler runs ranked full-text search over a world.
func LocationSearchHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[LocationSearchInput, LocationSearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationSearchInput) (*mcp.CallToolResult, LocationSearchResult, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, LocationSearchResult{}, err
		}
		hits, err := svc.SearchLocations(ctx, caller, worldID, input.Query)
		if err != nil {
			return nil, LocationSearchResult{}, err
		}
		result := LocationSearchResult{Results: make([]LocationSearchHit, 0, len(hits))}
		for _, h := range hits {
			payload := locationPayload(&h.Location)
			payload.Parent = refPayload(h.Parent)
			result.Results = append(result.Results, LocationSearchHit{
				LocationPayload: payload,
				Rank:            h.Rank,
			})
		}
		return nil, result, nil
	}
}

// CharacterCreateHandler executes a character creation request.
func CharacterCreateHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[CharacterCreateInput, CharacterPayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterCreateInput) (*mcp.CallToolResult, CharacterPayload, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, CharacterPayload{}, err
		}
		locationID, err := parseOptionalID("location_id", input.LocationID)
		if err != nil {
			return nil, CharacterPayload{}, err
		}
		c, err := svc.CreateCharacter(ctx, caller, world.CreateCharacterInput{
			WorldID:     worldID,
			Name:        input.Name,
			Role:        input.Role,
			Description: input.Description,
			LocationID:  locationID,
			ImageURL:    input.ImageURL,
		})
		if err != nil {
			return nil, CharacterPayload{}, err
		}
		return nil, characterPayload(c), nil
	}
}

// CharacterListHandler lists characters with filters and pagination.
func CharacterListHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[CharacterListInput, CharacterListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterListInput) (*mcp.CallToolResult, CharacterListResult, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, CharacterListResult{}, err
		}
		locationID, err := parseOptionalID("location_id", input.LocationID)
		if err != nil {
			return nil, CharacterListResult{}, err
		}
		characters, err := svc.ListCharacters(ctx, caller, world.CharacterFilters{
			WorldID:    worldID,
			LocationID: locationID,
			Limit:      input.Limit,
			Offset:     input.Offset,
		})
		if err != nil {
			return nil, CharacterListResult{}, err
		}
		result := CharacterListResult{Characters: make([]CharacterPayload, 0, len(characters))}
		for _, c := range characters {
			result.Characters = append(result.Characters, characterPayload(c))
		}
		return nil, result, nil
	}
}

// ActivityListHandler lists recent audit activities for a world.
func ActivityListHandler(svc *world.Service, caller ulid.ULID) mcp.ToolHandlerFor[ActivityListInput, ActivityListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActivityListInput) (*mcp.CallToolResult, ActivityListResult, error) {
		worldID, err := parseID("world_id", input.WorldID)
		if err != nil {
			return nil, ActivityListResult{}, err
		}
		activities, err := svc.ListActivities(ctx, caller, worldID, input.Limit)
		if err != nil {
			return nil, ActivityListResult{}, err
		}
		result := ActivityListResult{Activities: make([]ActivityPayload, 0, len(activities))}
		for _, a := range activities {
			result.Activities = append(result.Activities, activityPayload(a))
		}
		return nil, result, nil
	}
}
