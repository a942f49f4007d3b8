// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package mcp exposes world-management operations as Model Context
// Protocol tools so LLM clients can drive WorldCrafter.
package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// WorldCreateInput is the MCP tool input for world creation.
type WorldCreateInput struct {
	Name        string `json:"name" jsonschema:"world display name"`
	Description string `json:"description,omitempty" jsonschema:"optional world description"`
}

// WorldPayload is the MCP representation of a world.
type WorldPayload struct {
	ID          string `json:"id" jsonschema:"world identifier"`
	Name        string `json:"name" jsonschema:"world display name"`
	Slug        string `json:"slug" jsonschema:"URL-safe world identifier"`
	Description string `json:"description,omitempty" jsonschema:"world description"`
	CreatedAt   string `json:"created_at" jsonschema:"RFC3339 creation timestamp"`
	UpdatedAt   string `json:"updated_at" jsonschema:"RFC3339 last-update timestamp"`
}

// WorldGetInput is the MCP tool input for fetching one world.
type WorldGetInput struct {
	Slug string `json:"slug" jsonschema:"world slug"`
}

// WorldListInput is the MCP tool input for listing worlds.
type WorldListInput struct{}

// WorldListResult is the MCP tool output for listing worlds.
type WorldListResult struct {
	Worlds []WorldPayload `json:"worlds" jsonschema:"worlds owned by the caller"`
}

// LocationCreateInput is the MCP tool input for location creation.
type LocationCreateInput struct {
	WorldID     string            `json:"world_id" jsonschema:"world identifier"`
	Name        string            `json:"name" jsonschema:"location display name"`
	Type        string            `json:"type,omitempty" jsonschema:"free-text type tag (city, forest, ...)"`
	ParentID    string            `json:"parent_id,omitempty" jsonschema:"optional parent location identifier"`
	Description string            `json:"description,omitempty" jsonschema:"optional description"`
	Geography   string            `json:"geography,omitempty" jsonschema:"optional geography text"`
	Climate     string            `json:"climate,omitempty" jsonschema:"optional climate text"`
	Population  string            `json:"population,omitempty" jsonschema:"optional population text"`
	Government  string            `json:"government,omitempty" jsonschema:"optional government text"`
	Economy     string            `json:"economy,omitempty" jsonschema:"optional economy text"`
	Culture     string            `json:"culture,omitempty" jsonschema:"optional culture text"`
	Attributes  map[string]string `json:"attributes,omitempty" jsonschema:"optional key-value attributes"`
	ImageURL    string            `json:"image_url,omitempty" jsonschema:"optional image reference"`
}

// LocationUpdateInput is the MCP tool input for partial location updates.
// Omitted fields are left untouched; ClearParent detaches the location
// from its parent.
type LocationUpdateInput struct {
	LocationID  string            `json:"location_id" jsonschema:"location identifier"`
	Name        *string           `json:"name,omitempty" jsonschema:"optional new display name"`
	Type        *string           `json:"type,omitempty" jsonschema:"optional new type tag"`
	ParentID    *string           `json:"parent_id,omitempty" jsonschema:"optional new parent location identifier"`
	ClearParent bool              `json:"clear_parent,omitempty" jsonschema:"detach the location from its parent"`
	Description *string           `json:"description,omitempty" jsonschema:"optional new description"`
	Geography   *string           `json:"geography,omitempty" jsonschema:"optional new geography text"`
	Climate     *string           `json:"climate,omitempty" jsonschema:"optional new climate text"`
	Population  *string           `json:"population,omitempty" jsonschema:"optional new population text"`
	Government  *string           `json:"government,omitempty" jsonschema:"optional new government text"`
	Economy     *string           `json:"economy,omitempty" jsonschema:"optional new economy text"`
	Culture     *string           `json:"culture,omitempty" jsonschema:"optional new culture text"`
	Attributes  map[string]string `json:"attributes,omitempty" jsonschema:"optional replacement attributes"`
	ImageURL    *string           `json:"image_url,omitempty" jsonschema:"optional new image reference"`
}

// LocationDeleteInput is the MCP tool input for location deletion.
type LocationDeleteInput struct {
	LocationID string `json:"location_id" jsonschema:"location identifier; descendants are deleted too"`
}

// LocationDeleteResult is the MCP tool output for location deletion.
type LocationDeleteResult struct {
	Deleted bool `json:"deleted" jsonschema:"whether the location was deleted"`
}

// LocationListInput is the MCP tool input for listing locations.
type LocationListInput struct {
	WorldID          string `json:"world_id" jsonschema:"world identifier"`
	Type             string `json:"type,omitempty" jsonschema:"filter on exact type match"`
	ParentID         string `json:"parent_id,omitempty" jsonschema:"filter on parent location identifier"`
	RootsOnly        bool   `json:"roots_only,omitempty" jsonschema:"list only root-level locations"`
	Limit            int    `json:"limit,omitempty" jsonschema:"page size, defaults to 50"`
	Offset           int    `json:"offset,omitempty" jsonschema:"page offset"`
	IncludeHierarchy bool   `json:"include_hierarchy,omitempty" jsonschema:"attach immediate parent and children"`
}

// LocationRefPayload is a slim location reference for breadcrumbs.
type LocationRefPayload struct {
	ID   string `json:"id" jsonschema:"location identifier"`
	Name string `json:"name" jsonschema:"location display name"`
	Slug string `json:"slug" jsonschema:"URL-safe location identifier"`
	Type string `json:"type,omitempty" jsonschema:"type tag"`
}

// LocationPayload is the MCP representation of a location.
type LocationPayload struct {
	ID          string               `json:"id" jsonschema:"location identifier"`
	WorldID     string               `json:"world_id" jsonschema:"world identifier"`
	Name        string               `json:"name" jsonschema:"location display name"`
	Slug        string               `json:"slug" jsonschema:"URL-safe location identifier"`
	Type        string               `json:"type,omitempty" jsonschema:"type tag"`
	ParentID    string               `json:"parent_id,omitempty" jsonschema:"parent location identifier"`
	Description string               `json:"description,omitempty" jsonschema:"description"`
	Geography   string               `json:"geography,omitempty" jsonschema:"geography text"`
	Climate     string               `json:"climate,omitempty" jsonschema:"climate text"`
	Population  string               `json:"population,omitempty" jsonschema:"population text"`
	Government  string               `json:"government,omitempty" jsonschema:"government text"`
	Economy     string               `json:"economy,omitempty" jsonschema:"economy text"`
	Culture     string               `json:"culture,omitempty" jsonschema:"culture text"`
	Attributes  map[string]string    `json:"attributes,omitempty" jsonschema:"key-value attributes"`
	ImageURL    string               `json:"image_url,omitempty" jsonschema:"image reference"`
	Parent      *LocationRefPayload  `json:"parent,omitempty" jsonschema:"immediate parent, when hierarchy is attached"`
	Children    []LocationRefPayload `json:"children,omitempty" jsonschema:"immediate children, when hierarchy is attached"`
	CreatedAt   string               `json:"created_at" jsonschema:"RFC3339 creation timestamp"`
	UpdatedAt   string               `json:"updated_at" jsonschema:"RFC3339 last-update timestamp"`
}

// LocationListResult is the MCP tool output for listing locations.
type LocationListResult struct {
	Locations []LocationPayload `json:"locations" jsonschema:"matching locations, most recent first"`
}

// LocationGetInput is the MCP tool input for fetching one location.
type LocationGetInput struct {
	WorldID string `json:"world_id" jsonschema:"world identifier"`
	Slug    string `json:"slug" jsonschema:"location slug"`
}

// LocationSearchInput is the MCP tool input for full-text search.
type LocationSearchInput struct {
	WorldID string `json:"world_id" jsonschema:"world identifier"`
	Query   string `json:"query" jsonschema:"free-text query; tokens prefix-match and are ANDed"`
}

// LocationSearchHit is one ranked search result.
type LocationSearchHit struct {
	LocationPayload
	Rank float64 `json:"rank" jsonschema:"relevance rank, higher is better"`
}

// LocationSearchResult is the MCP tool output for full-text search.
type LocationSearchResult struct {
	Results []LocationSearchHit `json:"results" jsonschema:"ranked matches, best first, capped at 50"`
}

// CharacterCreateInput is the MCP tool input for character creation.
type CharacterCreateInput struct {
	WorldID     string `json:"world_id" jsonschema:"world identifier"`
	Name        string `json:"name" jsonschema:"character display name"`
	Role        string `json:"role,omitempty" jsonschema:"optional narrative role"`
	Description string `json:"description,omitempty" jsonschema:"optional description"`
	LocationID  string `json:"location_id,omitempty" jsonschema:"optional location the character is at"`
	ImageURL    string `json:"image_url,omitempty" jsonschema:"optional image reference"`
}

// CharacterPayload is the MCP representation of a character.
type CharacterPayload struct {
	ID          string `json:"id" jsonschema:"character identifier"`
	WorldID     string `json:"world_id" jsonschema:"world identifier"`
	Name        string `json:"name" jsonschema:"character display name"`
	Slug        string `json:"slug" jsonschema:"URL-safe character identifier"`
	Role        string `json:"role,omitempty" jsonschema:"narrative role"`
	Description string `json:"description,omitempty" jsonschema:"description"`
	LocationID  string `json:"location_id,omitempty" jsonschema:"location the character is at"`
	ImageURL    string `json:"image_url,omitempty" jsonschema:"image reference"`
	CreatedAt   string `json:"created_at" jsonschema:"RFC3339 creation timestamp"`
	UpdatedAt   string `json:"updated_at" jsonschema:"RFC3339 last-update timestamp"`
}

// CharacterListInput is the MCP tool input for listing characters.
type CharacterListInput struct {
	WorldID    string `json:"world_id" jsonschema:"world identifier"`
	LocationID string `json:"location_id,omitempty" jsonschema:"filter on location"`
	Limit      int    `json:"limit,omitempty" jsonschema:"page size, defaults to 50"`
	Offset     int    `json:"offset,omitempty" jsonschema:"page offset"`
}

// CharacterListResult is the MCP tool output for listing characters.
type CharacterListResult struct {
	Characters []CharacterPayload `json:"characters" jsonschema:"matching characters, most recent first"`
}

// ActivityListInput is the MCP tool input for the audit feed.
type ActivityListInput struct {
	WorldID string `json:"world_id" jsonschema:"world identifier"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum records, defaults to 50"`
}

// ActivityPayload is the MCP representation of an audit record.
type ActivityPayload struct {
	ID         string            `json:"id" jsonschema:"activity identifier"`
	EntityType string            `json:"entity_type" jsonschema:"world, location, or character"`
	EntityID   string            `json:"entity_id" jsonschema:"identifier of the mutated entity"`
	Action     string            `json:"action" jsonschema:"created, updated, or deleted"`
	Metadata   map[string]string `json:"metadata,omitempty" jsonschema:"action metadata"`
	CreatedAt  string            `json:"created_at" jsonschema:"RFC3339 timestamp"`
}

// ActivityListResult is the MCP tool output for the audit feed.
type ActivityListResult struct {
	Activities []ActivityPayload `json:"activities" jsonschema:"most recent activities first"`
}

// WorldCreateTool defines the MCP tool schema for world creation.
func WorldCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_create",
		Description: "Creates a new world owned by the caller and returns it with its generated slug.",
	}
}

// WorldGetTool defines the MCP tool schema for fetching one world.
func WorldGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_get",
		Description: "Fetches a world the caller owns by its slug.",
	}
}

// WorldListTool defines the MCP tool schema for listing worlds.
func WorldListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_list",
		Description: "Lists the worlds owned by the caller, most recently created first.",
	}
}

// LocationCreateTool defines the MCP tool schema for location creation.
func LocationCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_create",
		Description: "Creates a location in a world, optionally under a parent location in the same world.",
	}
}

// LocationUpdateTool defines the MCP tool schema for location updates.
func LocationUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_update",
		Description: "Partially updates a location. Re-parenting is rejected if it would create a circular hierarchy.",
	}
}

// LocationDeleteTool defines the MCP tool schema for location deletion.
func LocationDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_delete",
		Description: "Deletes a location and all of its descendant locations.",
	}
}

// LocationListTool defines the MCP tool schema for listing locations.
func LocationListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_list",
		Description: "Lists locations in a world with optional type/parent filters, pagination, and one-level hierarchy expansion.",
	}
}

// LocationGetTool defines the MCP tool schema for fetching one location.
func LocationGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_get",
		Description: "Fetches a location by world and slug with its immediate parent and children attached.",
	}
}

// LocationSearchTool defines the MCP tool schema for full-text search.
func LocationSearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_search",
		Description: "Ranked full-text search over a world's locations. Empty queries return no results.",
	}
}

// CharacterCreateTool defines the MCP tool schema for character creation.
func CharacterCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_create",
		Description: "Creates a character in a world, optionally placed at a location.",
	}
}

// CharacterListTool defines the MCP tool schema for listing characters.
func CharacterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_list",
		Description: "Lists characters in a world, optionally filtered by location.",
	}
}

// ActivityListTool defines the MCP tool schema for the audit feed.
func ActivityListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "activity_list",
		Description: "Lists the most recent audit activities for a world.",
	}
}
