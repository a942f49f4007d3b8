// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

// locationColumns is the canonical select list for location rows.
const locationColumns = `id, world_id, name, slug, type, parent_id, description, geography,
	climate, population, government, economy, culture, coordinates, attributes,
	image_url, created_at, updated_at`

// LocationRepository implements world.LocationRepository using PostgreSQL.
type LocationRepository struct {
	db DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Get retrieves a location by ID.
func (r *LocationRepository) Get(ctx context.Context, id ulid.ULID) (*world.Location, error) {
	row := q(ctx, r.db).QueryRow(ctx, `
		SELECT `+locationColumns+`
		FROM locations WHERE id = $1
	`, id.String())
	loc, err := scanLocationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location").With("id", id.String()).Wrap(err)
	}
	return loc, nil
}

// GetParentID returns the parent of the given location, or nil for a root.
func (r *LocationRepository) GetParentID(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	return r.getParentID(ctx, id, `SELECT parent_id FROM locations WHERE id = $1`)
}

// GetParentIDForUpdate is GetParentID with SELECT ... FOR UPDATE: the row
// stays locked until the surrounding transaction commits or rolls back.
// Conflicting re-parents block on each other's locks; Postgres aborts one
// side of a deadlock, and the survivor re-reads the committed chain.
func (r *LocationRepository) GetParentIDForUpdate(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	return r.getParentID(ctx, id, `SELECT parent_id FROM locations WHERE id = $1 FOR UPDATE`)
}

func (r *LocationRepository) getParentID(ctx context.Context, id ulid.ULID, query string) (*ulid.ULID, error) {
	var parentStr *string
	err := q(ctx, r.db).QueryRow(ctx, query, id.String()).Scan(&parentStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get parent id").With("id", id.String()).Wrap(err)
	}
	return parseOptionalULID(parentStr, "parent_id")
}

// GetBySlug retrieves a location by its compound (worldID, slug) key with
// parent and children refs attached.
func (r *LocationRepository) GetBySlug(ctx context.Context, worldID ulid.ULID, slug string) (*world.LocationNode, error) {
	row := q(ctx, r.db).QueryRow(ctx, `
		SELECT `+locationColumns+`
		FROM locations WHERE world_id = $1 AND slug = $2
	`, worldID.String(), slug)
	loc, err := scanLocationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LOCATION_NOT_FOUND").With("world_id", worldID.String()).With("slug", slug).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location by slug").With("slug", slug).Wrap(err)
	}

	node := &world.LocationNode{Location: *loc}
	if err := r.attachHierarchy(ctx, []*world.LocationNode{node}); err != nil {
		return nil, err
	}
	return node, nil
}

// Create persists a new location. A unique-violation maps to
// world.ErrSlugTaken so the service can regenerate the slug and retry.
func (r *LocationRepository) Create(ctx context.Context, loc *world.Location) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO locations (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, loc.ID.String(), loc.WorldID.String(), loc.Name, loc.Slug, loc.Type,
		ulidToStringPtr(loc.ParentID), loc.Description, loc.Geography, loc.Climate,
		loc.Population, loc.Government, loc.Economy, loc.Culture, loc.Coordinates,
		loc.Attributes, loc.ImageURL, loc.CreatedAt, loc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("LOCATION_SLUG_TAKEN").With("slug", loc.Slug).Wrap(world.ErrSlugTaken)
		}
		return oops.With("operation", "create location").With("id", loc.ID.String()).Wrap(err)
	}
	return nil
}

// Update applies a partial update: only supplied fields overwrite
// existing column values. Returns the updated row.
func (r *LocationRepository) Update(ctx context.Context, id ulid.ULID, in world.UpdateLocationInput) (*world.Location, error) {
	set := []string{"updated_at = $2"}
	args := []any{id.String(), time.Now().UTC()}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Type != nil {
		add("type", *in.Type)
	}
	if in.Parent.Set {
		add("parent_id", ulidToStringPtr(in.Parent.ID))
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Geography != nil {
		add("geography", *in.Geography)
	}
	if in.Climate != nil {
		add("climate", *in.Climate)
	}
	if in.Population != nil {
		add("population", *in.Population)
	}
	if in.Government != nil {
		add("government", *in.Government)
	}
	if in.Economy != nil {
		add("economy", *in.Economy)
	}
	if in.Culture != nil {
		add("culture", *in.Culture)
	}
	if in.Coordinates != nil {
		add("coordinates", in.Coordinates)
	}
	if in.Attributes != nil {
		add("attributes", in.Attributes)
	}
	if in.ImageURL != nil {
		add("image_url", *in.ImageURL)
	}

	row := q(ctx, r.db).QueryRow(ctx, `
		UPDATE locations SET `+strings.Join(set, ", ")+`
		WHERE id = $1
		RETURNING `+locationColumns, args...)
	loc, err := scanLocationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "update location").With("id", id.String()).Wrap(err)
	}
	return loc, nil
}

// Delete removes a location by ID. The schema's ON DELETE CASCADE on
// parent_id removes all descendants in the same statement.
func (r *LocationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := q(ctx, r.db).Exec(ctx, `DELETE FROM locations WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete location").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// List returns locations matching the filters, most recently created
// first, optionally with one level of hierarchy attached.
func (r *LocationRepository) List(ctx context.Context, filters world.LocationFilters) ([]*world.LocationNode, error) {
	where := []string{"world_id = $1"}
	args := []any{filters.WorldID.String()}

	if filters.Type != "" {
		args = append(args, filters.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filters.Parent.Set {
		if filters.Parent.ID == nil {
			where = append(where, "parent_id IS NULL")
		} else {
			args = append(args, filters.Parent.ID.String())
			where = append(where, fmt.Sprintf("parent_id = $%d", len(args)))
		}
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = world.DefaultLimit
	}
	if limit > world.MaxLimit {
		limit = world.MaxLimit
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf("LIMIT $%d", len(args))
	args = append(args, filters.Offset)
	offsetClause := fmt.Sprintf("OFFSET $%d", len(args))

	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
		`+limitClause+" "+offsetClause, args...)
	if err != nil {
		return nil, oops.With("operation", "list locations").With("world_id", filters.WorldID.String()).Wrap(err)
	}
	defer rows.Close()

	locs, err := scanLocations(rows)
	if err != nil {
		return nil, err
	}

	nodes := make([]*world.LocationNode, len(locs))
	for i, loc := range locs {
		nodes[i] = &world.LocationNode{Location: *loc}
	}
	if filters.IncludeHierarchy {
		if err := r.attachHierarchy(ctx, nodes); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// Search executes a ranked prefix full-text query against the generated
// search vector, scoped to one world. Results are ordered by rank
// descending with name ascending as tie-break and capped at
// world.SearchResultCap rows. Each hit carries its parent ref.
func (r *LocationRepository) Search(ctx context.Context, worldID ulid.ULID, tsquery string) ([]*world.SearchResult, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT l.id, l.world_id, l.name, l.slug, l.type, l.parent_id, l.description,
		       l.geography, l.climate, l.population, l.government, l.economy, l.culture,
		       l.coordinates, l.attributes, l.image_url, l.created_at, l.updated_at,
		       ts_rank(l.search_vector, query) AS rank,
		       p.id, p.name, p.slug, p.type
		FROM locations l
		CROSS JOIN to_tsquery('english', $2) query
		LEFT JOIN locations p ON p.id = l.parent_id
		WHERE l.world_id = $1 AND l.search_vector @@ query
		ORDER BY rank DESC, l.name ASC
		LIMIT $3
	`, worldID.String(), tsquery, world.SearchResultCap)
	if err != nil {
		return nil, oops.With("operation", "search locations").With("world_id", worldID.String()).With("tsquery", tsquery).Wrap(err)
	}
	defer rows.Close()

	results := make([]*world.SearchResult, 0)
	for rows.Next() {
		var res world.SearchResult
		var f locationScanFields
		var pID, pName, pSlug, pType *string

		if err := rows.Scan(
			&f.idStr, &f.worldIDStr, &res.Name, &res.Slug, &res.Type, &f.parentIDStr,
			&res.Description, &res.Geography, &res.Climate, &res.Population,
			&res.Government, &res.Economy, &res.Culture, &res.Coordinates,
			&res.Attributes, &res.ImageURL, &res.CreatedAt, &res.UpdatedAt,
			&res.Rank, &pID, &pName, &pSlug, &pType,
		); err != nil {
			return nil, oops.With("operation", "scan search result").Wrap(err)
		}
		if err := parseLocationFromFields(&f, &res.Location); err != nil {
			return nil, err
		}
		parent, err := scanRef(pID, pName, pSlug, pType)
		if err != nil {
			return nil, err
		}
		res.Parent = parent
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate search results").Wrap(err)
	}
	return results, nil
}

// attachHierarchy fills Parent and Children refs for the given nodes,
// one level each direction, using one query per direction.
func (r *LocationRepository) attachHierarchy(ctx context.Context, nodes []*world.LocationNode) error {
	if len(nodes) == 0 {
		return nil
	}

	ids := make([]string, 0, len(nodes))
	parentIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID.String())
		if n.ParentID != nil {
			parentIDs = append(parentIDs, n.ParentID.String())
		}
	}

	if len(parentIDs) > 0 {
		parents, err := r.fetchRefs(ctx, `SELECT id, name, slug, type FROM locations WHERE id = ANY($1)`, parentIDs)
		if err != nil {
			return err
		}
		byID := make(map[ulid.ULID]world.LocationRef, len(parents))
		for _, ref := range parents {
			byID[ref.ID] = ref
		}
		for _, n := range nodes {
			if n.ParentID == nil {
				continue
			}
			if ref, ok := byID[*n.ParentID]; ok {
				refCopy := ref
				n.Parent = &refCopy
			}
		}
	}

	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT id, name, slug, type, parent_id FROM locations
		WHERE parent_id = ANY($1) ORDER BY name ASC
	`, ids)
	if err != nil {
		return oops.With("operation", "fetch children").Wrap(err)
	}
	defer rows.Close()

	children := make(map[ulid.ULID][]world.LocationRef)
	for rows.Next() {
		var idStr, name, slug, parentStr string
		var typ *string
		if err := rows.Scan(&idStr, &name, &slug, &typ, &parentStr); err != nil {
			return oops.With("operation", "scan child ref").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return oops.With("operation", "parse child id").With("id", idStr).Wrap(err)
		}
		parentID, err := ulid.Parse(parentStr)
		if err != nil {
			return oops.With("operation", "parse child parent id").With("parent_id", parentStr).Wrap(err)
		}
		ref := world.LocationRef{ID: id, Name: name, Slug: slug}
		if typ != nil {
			ref.Type = *typ
		}
		children[parentID] = append(children[parentID], ref)
	}
	if err := rows.Err(); err != nil {
		return oops.With("operation", "iterate children").Wrap(err)
	}

	for _, n := range nodes {
		n.Children = children[n.ID]
	}
	return nil
}

func (r *LocationRepository) fetchRefs(ctx context.Context, sql string, ids []string) ([]world.LocationRef, error) {
	rows, err := q(ctx, r.db).Query(ctx, sql, ids)
	if err != nil {
		return nil, oops.With("operation", "fetch location refs").Wrap(err)
	}
	defer rows.Close()

	refs := make([]world.LocationRef, 0, len(ids))
	for rows.Next() {
		var idStr, name, slug string
		var typ *string
		if err := rows.Scan(&idStr, &name, &slug, &typ); err != nil {
			return nil, oops.With("operation", "scan location ref").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.With("operation", "parse ref id").With("id", idStr).Wrap(err)
		}
		ref := world.LocationRef{ID: id, Name: name, Slug: slug}
		if typ != nil {
			ref.Type = *typ
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate location refs").Wrap(err)
	}
	return refs, nil
}

func scanRef(id, name, slug, typ *string) (*world.LocationRef, error) {
	if id == nil {
		return nil, nil
	}
	parsed, err := ulid.Parse(*id)
	if err != nil {
		return nil, oops.With("operation", "parse ref id").With("id", *id).Wrap(err)
	}
	ref := &world.LocationRef{ID: parsed}
	if name != nil {
		ref.Name = *name
	}
	if slug != nil {
		ref.Slug = *slug
	}
	if typ != nil {
		ref.Type = *typ
	}
	return ref, nil
}

// locationScanFields holds intermediate scan values for location parsing.
type locationScanFields struct {
	idStr       string
	worldIDStr  string
	parentIDStr *string
}

// scanLocationRow scans a single location from a row.
func scanLocationRow(row pgx.Row) (*world.Location, error) {
	var loc world.Location
	var f locationScanFields

	err := row.Scan(
		&f.idStr, &f.worldIDStr, &loc.Name, &loc.Slug, &loc.Type, &f.parentIDStr,
		&loc.Description, &loc.Geography, &loc.Climate, &loc.Population,
		&loc.Government, &loc.Economy, &loc.Culture, &loc.Coordinates,
		&loc.Attributes, &loc.ImageURL, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := parseLocationFromFields(&f, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// parseLocationFromFields converts scan fields to location fields.
func parseLocationFromFields(f *locationScanFields, loc *world.Location) error {
	var err error
	loc.ID, err = ulid.Parse(f.idStr)
	if err != nil {
		return oops.With("operation", "parse location id").With("id", f.idStr).Wrap(err)
	}
	loc.WorldID, err = ulid.Parse(f.worldIDStr)
	if err != nil {
		return oops.With("operation", "parse world id").With("world_id", f.worldIDStr).Wrap(err)
	}
	loc.ParentID, err = parseOptionalULID(f.parentIDStr, "parent_id")
	if err != nil {
		return err
	}
	return nil
}

func scanLocations(rows pgx.Rows) ([]*world.Location, error) {
	locations := make([]*world.Location, 0)
	for rows.Next() {
		var loc world.Location
		var f locationScanFields

		if err := rows.Scan(
			&f.idStr, &f.worldIDStr, &loc.Name, &loc.Slug, &loc.Type, &f.parentIDStr,
			&loc.Description, &loc.Geography, &loc.Climate, &loc.Population,
			&loc.Government, &loc.Economy, &loc.Culture, &loc.Coordinates,
			&loc.Attributes, &loc.ImageURL, &loc.CreatedAt, &loc.UpdatedAt,
		); err != nil {
			return nil, oops.With("operation", "scan location").Wrap(err)
		}

		if err := parseLocationFromFields(&f, &loc); err != nil {
			return nil, err
		}
		locations = append(locations, &loc)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate locations").Wrap(err)
	}
	return locations, nil
}

// Compile-time interface check.
var _ world.LocationRepository = (*LocationRepository)(nil)
