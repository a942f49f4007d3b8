// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world_test

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/worldcrafter/worldcrafter/internal/world"
)

// stubWorldRepo implements world.WorldRepository with injectable
// behavior. Calling a method with no function set fails loudly.
type stubWorldRepo struct {
	getFn         func(ctx context.Context, id ulid.ULID) (*world.World, error)
	getBySlugFn   func(ctx context.Context, slug string) (*world.World, error)
	createFn      func(ctx context.Context, w *world.World) error
	updateFn      func(ctx context.Context, id ulid.ULID, in world.UpdateWorldInput) (*world.World, error)
	deleteFn      func(ctx context.Context, id ulid.ULID) error
	listByOwnerFn func(ctx context.Context, userID ulid.ULID) ([]*world.World, error)
}

func (s *stubWorldRepo) Get(ctx context.Context, id ulid.ULID) (*world.World, error) {
	if s.getFn == nil {
		panic("unexpected WorldRepository.Get call")
	}
	return s.getFn(ctx, id)
}

func (s *stubWorldRepo) GetBySlug(ctx context.Context, slug string) (*world.World, error) {
	if s.getBySlugFn == nil {
		panic("unexpected WorldRepository.GetBySlug call")
	}
	return s.getBySlugFn(ctx, slug)
}

func (s *stubWorldRepo) Create(ctx context.Context, w *world.World) error {
	if s.createFn == nil {
		panic("unexpected WorldRepository.Create call")
	}
	return s.createFn(ctx, w)
}

func (s *stubWorldRepo) Update(ctx context.Context, id ulid.ULID, in world.UpdateWorldInput) (*world.World, error) {
	if s.updateFn == nil {
		panic("unexpected WorldRepository.Update call")
	}
	return s.updateFn(ctx, id, in)
}

func (s *stubWorldRepo) Delete(ctx context.Context, id ulid.ULID) error {
	if s.deleteFn == nil {
		panic("unexpected WorldRepository.Delete call")
	}
	return s.deleteFn(ctx, id)
}

func (s *stubWorldRepo) ListByOwner(ctx context.Context, userID ulid.ULID) ([]*world.World, error) {
	if s.listByOwnerFn == nil {
		panic("unexpected WorldRepository.ListByOwner call")
	}
	return s.listByOwnerFn(ctx, userID)
}

// ownedWorldRepo is a stubWorldRepo whose Get always returns a world
// owned by the given user. Most service tests only need authorization
// to pass.
func ownedWorldRepo(worldID, ownerID ulid.ULID) *stubWorldRepo {
	return &stubWorldRepo{
		getFn: func(_ context.Context, id ulid.ULID) (*world.World, error) {
			if id != worldID {
				return nil, world.ErrNotFound
			}
			return &world.World{ID: worldID, UserID: ownerID, Name: "Testhaven", Slug: "testhaven-abc123"}, nil
		},
	}
}

// stubLocationRepo implements world.LocationRepository with injectable
// behavior.
type stubLocationRepo struct {
	getFn                  func(ctx context.Context, id ulid.ULID) (*world.Location, error)
	getParentIDFn          func(ctx context.Context, id ulid.ULID) (*ulid.ULID, error)
	getParentIDForUpdateFn func(ctx context.Context, id ulid.ULID) (*ulid.ULID, error)
	getBySlugFn            func(ctx context.Context, worldID ulid.ULID, slug string) (*world.LocationNode, error)
	createFn               func(ctx context.Context, loc *world.Location) error
	updateFn               func(ctx context.Context, id ulid.ULID, in world.UpdateLocationInput) (*world.Location, error)
	deleteFn               func(ctx context.Context, id ulid.ULID) error
	listFn                 func(ctx context.Context, filters world.LocationFilters) ([]*world.LocationNode, error)
	searchFn               func(ctx context.Context, worldID ulid.ULID, tsquery string) ([]*world.SearchResult, error)
}

func (s *stubLocationRepo) Get(ctx context.Context, id ulid.ULID) (*world.Location, error) {
	if s.getFn == nil {
		panic("unexpected LocationRepository.Get call")
	}
	return s.getFn(ctx, id)
}

func (s *stubLocationRepo) GetParentID(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	if s.getParentIDFn == nil {
		panic("unexpected LocationRepository.GetParentID call")
	}
	return s.getParentIDFn(ctx, id)
}

func (s *stubLocationRepo) GetParentIDForUpdate(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	if s.getParentIDForUpdateFn == nil {
		panic("unexpected LocationRepository.GetParentIDForUpdate call")
	}
	return s.getParentIDForUpdateFn(ctx, id)
}

func (s *stubLocationRepo) GetBySlug(ctx context.Context, worldID ulid.ULID, slug string) (*world.LocationNode, error) {
	if s.getBySlugFn == nil {
		panic("unexpected LocationRepository.GetBySlug call")
	}
	return s.getBySlugFn(ctx, worldID, slug)
}

func (s *stubLocationRepo) Create(ctx context.Context, loc *world.Location) error {
	if s.createFn == nil {
		panic("unexpected LocationRepository.Create call")
	}
	return s.createFn(ctx, loc)
}

func (s *stubLocationRepo) Update(ctx context.Context, id ulid.ULID, in world.UpdateLocationInput) (*world.Location, error) {
	if s.updateFn == nil {
		panic("unexpected LocationRepository.Update call")
	}
	return s.updateFn(ctx, id, in)
}

func (s *stubLocationRepo) Delete(ctx context.Context, id ulid.ULID) error {
	if s.deleteFn == nil {
		panic("unexpected LocationRepository.Delete call")
	}
	return s.deleteFn(ctx, id)
}

func (s *stubLocationRepo) List(ctx context.Context, filters world.LocationFilters) ([]*world.LocationNode, error) {
	if s.listFn == nil {
		panic("unexpected LocationRepository.List call")
	}
	return s.listFn(ctx, filters)
}

func (s *stubLocationRepo) Search(ctx context.Context, worldID ulid.ULID, tsquery string) ([]*world.SearchResult, error) {
	if s.searchFn == nil {
		panic("unexpected LocationRepository.Search call")
	}
	return s.searchFn(ctx, worldID, tsquery)
}

// stubCharacterRepo implements world.CharacterRepository with injectable
// behavior.
type stubCharacterRepo struct {
	getFn    func(ctx context.Context, id ulid.ULID) (*world.Character, error)
	createFn func(ctx context.Context, c *world.Character) error
	updateFn func(ctx context.Context, id ulid.ULID, in world.UpdateCharacterInput) (*world.Character, error)
	deleteFn func(ctx context.Context, id ulid.ULID) error
	listFn   func(ctx context.Context, filters world.CharacterFilters) ([]*world.Character, error)
}

func (s *stubCharacterRepo) Get(ctx context.Context, id ulid.ULID) (*world.Character, error) {
	if s.getFn == nil {
		panic("unexpected CharacterRepository.Get call")
	}
	return s.getFn(ctx, id)
}

func (s *stubCharacterRepo) Create(ctx context.Context, c *world.Character) error {
	if s.createFn == nil {
		panic("unexpected CharacterRepository.Create call")
	}
	return s.createFn(ctx, c)
}

func (s *stubCharacterRepo) Update(ctx context.Context, id ulid.ULID, in world.UpdateCharacterInput) (*world.Character, error) {
	if s.updateFn == nil {
		panic("unexpected CharacterRepository.Update call")
	}
	return s.updateFn(ctx, id, in)
}

func (s *stubCharacterRepo) Delete(ctx context.Context, id ulid.ULID) error {
	if s.deleteFn == nil {
		panic("unexpected CharacterRepository.Delete call")
	}
	return s.deleteFn(ctx, id)
}

func (s *stubCharacterRepo) List(ctx context.Context, filters world.CharacterFilters) ([]*world.Character, error) {
	if s.listFn == nil {
		panic("unexpected CharacterRepository.List call")
	}
	return s.listFn(ctx, filters)
}

// recordingActivityRepo captures appended activities for assertions.
type recordingActivityRepo struct {
	mu       sync.Mutex
	appended []*world.Activity
	err      error
}

func (r *recordingActivityRepo) Append(_ context.Context, a *world.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, a)
	return nil
}

func (r *recordingActivityRepo) ListByWorld(_ context.Context, worldID ulid.ULID, limit int) ([]*world.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*world.Activity
	for i := len(r.appended) - 1; i >= 0; i-- {
		if r.appended[i].WorldID == worldID {
			out = append(out, r.appended[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *recordingActivityRepo) last() *world.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.appended) == 0 {
		return nil
	}
	return r.appended[len(r.appended)-1]
}

// passthroughTransactor runs the function directly and counts
// invocations so tests can assert an operation was transactional.
type passthroughTransactor struct {
	calls int
}

func (t *passthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
