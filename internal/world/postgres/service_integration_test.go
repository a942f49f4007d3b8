// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldcrafter/worldcrafter/internal/world"
	"github.com/worldcrafter/worldcrafter/internal/world/postgres"
)

func newTestService() *world.Service {
	return world.NewService(world.ServiceConfig{
		WorldRepo:     postgres.NewWorldRepository(testPool),
		LocationRepo:  postgres.NewLocationRepository(testPool),
		CharacterRepo: postgres.NewCharacterRepository(testPool),
		ActivityRepo:  postgres.NewActivityRepository(testPool),
		Transactor:    postgres.NewTransactor(testPool),
	})
}

// TestService_EndToEnd drives a full worldbuilding session against the
// real database: build a world, grow a location tree, rearrange it,
// search it, and tear part of it down.
func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := ulid.Make()
	stranger := ulid.Make()

	w, err := svc.CreateWorld(ctx, owner, world.CreateWorldInput{
		Name:        "Eldoria",
		Description: "A high-fantasy setting of feuding river kingdoms.",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = svc.DeleteWorld(context.Background(), owner, w.ID)
	})

	kingdom, err := svc.CreateLocation(ctx, owner, world.CreateLocationInput{
		WorldID: w.ID,
		Name:    "Kingdom of Eldoria",
		Type:    "kingdom",
	})
	require.NoError(t, err)

	city, err := svc.CreateLocation(ctx, owner, world.CreateLocationInput{
		WorldID:  w.ID,
		Name:     "Silverhold",
		Type:     "city",
		ParentID: &kingdom.ID,
	})
	require.NoError(t, err)

	tavern, err := svc.CreateLocation(ctx, owner, world.CreateLocationInput{
		WorldID:     w.ID,
		Name:        "The Gilded Griffin",
		Type:        "tavern",
		ParentID:    &city.ID,
		Description: "A rowdy tavern by the silver gates.",
	})
	require.NoError(t, err)

	t.Run("stranger cannot touch the world", func(t *testing.T) {
		_, err := svc.GetWorld(ctx, stranger, w.ID)
		assert.ErrorIs(t, err, world.ErrPermissionDenied)

		_, err = svc.ListLocations(ctx, stranger, world.LocationFilters{WorldID: w.ID})
		assert.ErrorIs(t, err, world.ErrPermissionDenied)
	})

	t.Run("re-parenting onto a descendant is rejected", func(t *testing.T) {
		_, err := svc.UpdateLocation(ctx, owner, kingdom.ID, world.UpdateLocationInput{
			Parent: world.SetParent(tavern.ID),
		})
		assert.ErrorIs(t, err, world.ErrCircularHierarchy)

		// The tree is unchanged.
		parent, gerr := svc.GetLocation(ctx, owner, w.ID, kingdom.Slug)
		require.NoError(t, gerr)
		assert.Nil(t, parent.Parent)
	})

	t.Run("re-parenting within the tree succeeds", func(t *testing.T) {
		moved, err := svc.UpdateLocation(ctx, owner, tavern.ID, world.UpdateLocationInput{
			Parent: world.SetParent(kingdom.ID),
		})
		require.NoError(t, err)
		require.NotNil(t, moved.ParentID)
		assert.Equal(t, kingdom.ID, *moved.ParentID)

		// Move it back under the city for the rest of the scenario.
		_, err = svc.UpdateLocation(ctx, owner, tavern.ID, world.UpdateLocationInput{
			Parent: world.SetParent(city.ID),
		})
		require.NoError(t, err)
	})

	t.Run("search finds locations by name and description", func(t *testing.T) {
		results, err := svc.SearchLocations(ctx, owner, w.ID, "gilded")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, tavern.ID, results[0].ID)

		results, err = svc.SearchLocations(ctx, owner, w.ID, "rowdy tavern")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, tavern.ID, results[0].ID)
	})

	t.Run("characters live at locations", func(t *testing.T) {
		c, err := svc.CreateCharacter(ctx, owner, world.CreateCharacterInput{
			WorldID:    w.ID,
			Name:       "Marta Coppervein",
			Role:       "innkeeper",
			LocationID: &tavern.ID,
		})
		require.NoError(t, err)

		chars, err := svc.ListCharacters(ctx, owner, world.CharacterFilters{
			WorldID:    w.ID,
			LocationID: &tavern.ID,
		})
		require.NoError(t, err)
		require.Len(t, chars, 1)
		assert.Equal(t, c.ID, chars[0].ID)
	})

	t.Run("deleting a subtree removes descendants and detaches characters", func(t *testing.T) {
		require.NoError(t, svc.DeleteLocation(ctx, owner, city.ID))

		nodes, err := svc.ListLocations(ctx, owner, world.LocationFilters{WorldID: w.ID})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, kingdom.ID, nodes[0].ID)

		chars, err := svc.ListCharacters(ctx, owner, world.CharacterFilters{WorldID: w.ID})
		require.NoError(t, err)
		require.Len(t, chars, 1)
		assert.Nil(t, chars[0].LocationID)
	})

	t.Run("activity feed records the session", func(t *testing.T) {
		acts, err := svc.ListActivities(ctx, owner, w.ID, 50)
		require.NoError(t, err)
		require.NotEmpty(t, acts)

		var actions []world.Action
		for _, a := range acts {
			actions = append(actions, a.Action)
		}
		assert.Contains(t, actions, world.ActionCreated)
		assert.Contains(t, actions, world.ActionUpdated)
		assert.Contains(t, actions, world.ActionDeleted)

		// Most recent first; the subtree delete is the newest entry.
		assert.Equal(t, world.ActionDeleted, acts[0].Action)
	})
}

// TestService_ConcurrentReparent races two opposing re-parents of the
// same pair of locations. The row locks taken by the cycle walk force
// one side to wait for (or deadlock against) the other, so at most one
// write can land; without them both could validate against the old
// chain and jointly commit a cycle.
func TestService_ConcurrentReparent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	locations := postgres.NewLocationRepository(testPool)
	owner := ulid.Make()

	w, err := svc.CreateWorld(ctx, owner, world.CreateWorldInput{Name: "Racewood"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = svc.DeleteWorld(context.Background(), owner, w.ID)
	})

	alpha, err := svc.CreateLocation(ctx, owner, world.CreateLocationInput{
		WorldID: w.ID,
		Name:    "Alpha Keep",
		Type:    "keep",
	})
	require.NoError(t, err)
	beta, err := svc.CreateLocation(ctx, owner, world.CreateLocationInput{
		WorldID: w.ID,
		Name:    "Bastion Rock",
		Type:    "keep",
	})
	require.NoError(t, err)

	for range 10 {
		_, err = svc.UpdateLocation(ctx, owner, alpha.ID, world.UpdateLocationInput{Parent: world.ClearParent()})
		require.NoError(t, err)
		_, err = svc.UpdateLocation(ctx, owner, beta.ID, world.UpdateLocationInput{Parent: world.ClearParent()})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = svc.UpdateLocation(ctx, owner, alpha.ID, world.UpdateLocationInput{Parent: world.SetParent(beta.ID)})
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = svc.UpdateLocation(ctx, owner, beta.ID, world.UpdateLocationInput{Parent: world.SetParent(alpha.ID)})
		}()
		wg.Wait()

		alphaParent, err := locations.GetParentID(ctx, alpha.ID)
		require.NoError(t, err)
		betaParent, err := locations.GetParentID(ctx, beta.ID)
		require.NoError(t, err)
		if alphaParent != nil && betaParent != nil {
			t.Fatalf("both re-parents committed, hierarchy has a cycle (errs: %v, %v)", errs[0], errs[1])
		}
	}
}
