// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

//go:build integration

package mcp_test

import (
	"context"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	mcptools "github.com/worldcrafter/worldcrafter/internal/mcp"
)

var _ = Describe("Worldbuilding tools", Ordered, func() {
	var (
		ctx       context.Context
		worldID   string
		worldSlug string
		kingdom   mcptools.LocationPayload
		city      mcptools.LocationPayload
		tavern    mcptools.LocationPayload
	)

	BeforeAll(func() {
		ctx = context.Background()
	})

	It("creates a world with a generated slug", func() {
		handler := mcptools.WorldCreateHandler(env.svc, env.caller)
		_, w, err := handler(ctx, nil, mcptools.WorldCreateInput{
			Name:        "Eldoria",
			Description: "A high-fantasy setting of feuding river kingdoms.",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Name).To(Equal("Eldoria"))
		Expect(w.Slug).To(MatchRegexp(`^eldoria-[0-9a-z]{6}$`))
		worldID = w.ID
		worldSlug = w.Slug
	})

	It("fetches a world by slug", func() {
		handler := mcptools.WorldGetHandler(env.svc, env.caller)
		_, w, err := handler(ctx, nil, mcptools.WorldGetInput{Slug: worldSlug})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.ID).To(Equal(worldID))

		_, _, err = handler(ctx, nil, mcptools.WorldGetInput{Slug: "no-such-world"})
		Expect(err).To(MatchError(ContainSubstring("not found")))
	})

	It("lists the caller's worlds", func() {
		handler := mcptools.WorldListHandler(env.svc, env.caller)
		_, result, err := handler(ctx, nil, mcptools.WorldListInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Worlds).To(HaveLen(1))
		Expect(result.Worlds[0].ID).To(Equal(worldID))
	})

	It("builds a location hierarchy", func() {
		handler := mcptools.LocationCreateHandler(env.svc, env.caller)

		var err error
		_, kingdom, err = handler(ctx, nil, mcptools.LocationCreateInput{
			WorldID: worldID,
			Name:    "Kingdom of Eldoria",
			Type:    "kingdom",
		})
		Expect(err).NotTo(HaveOccurred())

		_, city, err = handler(ctx, nil, mcptools.LocationCreateInput{
			WorldID:  worldID,
			Name:     "Silverhold",
			Type:     "city",
			ParentID: kingdom.ID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(city.ParentID).To(Equal(kingdom.ID))

		_, tavern, err = handler(ctx, nil, mcptools.LocationCreateInput{
			WorldID:     worldID,
			Name:        "The Gilded Griffin",
			Type:        "tavern",
			ParentID:    city.ID,
			Description: "A rowdy tavern by the silver gates.",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a parent from a different world", func() {
		createWorld := mcptools.WorldCreateHandler(env.svc, env.caller)
		_, other, err := createWorld(ctx, nil, mcptools.WorldCreateInput{Name: "Otherrealm"})
		Expect(err).NotTo(HaveOccurred())

		handler := mcptools.LocationCreateHandler(env.svc, env.caller)
		_, _, err = handler(ctx, nil, mcptools.LocationCreateInput{
			WorldID:  other.ID,
			Name:     "Orphan Keep",
			ParentID: kingdom.ID,
		})
		Expect(err).To(MatchError(ContainSubstring("parent location not found")))
	})

	It("gets a location with parent and children attached", func() {
		handler := mcptools.LocationGetHandler(env.svc, env.caller)
		_, node, err := handler(ctx, nil, mcptools.LocationGetInput{
			WorldID: worldID,
			Slug:    city.Slug,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(node.Parent).NotTo(BeNil())
		Expect(node.Parent.ID).To(Equal(kingdom.ID))
		Expect(node.Children).To(HaveLen(1))
		Expect(node.Children[0].ID).To(Equal(tavern.ID))
	})

	It("lists root locations only", func() {
		handler := mcptools.LocationListHandler(env.svc, env.caller)
		_, result, err := handler(ctx, nil, mcptools.LocationListInput{
			WorldID:   worldID,
			RootsOnly: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Locations).To(HaveLen(1))
		Expect(result.Locations[0].ID).To(Equal(kingdom.ID))
	})

	It("refuses to make a location its own ancestor", func() {
		handler := mcptools.LocationUpdateHandler(env.svc, env.caller)
		parentID := tavern.ID
		_, _, err := handler(ctx, nil, mcptools.LocationUpdateInput{
			LocationID: kingdom.ID,
			ParentID:   &parentID,
		})
		Expect(err).To(MatchError(ContainSubstring("circular hierarchy")))
	})

	It("renames a location without changing its slug", func() {
		handler := mcptools.LocationUpdateHandler(env.svc, env.caller)
		name := "The Gilded Griffin Inn"
		_, updated, err := handler(ctx, nil, mcptools.LocationUpdateInput{
			LocationID: tavern.ID,
			Name:       &name,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("The Gilded Griffin Inn"))
		Expect(updated.Slug).To(Equal(tavern.Slug))
	})

	It("searches locations by prefix with ranked results", func() {
		handler := mcptools.LocationSearchHandler(env.svc, env.caller)
		_, result, err := handler(ctx, nil, mcptools.LocationSearchInput{
			WorldID: worldID,
			Query:   "gild",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Results).To(HaveLen(1))
		Expect(result.Results[0].ID).To(Equal(tavern.ID))
		Expect(result.Results[0].Rank).To(BeNumerically(">", 0))
	})

	It("places a character at a location", func() {
		create := mcptools.CharacterCreateHandler(env.svc, env.caller)
		_, c, err := create(ctx, nil, mcptools.CharacterCreateInput{
			WorldID:    worldID,
			Name:       "Marta Coppervein",
			Role:       "innkeeper",
			LocationID: tavern.ID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.LocationID).To(Equal(tavern.ID))

		list := mcptools.CharacterListHandler(env.svc, env.caller)
		_, result, err := list(ctx, nil, mcptools.CharacterListInput{
			WorldID:    worldID,
			LocationID: tavern.ID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Characters).To(HaveLen(1))
		Expect(result.Characters[0].Name).To(Equal("Marta Coppervein"))
	})

	It("deletes a subtree and detaches its characters", func() {
		handler := mcptools.LocationDeleteHandler(env.svc, env.caller)
		_, result, err := handler(ctx, nil, mcptools.LocationDeleteInput{LocationID: city.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Deleted).To(BeTrue())

		get := mcptools.LocationGetHandler(env.svc, env.caller)
		_, _, err = get(ctx, nil, mcptools.LocationGetInput{WorldID: worldID, Slug: tavern.Slug})
		Expect(err).To(MatchError(ContainSubstring("not found")))

		list := mcptools.CharacterListHandler(env.svc, env.caller)
		_, chars, err := list(ctx, nil, mcptools.CharacterListInput{WorldID: worldID})
		Expect(err).NotTo(HaveOccurred())
		Expect(chars.Characters).To(HaveLen(1))
		Expect(chars.Characters[0].LocationID).To(BeEmpty())
	})

	It("records the session in the activity feed", func() {
		handler := mcptools.ActivityListHandler(env.svc, env.caller)
		_, result, err := handler(ctx, nil, mcptools.ActivityListInput{
			WorldID: worldID,
			Limit:   50,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Activities).NotTo(BeEmpty())
		Expect(result.Activities[0].Action).To(Equal("deleted"))
	})

	It("denies tool calls from a different identity", func() {
		stranger := mcptools.WorldListHandler(env.svc, ulid.Make())
		_, result, err := stranger(ctx, nil, mcptools.WorldListInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Worlds).To(BeEmpty())

		search := mcptools.LocationSearchHandler(env.svc, ulid.Make())
		_, _, err = search(ctx, nil, mcptools.LocationSearchInput{WorldID: worldID, Query: "gild"})
		Expect(err).To(MatchError(ContainSubstring("permission")))
	})
})
