// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package mcp

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldcrafter/worldcrafter/internal/observability"
	"github.com/worldcrafter/worldcrafter/pkg/errutil"
)

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil, ulid.Make(), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MCP_NO_SERVICE")
}

func TestNew_RegistersTools(t *testing.T) {
	s, err := New(newFakeService(), ulid.Make(), nil)
	require.NoError(t, err)
	require.NotNil(t, s.mcp)
}

func TestObserve_CountsOutcomes(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s := &Server{
		svc:     newFakeService(),
		caller:  ulid.Make(),
		metrics: metrics,
	}

	handler := observe(s, "world_create", WorldCreateHandler(s.svc, s.caller))

	_, _, err := handler(context.Background(), nil, WorldCreateInput{Name: "Eldoria"})
	require.NoError(t, err)
	_, _, err = handler(context.Background(), nil, WorldCreateInput{Name: ""})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("world_create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("world_create", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("world_create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("world_create", "error")))

	// A lookup against an absent world is classed as not_found, not error.
	search := observe(s, "location_search", LocationSearchHandler(s.svc, s.caller))
	_, _, err = search(context.Background(), nil, LocationSearchInput{
		WorldID: ulid.Make().String(),
		Query:   "anything",
	})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("location_search", "not_found")))
}

func TestObserve_NilMetrics(t *testing.T) {
	s := &Server{svc: newFakeService(), caller: ulid.Make()}
	handler := observe(s, "world_list", WorldListHandler(s.svc, s.caller))

	_, result, err := handler(context.Background(), nil, WorldListInput{})
	require.NoError(t, err)
	assert.Empty(t, result.Worlds)
}
