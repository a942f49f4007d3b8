// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/worldcrafter/worldcrafter/internal/observability"
	"github.com/worldcrafter/worldcrafter/internal/world"
)

const (
	serverName    = "worldcrafter"
	serverVersion = "0.1.0"
)

// Server wires the world service into an MCP server speaking the stdio
// transport. All tool calls act as the single configured caller
// identity.
type Server struct {
	svc     *world.Service
	caller  ulid.ULID
	metrics *observability.Metrics
	mcp     *mcp.Server
}

// New assembles an MCP server over the given world service. The caller
// identity authenticates every tool call; metrics may be nil.
func New(svc *world.Service, caller ulid.ULID, metrics *observability.Metrics) (*Server, error) {
	if svc == nil {
		return nil, oops.Code("MCP_NO_SERVICE").Errorf("world service is required")
	}

	s := &Server{
		svc:     svc,
		caller:  caller,
		metrics: metrics,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: "WorldCrafter manages fictional worlds, their location hierarchies, and characters. " +
			"Use location_search for ranked discovery and location_get for full hierarchy context.",
	})
	s.register()
	return s, nil
}

// observe wraps a tool handler to count invocations by outcome.
func observe[I, O any](s *Server, tool string, h mcp.ToolHandlerFor[I, O]) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		res, out, err := h(ctx, req, input)
		if s.metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			s.metrics.ToolCallsTotal.WithLabelValues(tool, status).Inc()
			s.metrics.OperationsTotal.WithLabelValues(tool, operationStatus(err)).Inc()
		}
		if err != nil {
			slog.Debug("tool call failed", "tool", tool, "error", err)
		}
		return res, out, err
	}
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, world.ErrPermissionDenied), errors.Is(err, world.ErrNotAuthenticated):
		return "denied"
	case errors.Is(err, world.ErrNotFound), errors.Is(err, world.ErrParentNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *Server) register() {
	mcp.AddTool(s.mcp, WorldCreateTool(), observe(s, "world_create", WorldCreateHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, WorldGetTool(), observe(s, "world_get", WorldGetHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, WorldListTool(), observe(s, "world_list", WorldListHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationCreateTool(), observe(s, "location_create", LocationCreateHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationUpdateTool(), observe(s, "location_update", LocationUpdateHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationDeleteTool(), observe(s, "location_delete", LocationDeleteHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationListTool(), observe(s, "location_list", LocationListHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationGetTool(), observe(s, "location_get", LocationGetHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, LocationSearchTool(), observe(s, "location_search", LocationSearchHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, CharacterCreateTool(), observe(s, "character_create", CharacterCreateHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, CharacterListTool(), observe(s, "character_list", CharacterListHandler(s.svc, s.caller)))
	mcp.AddTool(s.mcp, ActivityListTool(), observe(s, "activity_list", ActivityListHandler(s.svc, s.caller)))
}

// Run serves MCP over stdin/stdout until the client disconnects or the
// context is canceled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("mcp server starting", "transport", "stdio", "caller", s.caller.String())
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return oops.Code("MCP_SERVE_FAILED").Wrapf(err, "serving mcp over stdio")
	}
	return nil
}
