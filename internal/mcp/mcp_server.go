// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/podium/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Podium MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Podium Race Prediction Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_race ---
	s.AddTool(mcp.NewTool("predict_race",
		mcp.WithDescription("Predict the finishing order, points and projected champion of a race from qualifying and historical laps."),
		mcp.WithString("event_file", mcp.Description("Path to an event tables YAML file (defaults to the configured event).")),
		mcp.WithNumber("history_season", mcp.Description("Season of the historical session to learn from.")),
		mcp.WithString("history_event", mcp.Description("Event name or location of the historical session.")),
		mcp.WithString("history_session", mcp.Description("Session name of the historical session, e.g. 'Race'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of result rows returned.")),
	), h.handlePredictRace)

	// --- 2. Tool: get_event ---
	s.AddTool(mcp.NewTool("get_event",
		mcp.WithDescription("Show the entrants, teams, standings and qualifying of an event."),
		mcp.WithString("event_file", mcp.Description("Path to an event tables YAML file (defaults to the configured event).")),
	), h.handleGetEvent)

	// --- 3. Tool: get_laps ---
	s.AddTool(mcp.NewTool("get_laps",
		mcp.WithDescription("Fetch lap records of a historical session."),
		mcp.WithNumber("history_season", mcp.Description("Season of the historical session."), mcp.Required()),
		mcp.WithString("history_event", mcp.Description("Event name or location of the historical session."), mcp.Required()),
		mcp.WithString("history_session", mcp.Description("Session name, defaults to 'Race'.")),
		mcp.WithString("driver", mcp.Description("Only return laps of this driver code.")),
	), h.handleGetLaps)

	return s
}

// StartMCPServer starts the Podium MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
