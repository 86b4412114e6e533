package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/podium/core"
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// historyArgs reads the optional historical session overrides of a request.
func historyArgs(request mcp.CallToolRequest) schema.SessionRef {
	return schema.SessionRef{
		Season:  request.GetInt("history_season", 0),
		Event:   request.GetString("history_event", ""),
		Session: request.GetString("history_session", ""),
	}
}

func (h *toolHandler) handlePredictRace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateEvent(cfg, request.GetString("event_file", ""), historyArgs(request)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid event parameters: %v", err)), nil
	}

	result, _, err := core.GetPredictionResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(result.Rows) {
		result.Rows = result.Rows[:l]
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetEvent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateEvent(cfg, request.GetString("event_file", ""), schema.SessionRef{}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid event parameters: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(cfg.Event, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetLaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history := historyArgs(request)
	if history.Season == 0 || history.Event == "" {
		return mcp.NewToolResultError("history_season and history_event are required"), nil
	}
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateEvent(cfg, "", history); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid session parameters: %v", err)), nil
	}

	laps, err := core.GetLaps(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lap retrieval failed: %v", err)), nil
	}
	if driver := strings.ToUpper(request.GetString("driver", "")); driver != "" {
		filtered := laps[:0]
		for _, lap := range laps {
			if lap.Driver == driver {
				filtered = append(filtered, lap)
			}
		}
		laps = filtered
	}

	jsonData, _ := json.MarshalIndent(laps, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
