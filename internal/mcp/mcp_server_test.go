package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/iocache"
	mcp_internal "github.com/huangsam/podium/internal/mcp"
	"github.com/huangsam/podium/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileBackedConfig serves the default event with a small laps file.
func fileBackedConfig(t *testing.T) *contract.Config {
	t.Helper()
	laps := []schema.LapRecord{
		{Driver: "NOR", LapNumber: 2, LapTime: 88.2, Sector1: 17.6, Sector2: 38.3, Sector3: 32.3, Valid: true},
		{Driver: "NOR", LapNumber: 3, LapTime: 88.4, Sector1: 17.7, Sector2: 38.3, Sector3: 32.4, Valid: true},
		{Driver: "VER", LapNumber: 2, LapTime: 88.1, Sector1: 17.5, Sector2: 38.2, Sector3: 32.4, Valid: true},
		{Driver: "LEC", LapNumber: 2, LapTime: 88.9, Sector1: 17.8, Sector2: 38.5, Sector3: 32.6, Valid: true},
		{Driver: "LEC", LapNumber: 3, LapTime: 101.0, Sector1: 25.0, Sector2: 40.0, Sector3: 36.0, Valid: false},
	}
	data, err := json.Marshal(laps)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "laps.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	event, err := contract.LoadEventConfig("")
	require.NoError(t, err)
	return &contract.Config{
		Event:     event.WithDefaults(),
		Provider:  schema.FileProvider,
		LapsFile:  path,
		Precision: 3,
		Output:    schema.JSONOut,
	}
}

func callTool(t *testing.T, baseCfg *contract.Config, mgr contract.CacheManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := fileBackedConfig(t)

	// Create a dummy manager, though we shouldn't hit it because we test validation errors
	var mgr contract.CacheManager

	t.Run("predict_race missing event file", func(t *testing.T) {
		res := callTool(t, baseCfg, mgr, "predict_race", map[string]any{
			"event_file": filepath.Join(t.TempDir(), "missing.yaml"),
		})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "invalid event parameters")
	})

	t.Run("get_laps missing session", func(t *testing.T) {
		res := callTool(t, baseCfg, mgr, "get_laps", map[string]any{"history_event": "Abu Dhabi"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "history_season and history_event are required")
	})

	t.Run("get_event invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o600))
		res := callTool(t, baseCfg, mgr, "get_event", map[string]any{"event_file": path})
		assert.True(t, res.IsError)
	})
}

func TestMCPServerPredictRace(t *testing.T) {
	baseCfg := fileBackedConfig(t)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(nil) // No run tracking for test

	res := callTool(t, baseCfg, mgr, "predict_race", map[string]any{"limit": 3.0})
	require.False(t, res.IsError, resultText(res))

	var result schema.PredictionResult
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &result))
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, contract.DefaultEventName, result.Event)
	assert.NotEmpty(t, result.Championship.Champion.Driver)
	assert.Len(t, result.Championship.Standings, 20)
	mgr.AssertExpectations(t)
}

func TestMCPServerGetEvent(t *testing.T) {
	res := callTool(t, fileBackedConfig(t), nil, "get_event", map[string]any{})
	require.False(t, res.IsError)

	var event schema.EventConfig
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &event))
	assert.Equal(t, contract.DefaultEventName, event.Name)
	assert.Len(t, event.Qualifying, 20)
}

func TestMCPServerGetLaps(t *testing.T) {
	res := callTool(t, fileBackedConfig(t), nil, "get_laps", map[string]any{
		"history_season": 2024.0,
		"history_event":  "Abu Dhabi",
		"driver":         "lec",
	})
	require.False(t, res.IsError, resultText(res))

	var laps []schema.LapRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &laps))
	require.Len(t, laps, 2)
	assert.Equal(t, "LEC", laps[0].Driver)
}
