//go:build basic

package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPredictFromLapsFile runs a full prediction offline and verifies the output contract.
func TestPredictFromLapsFile(t *testing.T) {
	home := t.TempDir()
	out := filepath.Join(t.TempDir(), "result.json")

	_, err := runPodium(t, home, "predict",
		"--provider", "file", "--laps-file", writeLapsFile(t),
		"--cache-backend", "none", "--output", "json", "--output-file", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result schema.PredictionResult
	require.NoError(t, json.Unmarshal(data, &result))

	require.Len(t, result.Rows, 20)
	for i, r := range result.Rows {
		assert.Equal(t, i+1, r.PredictedPosition)
		if r.PredictedPosition > 10 {
			assert.Zero(t, r.PointsAwarded)
		}
	}
	assert.Equal(t, result.Championship.Standings[0], result.Championship.Champion)
	assert.True(t, result.Diagnostics.HasPositionMSE)
	assert.Equal(t, schema.FromTeam, findRow(result, "ANT").Imputation)
	assert.Equal(t, schema.FromGlobal, findRow(result, "BOR").Imputation)
}

// TestPredictTextOutput checks the console report.
func TestPredictTextOutput(t *testing.T) {
	output, err := runPodium(t, t.TempDir(), "predict",
		"--provider", "file", "--laps-file", writeLapsFile(t),
		"--cache-backend", "none", "--color", "no", "--width", "160")
	require.NoError(t, err)

	assert.Contains(t, output, "PREDICTED RACE RESULTS - 2025 ABU DHABI GRAND PRIX")
	assert.Contains(t, output, "WORLD CHAMPION:")
	assert.Contains(t, output, "Regression MSE (Training):")
	assert.Contains(t, output, "Position MSE (Final Rank):")
}

// TestPredictWithOpenF1AndSQLite fetches laps over HTTP, caches them, and records runs.
func TestPredictWithOpenF1AndSQLite(t *testing.T) {
	home := t.TempDir()
	srv, lapRequests := fakeOpenF1(t)
	args := []string{"predict", "--openf1-url", srv.URL, "--history-backend", "sqlite", "--output", "csv", "--output-file", filepath.Join(t.TempDir(), "out.csv")}

	_, err := runPodium(t, home, args...)
	require.NoError(t, err)
	_, err = runPodium(t, home, args...)
	require.NoError(t, err)
	assert.Equal(t, int32(1), lapRequests.Load(), "second run should be served from the lap cache")

	status, err := runPodium(t, home, "history", "status", "--history-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 2")

	export := filepath.Join(t.TempDir(), "runs")
	_, err = runPodium(t, home, "history", "export", "--history-backend", "sqlite", "--output-file", export)
	require.NoError(t, err)
	assert.FileExists(t, export+".prediction_runs.parquet")
	assert.FileExists(t, export+".predictions.parquet")

	cache, err := runPodium(t, home, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, cache, "Total Entries: 1")
}

// TestEventAndLapsCommands covers the table inspection commands.
func TestEventAndLapsCommands(t *testing.T) {
	home := t.TempDir()
	out := filepath.Join(t.TempDir(), "event.csv")
	_, err := runPodium(t, home, "event", "--output", "csv", "--output-file", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 21)

	laps, err := runPodium(t, home, "laps", "--provider", "file", "--laps-file", writeLapsFile(t), "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, laps, "75 laps (60 valid)")

	version, err := runPodium(t, home, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(version, "podium CLI"))
}

func findRow(result schema.PredictionResult, driver string) schema.PredictionRow {
	for _, r := range result.Rows {
		if r.Driver == driver {
			return r
		}
	}
	return schema.PredictionRow{}
}
