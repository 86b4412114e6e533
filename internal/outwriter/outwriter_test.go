package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() schema.PredictionResult {
	return schema.PredictionResult{
		Event:   "Abu Dhabi Grand Prix",
		History: schema.SessionRef{Season: 2024, Event: "Abu Dhabi", Session: "Race"},
		Summaries: []schema.DriverSectorSummary{
			{Driver: "NOR", Laps: 40, MedianLapTime: 88.4},
			{Driver: "VER", Laps: 41, MedianLapTime: 88.6},
		},
		Rows: []schema.PredictionRow{
			{
				FeatureRow:        schema.FeatureRow{Driver: "NOR", Name: "Lando Norris", Team: "McLaren", GridPosition: 1, QualifyingTime: 82.4, TeamScore: 1, LapTime: 88.4, Imputation: schema.FromHistory},
				RawPrediction:     88.9,
				PredictedTime:     87.4,
				PredictedPosition: 1,
				PointsAwarded:     25,
				ChampionshipTotal: 433,
			},
			{
				FeatureRow:        schema.FeatureRow{Driver: "ANT", Name: "Andrea Kimi Antonelli", Team: "Mercedes", GridPosition: 2, QualifyingTime: 82.7, TeamScore: 0.5, LapTime: 88.5, Imputation: schema.FromTeam},
				RawPrediction:     89.1,
				PredictedTime:     87.6,
				PredictedPosition: 2,
				PointsAwarded:     18,
				ChampionshipTotal: 168,
			},
		},
		Championship: schema.ChampionshipResult{
			Standings: []schema.StandingEntry{{Driver: "NOR", Name: "Lando Norris", Points: 433}, {Driver: "ANT", Name: "Andrea Kimi Antonelli", Points: 168}},
			Champion:  schema.StandingEntry{Driver: "NOR", Name: "Lando Norris", Points: 433},
		},
		Diagnostics: schema.Diagnostics{RegressionMSE: 0.0123456, PositionMSE: 2.5, HasPositionMSE: true, ComparedEntrants: 2},
	}
}

func textConfig() *contract.Config {
	return &contract.Config{
		Output:       schema.TextOut,
		Precision:    3,
		Width:        120,
		CacheBackend: schema.SQLiteBackend,
	}
}

func TestWritePredictionTable(t *testing.T) {
	cfg := textConfig()
	var buf bytes.Buffer
	err := writePredictionTable(&buf, sampleResult(), cfg, createFormatter(cfg.Precision), 1500*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "PREDICTED RACE RESULTS - ABU DHABI GRAND PRIX")
	assert.Contains(t, output, "Lando Norris")
	assert.Contains(t, output, "McLaren")
	assert.Contains(t, output, "87.400")
	assert.Contains(t, output, "433")
	assert.Contains(t, output, "WORLD CHAMPION: Lando Norris (NOR) - 433 pts")
	assert.Contains(t, output, "Regression MSE (Training): 0.012346")
	assert.Contains(t, output, "Position MSE (Final Rank): 2.50")
	assert.Contains(t, output, "2024 Abu Dhabi Race (2 drivers with quick laps)")
	assert.Contains(t, output, "Cache backend: sqlite")
}

func TestWritePredictionTableWithoutActualResults(t *testing.T) {
	cfg := textConfig()
	result := sampleResult()
	result.Diagnostics.HasPositionMSE = false

	var buf bytes.Buffer
	require.NoError(t, writePredictionTable(&buf, result, cfg, createFormatter(cfg.Precision), time.Second))
	assert.Contains(t, buf.String(), "Position MSE (Final Rank): n/a")
}

func TestWritePredictionCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePredictionCSV(&buf, sampleResult().Rows, createFormatter(2)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, predictionHeader, records[0])
	assert.Equal(t, []string{"1", "NOR", "Lando Norris", "McLaren", "1", "82.40", "1.00", "88.40", "history", "88.90", "87.40", "25", "433"}, records[1])
	assert.Equal(t, "team", records[2][8])
}

func TestWritePredictionResultsToFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		output schema.OutputMode
		check  func(t *testing.T, data []byte)
	}{
		{"json", schema.JSONOut, func(t *testing.T, data []byte) {
			var got schema.PredictionResult
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, sampleResult(), got)
		}},
		{"csv", schema.CSVOut, func(t *testing.T, data []byte) {
			assert.True(t, strings.HasPrefix(string(data), "position,driver,name"))
		}},
		{"parquet", schema.ParquetOut, func(t *testing.T, data []byte) {
			assert.Equal(t, "PAR1", string(data[:4]))
		}},
		{"text", schema.TextOut, func(t *testing.T, data []byte) {
			assert.Contains(t, string(data), "WORLD CHAMPION")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := textConfig()
			cfg.Output = tt.output
			cfg.OutputFile = filepath.Join(dir, "result."+tt.name)
			require.NoError(t, NewOutWriter().WritePrediction(sampleResult(), cfg, time.Second))

			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			tt.check(t, data)
		})
	}
}

func sampleEvent() schema.EventConfig {
	return schema.EventConfig{
		Name:    "Test Grand Prix",
		Season:  2025,
		History: schema.SessionRef{Season: 2024, Event: "Test", Session: "Race"},
		Drivers: []schema.DriverEntry{
			{Code: "NOR", Name: "Lando Norris", Team: "McLaren"},
			{Code: "VER", Name: "Max Verstappen", Team: "Red Bull Racing"},
		},
		Teams:       map[string]int{"McLaren": 800, "Red Bull Racing": 400},
		Standings:   map[string]int{"NOR": 408, "VER": 396},
		Qualifying:  []schema.QualifyingEntry{{Driver: "VER", Time: 82.207, Grid: 1}, {Driver: "NOR", Time: 82.408, Grid: 2}},
		ActualOrder: []string{"VER", "NOR"},
	}
}

func TestWriteEventTable(t *testing.T) {
	cfg := textConfig()
	event := sampleEvent()

	var buf bytes.Buffer
	require.NoError(t, writeEventTable(&buf, event, gridOrder(event.Qualifying), cfg, createFormatter(cfg.Precision)))

	output := buf.String()
	assert.Contains(t, output, "Test Grand Prix (2025) - history from 2024 Test Race")
	assert.Contains(t, output, "Max Verstappen")
	assert.Contains(t, output, "82.207")
	assert.Contains(t, output, "396")
	assert.Contains(t, output, "0.500")
	assert.Contains(t, output, "Actual results known for 2 entrants")
}

func TestWriteEventTableWithoutTeamPoints(t *testing.T) {
	cfg := textConfig()
	event := sampleEvent()
	event.Teams = map[string]int{"McLaren": 0, "Red Bull Racing": 0}

	var buf bytes.Buffer
	require.NoError(t, writeEventTable(&buf, event, gridOrder(event.Qualifying), cfg, createFormatter(cfg.Precision)))
	assert.Contains(t, buf.String(), "Lando Norris")
}

func TestWriteEntrantCSV(t *testing.T) {
	event := sampleEvent()
	var buf bytes.Buffer
	require.NoError(t, writeEntrantCSV(&buf, event, gridOrder(event.Qualifying), createFormatter(3)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, entrantHeader, records[0])
	assert.Equal(t, []string{"1", "VER", "Max Verstappen", "Red Bull Racing", "82.207", "396"}, records[1])
	assert.Equal(t, []string{"2", "NOR", "Lando Norris", "McLaren", "82.408", "408"}, records[2])
}

func TestWriteEventTablesParquetUnsupported(t *testing.T) {
	cfg := textConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "event.parquet")
	assert.Error(t, NewOutWriter().WriteEvent(sampleEvent(), cfg))
}

func TestWriteEventTablesJSON(t *testing.T) {
	cfg := textConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, NewOutWriter().WriteEvent(sampleEvent(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var got schema.EventConfig
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sampleEvent(), got)
}

var sampleLaps = []schema.LapRecord{
	{Driver: "NOR", LapNumber: 2, LapTime: 88.3, Sector1: 17.6, Sector2: 38.3, Sector3: 32.4, Valid: true},
	{Driver: "NOR", LapNumber: 3, LapTime: 105, Sector1: 30, Sector2: 40, Sector3: 35, Valid: false},
}

func TestWriteLapTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLapTable(&buf, sampleLaps, createFormatter(3)))

	output := buf.String()
	assert.Contains(t, output, "88.300")
	assert.Contains(t, output, "false")
	assert.Contains(t, output, "2 laps (1 valid)")
}

func TestWriteLapRecordsToFile(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []schema.OutputMode{schema.JSONOut, schema.CSVOut, schema.ParquetOut, schema.TextOut} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := textConfig()
			cfg.Output = mode
			cfg.OutputFile = filepath.Join(dir, "laps."+string(mode))
			require.NoError(t, NewOutWriter().WriteLaps(sampleLaps, cfg))

			info, err := os.Stat(cfg.OutputFile)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{80, 10},
		{100, 15},
		{200, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetMaxTableNameWidth(&contract.Config{Width: tt.width}))
	}
}

func TestCreateFormatter(t *testing.T) {
	assert.Equal(t, "1.23", createFormatter(2)(1.234))
	assert.Equal(t, "2", createFormatter(0)(1.5))
}
