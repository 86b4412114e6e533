package features

import (
	"errors"
	"testing"

	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() schema.EventConfig {
	return schema.EventConfig{
		Name: "Test GP",
		Drivers: []schema.DriverEntry{
			{Code: "AAA", Name: "Driver A", Team: "Red"},
			{Code: "BBB", Name: "Driver B", Team: "Red"},
			{Code: "CCC", Name: "Driver C", Team: "Blue"},
			{Code: "DDD", Name: "Driver D", Team: "Blue"},
			{Code: "EEE", Name: "Driver E", Team: "Green"},
		},
		Teams: map[string]int{"Red": 400, "Blue": 200, "Green": 0},
		Qualifying: []schema.QualifyingEntry{
			{Driver: "CCC", Time: 80.5, Grid: 3},
			{Driver: "AAA", Time: 80.0, Grid: 1},
			{Driver: "BBB", Time: 80.2, Grid: 2},
			{Driver: "DDD", Time: 80.7, Grid: 4},
			{Driver: "EEE", Time: 81.0, Grid: 5},
		},
	}
}

func TestBuildFeatures(t *testing.T) {
	medians := map[string]float64{"AAA": 90.0, "CCC": 91.0, "DDD": 93.0, "ZZZ": 99.0}

	rows, err := BuildFeatures(testEvent(), medians)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// Qualifying order is preserved
	var order []string
	for _, r := range rows {
		order = append(order, r.Driver)
	}
	assert.Equal(t, []string{"CCC", "AAA", "BBB", "DDD", "EEE"}, order)

	assert.Equal(t, schema.FeatureRow{
		Driver: "AAA", Name: "Driver A", Team: "Red", QualifyingTime: 80.0, TeamScore: 1.0,
		GridPosition: 1, LapTime: 90.0, Imputation: schema.FromHistory,
	}, rows[1])

	// Missing history takes the teammate's median
	assert.Equal(t, schema.FromTeam, rows[2].Imputation)
	assert.Equal(t, 90.0, rows[2].LapTime)

	// No teammate with history falls back to the median of all entrants with history
	assert.Equal(t, schema.FromGlobal, rows[4].Imputation)
	assert.Equal(t, 91.0, rows[4].LapTime, "ZZZ is not an entrant and does not count")
	assert.Equal(t, 0.0, rows[4].TeamScore)
	assert.Equal(t, 0.5, rows[0].TeamScore)
}

func TestBuildFeaturesTeamMedianIsAveragedForTwoTeammates(t *testing.T) {
	event := testEvent()
	event.Drivers = append(event.Drivers, schema.DriverEntry{Code: "FFF", Team: "Blue"})
	event.Qualifying = append(event.Qualifying, schema.QualifyingEntry{Driver: "FFF", Time: 82, Grid: 6})

	rows, err := BuildFeatures(event, map[string]float64{"AAA": 90, "CCC": 91, "DDD": 93})
	require.NoError(t, err)
	fff := rows[5]
	assert.Equal(t, "FFF", fff.Name, "unknown names fall back to the code")
	assert.Equal(t, schema.FromTeam, fff.Imputation)
	assert.Equal(t, 92.0, fff.LapTime)
}

func TestBuildFeaturesErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*schema.EventConfig)
		medians map[string]float64
		target  any
	}{
		{
			name:    "driver without team",
			mutate:  func(e *schema.EventConfig) { e.Drivers = e.Drivers[1:] },
			medians: map[string]float64{"CCC": 91},
			target:  new(*schema.ConfigurationError),
		},
		{
			name:    "team without points",
			mutate:  func(e *schema.EventConfig) { delete(e.Teams, "Green") },
			medians: map[string]float64{"CCC": 91},
			target:  new(*schema.ConfigurationError),
		},
		{
			name:    "no positive team points",
			mutate:  func(e *schema.EventConfig) { e.Teams = map[string]int{"Red": 0, "Blue": 0, "Green": 0} },
			medians: map[string]float64{"CCC": 91},
			target:  new(*schema.ConfigurationError),
		},
		{
			name:    "no history at all",
			mutate:  func(*schema.EventConfig) {},
			medians: map[string]float64{"ZZZ": 91},
			target:  new(*schema.DataError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent()
			tt.mutate(&event)
			_, err := BuildFeatures(event, tt.medians)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "unexpected error type %T", err)
		})
	}
}

func TestTeamScores(t *testing.T) {
	scores, err := TeamScores(map[string]int{"McLaren": 800, "Williams": 137, "Kick Sauber": 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scores["McLaren"])
	assert.InDelta(t, 0.17125, scores["Williams"], 1e-12)
	assert.Equal(t, 0.0, scores["Kick Sauber"])

	_, err = TeamScores(nil)
	assert.Error(t, err)
}

func TestBuildFeaturesIsDeterministic(t *testing.T) {
	medians := map[string]float64{"AAA": 90.0, "CCC": 91.0, "DDD": 93.0}
	first, err := BuildFeatures(testEvent(), medians)
	require.NoError(t, err)
	for range 10 {
		again, err := BuildFeatures(testEvent(), medians)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
