package schema_test

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() schema.EventConfig {
	return schema.EventConfig{
		Name:   "Test GP",
		Season: 2025,
		Drivers: []schema.DriverEntry{
			{Code: "AAA", Name: "Alpha Driver", Team: "Red"},
			{Code: "BBB", Name: "Beta Driver", Team: "Blue"},
		},
		Teams:     map[string]int{"Red": 100, "Blue": 50},
		Standings: map[string]int{"AAA": 10, "BBB": 5},
		Qualifying: []schema.QualifyingEntry{
			{Driver: "AAA", Time: 79.0, Grid: 1},
			{Driver: "BBB", Time: 79.1, Grid: 2},
		},
	}
}

func TestEventConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *schema.EventConfig)
		wantErr bool
	}{
		{"valid", func(e *schema.EventConfig) {}, false},
		{"no entrants", func(e *schema.EventConfig) { e.Qualifying = nil }, true},
		{"duplicate driver", func(e *schema.EventConfig) { e.Qualifying[1].Driver = "AAA" }, true},
		{"duplicate grid", func(e *schema.EventConfig) { e.Qualifying[1].Grid = 1 }, true},
		{"grid out of range", func(e *schema.EventConfig) { e.Qualifying[1].Grid = 3 }, true},
		{"zero time", func(e *schema.EventConfig) { e.Qualifying[0].Time = 0 }, true},
		{"nan time", func(e *schema.EventConfig) { e.Qualifying[0].Time = math.NaN() }, true},
		{"negative points", func(e *schema.EventConfig) { e.PointsTable = []int{25, -1} }, true},
		{"threshold below one", func(e *schema.EventConfig) { e.QuickLapThreshold = 0.9 }, true},
		{"learning rate too high", func(e *schema.EventConfig) { e.Model.LearningRate = 2 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleEvent()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr {
				var cfgErr *schema.ConfigurationError
				assert.True(t, errors.As(err, &cfgErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEventConfigWithDefaults(t *testing.T) {
	e := sampleEvent().WithDefaults()
	assert.Equal(t, schema.DefaultPointsTable, e.PointsTable)
	require.NotNil(t, e.CalibrationOffset)
	assert.Equal(t, 1.5, *e.CalibrationOffset)
	assert.Equal(t, 1.07, e.QuickLapThreshold)
	assert.Equal(t, schema.DefaultModelParams(), e.Model)

	zero := 0.0
	custom := sampleEvent()
	custom.CalibrationOffset = &zero
	custom.Model.Estimators = 10
	custom = custom.WithDefaults()
	assert.Equal(t, 0.0, custom.Offset())
	assert.Equal(t, 10, custom.Model.Estimators)
	assert.Equal(t, 4, custom.Model.MaxDepth)
}

func TestEventConfigLookups(t *testing.T) {
	e := sampleEvent()
	assert.Equal(t, map[string]string{"AAA": "Red", "BBB": "Blue"}, e.DriverTeams())
	assert.Equal(t, "Beta Driver", e.DriverName("BBB"))
	assert.Equal(t, "ZZZ", e.DriverName("ZZZ"))
	assert.Equal(t, []string{"Red", "Blue"}, e.TeamNames())
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &schema.DataUnavailableError{Session: schema.SessionRef{Season: 2024, Event: "Abu Dhabi", Session: "Race"}, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "2024 Abu Dhabi Race")

	cfgErr := &schema.ConfigurationError{Msg: "bad", Err: cause}
	assert.ErrorIs(t, cfgErr, cause)
	assert.Equal(t, "data error: nan", schema.NewDataError("nan").Error())
}

func TestFeatureRowFeatures(t *testing.T) {
	row := schema.FeatureRow{QualifyingTime: 79.0, TeamScore: 0.5, GridPosition: 3}
	assert.Equal(t, []float64{79.0, 0.5, 3}, row.Features())
	assert.Len(t, schema.FeatureOrder, len(row.Features()))
}
