package schema

import (
	"math"
	"sort"
)

// DriverEntry ties a driver code to a full name and a team.
type DriverEntry struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Team string `yaml:"team" json:"team"`
}

// QualifyingEntry is one entrant of the target event.
type QualifyingEntry struct {
	Driver string  `yaml:"driver" json:"driver"`
	Time   float64 `yaml:"time" json:"time"` // seconds
	Grid   int     `yaml:"grid" json:"grid"` // 1 = pole
}

// ModelParams are the boosted-tree hyper-parameters.
type ModelParams struct {
	Estimators     int     `yaml:"estimators" json:"estimators"`
	LearningRate   float64 `yaml:"learning_rate" json:"learning_rate"`
	MaxDepth       int     `yaml:"max_depth" json:"max_depth"`
	Lambda         float64 `yaml:"lambda" json:"lambda"`
	MinChildWeight float64 `yaml:"min_child_weight" json:"min_child_weight"`
}

// DefaultModelParams returns the hyper-parameters used when an event leaves them unset.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Estimators:     1000,
		LearningRate:   0.01,
		MaxDepth:       4,
		Lambda:         1,
		MinChildWeight: 1,
	}
}

// EventConfig holds every static table for one target event.
type EventConfig struct {
	Name              string            `yaml:"name" json:"name"`
	Season            int               `yaml:"season" json:"season"`
	History           SessionRef        `yaml:"history" json:"history"`
	Drivers           []DriverEntry     `yaml:"drivers" json:"drivers"`
	Teams             map[string]int    `yaml:"teams" json:"teams"`         // team name -> season points
	Standings         map[string]int    `yaml:"standings" json:"standings"` // driver code -> pre-race points
	Qualifying        []QualifyingEntry `yaml:"qualifying" json:"qualifying"`
	ActualOrder       []string          `yaml:"actual_order,omitempty" json:"actual_order,omitempty"`
	PointsTable       []int             `yaml:"points_table,omitempty" json:"points_table,omitempty"`
	CalibrationOffset *float64          `yaml:"calibration_offset,omitempty" json:"calibration_offset,omitempty"`
	QuickLapThreshold float64           `yaml:"quick_lap_threshold,omitempty" json:"quick_lap_threshold,omitempty"`
	Model             ModelParams       `yaml:"model,omitempty" json:"model"`
}

// WithDefaults returns a copy of the event with unset tunables filled in.
func (e EventConfig) WithDefaults() EventConfig {
	out := e
	if len(out.PointsTable) == 0 {
		out.PointsTable = append([]int(nil), DefaultPointsTable...)
	}
	if out.CalibrationOffset == nil {
		offset := DefaultCalibrationOffset
		out.CalibrationOffset = &offset
	}
	if out.QuickLapThreshold == 0 {
		out.QuickLapThreshold = DefaultQuickLapThreshold
	}
	def := DefaultModelParams()
	if out.Model.Estimators == 0 {
		out.Model.Estimators = def.Estimators
	}
	if out.Model.LearningRate == 0 {
		out.Model.LearningRate = def.LearningRate
	}
	if out.Model.MaxDepth == 0 {
		out.Model.MaxDepth = def.MaxDepth
	}
	if out.Model.Lambda == 0 {
		out.Model.Lambda = def.Lambda
	}
	if out.Model.MinChildWeight == 0 {
		out.Model.MinChildWeight = def.MinChildWeight
	}
	return out
}

// Offset returns the calibration offset, falling back to the default.
func (e EventConfig) Offset() float64 {
	if e.CalibrationOffset == nil {
		return DefaultCalibrationOffset
	}
	return *e.CalibrationOffset
}

// Validate checks the structural rules of the tables. Joins between tables
// (entrant to team, team to points) are checked when features are built.
func (e EventConfig) Validate() error {
	if len(e.Qualifying) == 0 {
		return NewConfigurationError("event %q has no qualifying entrants", e.Name)
	}
	seen := make(map[string]struct{}, len(e.Qualifying))
	grids := make(map[int]struct{}, len(e.Qualifying))
	n := len(e.Qualifying)
	for _, q := range e.Qualifying {
		if q.Driver == "" {
			return NewConfigurationError("qualifying entry without a driver code")
		}
		if _, dup := seen[q.Driver]; dup {
			return NewConfigurationError("driver %s appears twice in qualifying", q.Driver)
		}
		seen[q.Driver] = struct{}{}
		if math.IsNaN(q.Time) || math.IsInf(q.Time, 0) || q.Time <= 0 {
			return NewConfigurationError("driver %s has invalid qualifying time %v", q.Driver, q.Time)
		}
		if q.Grid < 1 || q.Grid > n {
			return NewConfigurationError("driver %s has grid position %d outside 1..%d", q.Driver, q.Grid, n)
		}
		if _, dup := grids[q.Grid]; dup {
			return NewConfigurationError("grid position %d is assigned twice", q.Grid)
		}
		grids[q.Grid] = struct{}{}
	}
	for _, p := range e.PointsTable {
		if p < 0 {
			return NewConfigurationError("points table has negative value %d", p)
		}
	}
	if e.QuickLapThreshold != 0 && e.QuickLapThreshold < 1 {
		return NewConfigurationError("quick lap threshold must be at least 1, got %v", e.QuickLapThreshold)
	}
	if e.Model.Estimators < 0 || e.Model.MaxDepth < 0 {
		return NewConfigurationError("model estimators and depth must not be negative")
	}
	if e.Model.LearningRate < 0 || e.Model.LearningRate > 1 {
		return NewConfigurationError("learning rate must be in (0,1], got %v", e.Model.LearningRate)
	}
	if e.Model.Lambda < 0 || e.Model.MinChildWeight < 0 {
		return NewConfigurationError("lambda and min child weight must not be negative")
	}
	return nil
}

// DriverTeams maps driver code to team name.
func (e EventConfig) DriverTeams() map[string]string {
	out := make(map[string]string, len(e.Drivers))
	for _, d := range e.Drivers {
		if d.Team != "" {
			out[d.Code] = d.Team
		}
	}
	return out
}

// DriverName returns the full name for a code, or the code itself when unknown.
func (e EventConfig) DriverName(code string) string {
	for _, d := range e.Drivers {
		if d.Code == code && d.Name != "" {
			return d.Name
		}
	}
	return code
}

// TeamNames returns the team names sorted by points descending, then name.
func (e EventConfig) TeamNames() []string {
	names := make([]string, 0, len(e.Teams))
	for name := range e.Teams {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if e.Teams[names[i]] != e.Teams[names[j]] {
			return e.Teams[names[i]] > e.Teams[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
