package schema

import "time"

// PredictionRunRecord represents a row from the podium_prediction_runs table.
type PredictionRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	EventName     string
	TotalEntrants int32
	Champion      *string
	RegressionMSE *float64
	PositionMSE   *float64
	ConfigParams  *string
}

// PredictionEntryRecord represents a row from the podium_predictions table.
type PredictionEntryRecord struct {
	RunID             int64
	Driver            string
	Team              string
	GridPosition      int32
	QualifyingTime    float64
	TeamScore         float64
	TargetLapTime     float64
	Imputation        string
	PredictedTime     float64
	PredictedPosition int32
	PointsAwarded     int32
	ChampionshipTotal int32
}

// EntryRecordFromRow converts a prediction row into its stored form.
func EntryRecordFromRow(runID int64, row PredictionRow) PredictionEntryRecord {
	return PredictionEntryRecord{
		RunID:             runID,
		Driver:            row.Driver,
		Team:              row.Team,
		GridPosition:      int32(row.GridPosition),
		QualifyingTime:    row.QualifyingTime,
		TeamScore:         row.TeamScore,
		TargetLapTime:     row.LapTime,
		Imputation:        string(row.Imputation),
		PredictedTime:     row.PredictedTime,
		PredictedPosition: int32(row.PredictedPosition),
		PointsAwarded:     int32(row.PointsAwarded),
		ChampionshipTotal: int32(row.ChampionshipTotal),
	}
}
