// Package parquet provides data structures and functions for reading lap data from
// and exporting podium results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/podium/schema"
	"github.com/parquet-go/parquet-go"
)

// Lap is one historical lap. Files with this layout can feed the file provider.
type Lap struct {
	Driver    string  `parquet:"driver,snappy"`
	LapNumber int32   `parquet:"lap_number,snappy"`
	LapTime   float64 `parquet:"lap_time,snappy"`
	Sector1   float64 `parquet:"sector_1,snappy"`
	Sector2   float64 `parquet:"sector_2,snappy"`
	Sector3   float64 `parquet:"sector_3,snappy"`
	Valid     bool    `parquet:"valid"`
}

// ResultRow is one ranked entrant of a single prediction.
type ResultRow struct {
	Event             string  `parquet:"event,snappy,dict"`
	PredictedPosition int32   `parquet:"predicted_position,snappy"`
	Driver            string  `parquet:"driver,snappy"`
	Name              string  `parquet:"name,snappy"`
	Team              string  `parquet:"team,snappy,dict"`
	GridPosition      int32   `parquet:"grid_position,snappy"`
	QualifyingTime    float64 `parquet:"qualifying_time,snappy"`
	TeamScore         float64 `parquet:"team_score,snappy"`
	TargetLapTime     float64 `parquet:"target_lap_time,snappy"`
	Imputation        string  `parquet:"imputation,snappy,dict"`
	RawPrediction     float64 `parquet:"raw_prediction,snappy"`
	PredictedTime     float64 `parquet:"predicted_time,snappy"`
	PointsAwarded     int32   `parquet:"points_awarded,snappy"`
	ChampionshipTotal int32   `parquet:"championship_total,snappy"`
}

// PredictionRun maps to the podium_prediction_runs database table.
type PredictionRun struct {
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is stored as TIMESTAMP with nanosecond precision
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int32   `parquet:"run_duration_ms,optional,snappy"`
	EventName     string   `parquet:"event_name,snappy"`
	TotalEntrants int32    `parquet:"total_entrants,snappy"`
	Champion      *string  `parquet:"champion,optional,snappy"`
	RegressionMSE *float64 `parquet:"regression_mse,optional,snappy"`
	PositionMSE   *float64 `parquet:"position_mse,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PredictionEntry maps to the podium_predictions database table.
type PredictionEntry struct {
	RunID             int64   `parquet:"run_id,snappy"`
	Driver            string  `parquet:"driver,snappy"`
	Team              string  `parquet:"team,snappy"`
	GridPosition      int32   `parquet:"grid_position,snappy"`
	QualifyingTime    float64 `parquet:"qualifying_time,snappy"`
	TeamScore         float64 `parquet:"team_score,snappy"`
	TargetLapTime     float64 `parquet:"target_lap_time,snappy"`
	Imputation        string  `parquet:"imputation,snappy"`
	PredictedTime     float64 `parquet:"predicted_time,snappy"`
	PredictedPosition int32   `parquet:"predicted_position,snappy"`
	PointsAwarded     int32   `parquet:"points_awarded,snappy"`
	ChampionshipTotal int32   `parquet:"championship_total,snappy"`
}

// writeParquet writes rows to w with a schema derived from T's struct tags.
func writeParquet[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeParquetFile creates outputPath and writes rows to it.
func writeParquetFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeParquet(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// readParquetFile reads every row of path into a slice of T.
func readParquetFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	total := 0
	for total < len(rows) {
		n, err := reader.Read(rows[total:])
		total += n
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet file: %w", err)
		}
	}
	return rows[:total], nil
}

// WriteLapsParquet writes lap records to a Parquet file.
func WriteLapsParquet(laps []schema.LapRecord, outputPath string) error {
	return writeParquetFile(convertLaps(laps), outputPath)
}

// WriteLaps writes lap records to w.
func WriteLaps(w io.Writer, laps []schema.LapRecord) error {
	return writeParquet(w, convertLaps(laps))
}

func convertLaps(laps []schema.LapRecord) []Lap {
	rows := make([]Lap, len(laps))
	for i, l := range laps {
		rows[i] = Lap{
			Driver:    l.Driver,
			LapNumber: int32(l.LapNumber),
			LapTime:   l.LapTime,
			Sector1:   l.Sector1,
			Sector2:   l.Sector2,
			Sector3:   l.Sector3,
			Valid:     l.Valid,
		}
	}
	return rows
}

// ReadLapsParquet reads lap records from a Parquet file.
func ReadLapsParquet(path string) ([]schema.LapRecord, error) {
	rows, err := readParquetFile[Lap](path)
	if err != nil {
		return nil, err
	}
	laps := make([]schema.LapRecord, len(rows))
	for i, r := range rows {
		laps[i] = schema.LapRecord{
			Driver:    r.Driver,
			LapNumber: int(r.LapNumber),
			LapTime:   r.LapTime,
			Sector1:   r.Sector1,
			Sector2:   r.Sector2,
			Sector3:   r.Sector3,
			Valid:     r.Valid,
		}
	}
	return laps, nil
}

// WriteResults writes the ranked rows of one prediction to w.
func WriteResults(w io.Writer, result schema.PredictionResult) error {
	return writeParquet(w, ConvertPredictionRows(result.Event, result.Rows))
}

// ConvertPredictionRows converts ranked rows into their Parquet form.
func ConvertPredictionRows(event string, rows []schema.PredictionRow) []ResultRow {
	out := make([]ResultRow, len(rows))
	for i, r := range rows {
		out[i] = ResultRow{
			Event:             event,
			PredictedPosition: int32(r.PredictedPosition),
			Driver:            r.Driver,
			Name:              r.Name,
			Team:              r.Team,
			GridPosition:      int32(r.GridPosition),
			QualifyingTime:    r.QualifyingTime,
			TeamScore:         r.TeamScore,
			TargetLapTime:     r.LapTime,
			Imputation:        string(r.Imputation),
			RawPrediction:     r.RawPrediction,
			PredictedTime:     r.PredictedTime,
			PointsAwarded:     int32(r.PointsAwarded),
			ChampionshipTotal: int32(r.ChampionshipTotal),
		}
	}
	return out
}

// WritePredictionRunsParquet writes prediction runs to a Parquet file.
func WritePredictionRunsParquet(data []PredictionRun, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WritePredictionEntriesParquet writes recorded entrants to a Parquet file.
func WritePredictionEntriesParquet(data []PredictionEntry, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// ConvertPredictionRunRecords converts schema.PredictionRunRecord to PredictionRun for Parquet export.
func ConvertPredictionRunRecords(records []schema.PredictionRunRecord) []PredictionRun {
	result := make([]PredictionRun, len(records))
	for i, r := range records {
		result[i] = PredictionRun{
			RunID:         r.RunID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			EventName:     r.EventName,
			TotalEntrants: r.TotalEntrants,
			Champion:      r.Champion,
			RegressionMSE: r.RegressionMSE,
			PositionMSE:   r.PositionMSE,
			ConfigParams:  r.ConfigParams,
		}
	}
	return result
}

// ConvertPredictionEntryRecords converts schema.PredictionEntryRecord to PredictionEntry for Parquet export.
func ConvertPredictionEntryRecords(records []schema.PredictionEntryRecord) []PredictionEntry {
	result := make([]PredictionEntry, len(records))
	for i, r := range records {
		result[i] = PredictionEntry(r)
	}
	return result
}
