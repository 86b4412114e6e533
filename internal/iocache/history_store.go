package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
)

// Table names for run history.
const (
	predictionRunsTable = "podium_prediction_runs"
	predictionsTable    = "podium_predictions"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{predictionRunsTable, predictionsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		predictionRunsTable: getCreateRunsQuery(backend),
		predictionsTable:    getCreatePredictionsQuery(backend),
	}
	for _, table := range historyTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for podium_prediction_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(predictionRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				event_name VARCHAR(255) NOT NULL,
				total_entrants INT NOT NULL DEFAULT 0,
				champion VARCHAR(16),
				regression_mse DOUBLE,
				position_mse DOUBLE,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				event_name TEXT NOT NULL,
				total_entrants INT NOT NULL DEFAULT 0,
				champion TEXT,
				regression_mse DOUBLE PRECISION,
				position_mse DOUBLE PRECISION,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				event_name TEXT NOT NULL,
				total_entrants INTEGER NOT NULL DEFAULT 0,
				champion TEXT,
				regression_mse REAL,
				position_mse REAL,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreatePredictionsQuery returns the CREATE TABLE query for podium_predictions.
func getCreatePredictionsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(predictionsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				driver VARCHAR(16) NOT NULL,
				team VARCHAR(100) NOT NULL,
				grid_position INT NOT NULL,
				qualifying_time DOUBLE NOT NULL,
				team_score DOUBLE NOT NULL,
				target_lap_time DOUBLE NOT NULL,
				imputation VARCHAR(16) NOT NULL,
				predicted_time DOUBLE NOT NULL,
				predicted_position INT NOT NULL,
				points_awarded INT NOT NULL,
				championship_total INT NOT NULL,
				PRIMARY KEY (run_id, driver)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				driver TEXT NOT NULL,
				team TEXT NOT NULL,
				grid_position INT NOT NULL,
				qualifying_time DOUBLE PRECISION NOT NULL,
				team_score DOUBLE PRECISION NOT NULL,
				target_lap_time DOUBLE PRECISION NOT NULL,
				imputation TEXT NOT NULL,
				predicted_time DOUBLE PRECISION NOT NULL,
				predicted_position INT NOT NULL,
				points_awarded INT NOT NULL,
				championship_total INT NOT NULL,
				PRIMARY KEY (run_id, driver)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				driver TEXT NOT NULL,
				team TEXT NOT NULL,
				grid_position INTEGER NOT NULL,
				qualifying_time REAL NOT NULL,
				team_score REAL NOT NULL,
				target_lap_time REAL NOT NULL,
				imputation TEXT NOT NULL,
				predicted_time REAL NOT NULL,
				predicted_position INTEGER NOT NULL,
				points_awarded INTEGER NOT NULL,
				championship_total INTEGER NOT NULL,
				PRIMARY KEY (run_id, driver)
			);
		`, quoted)
	}
}

// BeginRun creates a new prediction run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, eventName string, configParams map[string]any) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(predictionRunsTable, hs.backend)
	params := strings.Join(placeholders(hs.backend, 3), ", ")
	args := []any{formatTime(startTime, hs.backend), eventName, string(configJSON)}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, event_name, config_params) VALUES (%s) RETURNING run_id`, quoted, params)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, event_name, config_params) VALUES (%s)`, quoted, params)
		var result sql.Result
		if result, err = hs.db.Exec(query, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert prediction run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with its duration and headline results.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, result schema.PredictionResult) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quoted := quoteTableName(predictionRunsTable, hs.backend)
	start := timeScanner{backend: hs.backend}
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholders(hs.backend, 1)[0])
	if err := hs.db.QueryRow(selectQuery, runID).Scan(start.target()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	var positionMSE *float64
	if result.Diagnostics.HasPositionMSE {
		positionMSE = &result.Diagnostics.PositionMSE
	}

	p := placeholders(hs.backend, 7)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_entrants = %s, champion = %s,
		regression_mse = %s, position_mse = %s WHERE run_id = %s`, quoted, p[0], p[1], p[2], p[3], p[4], p[5], p[6])
	_, err = hs.db.Exec(updateQuery,
		formatTime(endTime, hs.backend), durationMs, len(result.Rows), result.Championship.Champion.Driver,
		result.Diagnostics.RegressionMSE, positionMSE, runID)
	if err != nil {
		return fmt.Errorf("failed to update prediction run: %w", err)
	}
	return nil
}

// RecordPrediction stores one ranked entrant of a run.
func (hs *HistoryStoreImpl) RecordPrediction(runID int64, row schema.PredictionRow) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	rec := schema.EntryRecordFromRow(runID, row)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, driver, team, grid_position, qualifying_time, team_score, target_lap_time,
		                imputation, predicted_time, predicted_position, points_awarded, championship_total)
		VALUES (%s)
	`, quoteTableName(predictionsTable, hs.backend), strings.Join(placeholders(hs.backend, 12), ", "))

	_, err := hs.db.Exec(query,
		rec.RunID, rec.Driver, rec.Team, rec.GridPosition, rec.QualifyingTime, rec.TeamScore, rec.TargetLapTime,
		rec.Imputation, rec.PredictedTime, rec.PredictedPosition, rec.PointsAwarded, rec.ChampionshipTotal)
	if err != nil {
		return fmt.Errorf("failed to insert prediction for %s: %w", row.Driver, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runs := quoteTableName(predictionRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalPredictions = int(status.TableSizes[predictionsTable])

	return status, nil
}

// GetAllRuns retrieves all prediction runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.PredictionRunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, event_name, total_entrants,
		champion, regression_mse, position_mse, config_params FROM %s ORDER BY run_id`,
		quoteTableName(predictionRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PredictionRunRecord
	for rows.Next() {
		var record schema.PredictionRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, start.target(), end.target(), &record.RunDurationMs, &record.EventName,
			&record.TotalEntrants, &record.Champion, &record.RegressionMSE, &record.PositionMSE, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan prediction run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction runs: %w", err)
	}
	return results, nil
}

// GetAllPredictions retrieves all recorded entrants from the store.
func (hs *HistoryStoreImpl) GetAllPredictions() ([]schema.PredictionEntryRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, driver, team, grid_position, qualifying_time, team_score, target_lap_time,
		imputation, predicted_time, predicted_position, points_awarded, championship_total
		FROM %s ORDER BY run_id, predicted_position`, quoteTableName(predictionsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PredictionEntryRecord
	for rows.Next() {
		var r schema.PredictionEntryRecord
		if err := rows.Scan(&r.RunID, &r.Driver, &r.Team, &r.GridPosition, &r.QualifyingTime, &r.TeamScore,
			&r.TargetLapTime, &r.Imputation, &r.PredictedTime, &r.PredictedPosition, &r.PointsAwarded,
			&r.ChampionshipTotal); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}
	return results, nil
}
