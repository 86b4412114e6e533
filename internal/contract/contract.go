// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/podium/schema"
)

// SessionProvider supplies lap-level timing records for a past session.
// Failures are reported as *schema.DataUnavailableError.
type SessionProvider interface {
	Laps(ctx context.Context, ref schema.SessionRef) ([]schema.LapRecord, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetLapStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking prediction runs.
type HistoryStore interface {
	// BeginRun creates a new prediction run and returns its unique ID
	BeginRun(startTime time.Time, eventName string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, result schema.PredictionResult) error

	// RecordPrediction stores one ranked entrant of a run
	RecordPrediction(runID int64, row schema.PredictionRow) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.PredictionRunRecord, error)

	// GetAllPredictions returns every recorded entrant, ordered by run and position
	GetAllPredictions() ([]schema.PredictionEntryRecord, error)

	// Close closes the underlying connection
	Close() error
}
