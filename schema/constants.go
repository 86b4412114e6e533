package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// ProviderKind represents where historical lap data comes from.
	ProviderKind string

	// Imputation describes how a feature row obtained its lap-time target.
	Imputation string

	// FeatureName identifies one model input column.
	FeatureName string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All lap providers supported.
const (
	OpenF1Provider ProviderKind = "openf1" // default
	FileProvider   ProviderKind = "file"
)

// Imputation sources, in order of preference.
const (
	FromHistory Imputation = "history"
	FromTeam    Imputation = "team"
	FromGlobal  Imputation = "global"
)

// Model input columns, in the order the predictor consumes them.
const (
	QualifyingFeature FeatureName = "qualifying_time"
	TeamScoreFeature  FeatureName = "team_score"
	GridFeature       FeatureName = "grid_position"
)

// FeatureOrder lists the predictor's input columns in matrix order.
var FeatureOrder = []FeatureName{QualifyingFeature, TeamScoreFeature, GridFeature}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid lap providers.
var ValidProviders = map[ProviderKind]struct{}{
	OpenF1Provider: {},
	FileProvider:   {},
}

// DefaultPointsTable is the top-ten points system without a fastest-lap bonus.
var DefaultPointsTable = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// Defaults for event-level tunables.
const (
	DefaultCalibrationOffset = 1.5
	DefaultQuickLapThreshold = 1.07
)
