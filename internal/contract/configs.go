package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/podium/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 3
	MaxPrecision       = 6
	DefaultOpenF1URL   = "https://api.openf1.org"
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds the runtime configuration for a prediction.
// This struct is the "final, validated" config.
type Config struct {
	EventFile string // empty means the embedded default event
	Event     schema.EventConfig

	Provider    schema.ProviderKind
	LapsFile    string
	OpenF1URL   string
	HTTPTimeout time.Duration

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Verbose    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Verbose          bool   `mapstructure:"verbose"`
	Event            string `mapstructure:"event"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`

	// --- Fields from predictCmd.Flags() ---
	Provider          string  `mapstructure:"provider"`
	LapsFile          string  `mapstructure:"laps-file"`
	OpenF1URL         string  `mapstructure:"openf1-url"`
	HTTPTimeout       string  `mapstructure:"http-timeout"`
	HistorySeason     int     `mapstructure:"history-season"`
	HistoryEvent      string  `mapstructure:"history-event"`
	HistorySession    string  `mapstructure:"history-session"`
	QuickLapThreshold float64 `mapstructure:"quick-lap-threshold"`
	CalibrationOffset string  `mapstructure:"calibration-offset"`
}

// Clone returns a copy of the Config struct whose event tables can be changed freely.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Event = CloneEvent(c.Event)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. The event tables are loaded last so
// history overrides apply on top of them.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateProvider(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processEvent(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// validateProvider checks where historical laps will be read from.
func validateProvider(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.ProviderKind(strings.ToLower(input.Provider))
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be openf1, file", input.Provider)
	}

	cfg.LapsFile = strings.TrimSpace(input.LapsFile)
	if cfg.Provider == schema.FileProvider && cfg.LapsFile == "" {
		return fmt.Errorf("--laps-file is required when using the %s provider", schema.FileProvider)
	}

	cfg.OpenF1URL = strings.TrimRight(strings.TrimSpace(input.OpenF1URL), "/")
	if cfg.OpenF1URL == "" {
		cfg.OpenF1URL = DefaultOpenF1URL
	}
	if u, err := url.Parse(cfg.OpenF1URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid openf1 url '%s'", input.OpenF1URL)
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.HTTPTimeout != "" {
		d, err := time.ParseDuration(input.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid --http-timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("http timeout must be positive (received %s)", d)
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history tables live in different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processEvent loads the event tables and applies command-line overrides.
func processEvent(cfg *Config, input *ConfigRawInput) error {
	cfg.EventFile = strings.TrimSpace(input.Event)
	event, err := LoadEventConfig(cfg.EventFile)
	if err != nil {
		return err
	}

	if input.HistorySeason != 0 {
		event.History.Season = input.HistorySeason
	}
	if input.HistoryEvent != "" {
		event.History.Event = input.HistoryEvent
	}
	if input.HistorySession != "" {
		event.History.Session = input.HistorySession
	}
	if input.QuickLapThreshold != 0 {
		if input.QuickLapThreshold < 1 {
			return fmt.Errorf("quick lap threshold must be at least 1 (received %v)", input.QuickLapThreshold)
		}
		event.QuickLapThreshold = input.QuickLapThreshold
	}
	if input.CalibrationOffset != "" {
		var offset float64
		if _, err := fmt.Sscanf(input.CalibrationOffset, "%g", &offset); err != nil {
			return fmt.Errorf("invalid --calibration-offset '%s': %w", input.CalibrationOffset, err)
		}
		event.CalibrationOffset = &offset
	}

	if event.History.Season == 0 || event.History.Event == "" {
		return schema.NewConfigurationError("event %q does not name a historical session", event.Name)
	}
	if event.History.Session == "" {
		event.History.Session = "Race"
	}

	cfg.Event = event.WithDefaults()
	return nil
}

// RevalidateEvent swaps in another event file and historical session for a cloned config.
// Empty values keep what the config already holds.
func RevalidateEvent(cfg *Config, eventFile string, history schema.SessionRef) error {
	if eventFile = strings.TrimSpace(eventFile); eventFile != "" {
		event, err := LoadEventConfig(eventFile)
		if err != nil {
			return err
		}
		cfg.EventFile = eventFile
		cfg.Event = event.WithDefaults()
	}
	if history.Season != 0 {
		cfg.Event.History.Season = history.Season
	}
	if history.Event != "" {
		cfg.Event.History.Event = history.Event
	}
	if history.Session != "" {
		cfg.Event.History.Session = history.Session
	}
	if cfg.Event.History.Season == 0 || cfg.Event.History.Event == "" {
		return schema.NewConfigurationError("event %q does not name a historical session", cfg.Event.Name)
	}
	if cfg.Event.History.Session == "" {
		cfg.Event.History.Session = "Race"
	}
	return nil
}
