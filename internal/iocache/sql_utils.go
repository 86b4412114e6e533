package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/huangsam/podium/schema"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName guards the table names that are interpolated into SQL.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern.String())
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// driverName maps a backend to its database/sql driver.
func driverName(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// openDatabase opens and pings a connection for a SQL backend.
// SQLite falls back to defaultPath when connStr is empty.
func openDatabase(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	var hint string
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = defaultPath
		}
		hint = fmt.Sprintf("Ensure the directory of %q is writable", connStr)
	case schema.MySQLBackend:
		hint = "Check connection format: user:password@tcp(host:port)/dbname?parseTime=true"
	case schema.PostgreSQLBackend:
		hint = "Check connection format: host=localhost port=5432 user=postgres dbname=mydb"
	default:
		return nil, fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := sql.Open(driverName(backend), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w. %s", backend, err, hint)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, hint)
	}
	return db, nil
}

// placeholders returns n positional parameters in the backend's dialect.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// timeScanner scans a time column stored natively or as RFC3339 text.
type timeScanner struct {
	backend schema.DatabaseBackend
	text    sql.NullString
	native  sql.NullTime
}

func (ts *timeScanner) target() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.text
	}
	return &ts.native
}

func (ts *timeScanner) value() (*time.Time, error) {
	if ts.backend == schema.SQLiteBackend {
		if !ts.text.Valid {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, ts.text.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time %q: %w", ts.text.String, err)
		}
		return &t, nil
	}
	if !ts.native.Valid {
		return nil, nil
	}
	t := ts.native.Time
	return &t, nil
}
