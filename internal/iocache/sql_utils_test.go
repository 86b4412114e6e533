package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"lap_cache", false},
		{"_private", false},
		{"Table2", false},
		{"", true},
		{"2table", true},
		{"lap-cache", true},
		{"laps; DROP TABLE x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []string{"?"}, placeholders(schema.SQLiteBackend, 1))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "mysql", driverName(schema.MySQLBackend))
	assert.Equal(t, "pgx", driverName(schema.PostgreSQLBackend))
	assert.Equal(t, "sqlite", driverName(schema.SQLiteBackend))
}

func TestTimeScanner(t *testing.T) {
	now := time.Date(2025, 12, 7, 13, 0, 0, 123, time.UTC)

	t.Run("sqlite text", func(t *testing.T) {
		ts := timeScanner{backend: schema.SQLiteBackend}
		assert.Equal(t, &ts.text, ts.target())
		ts.text.String = formatTime(now, schema.SQLiteBackend).(string)
		ts.text.Valid = true
		got, err := ts.value()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, now.Equal(*got))
	})

	t.Run("sqlite null", func(t *testing.T) {
		ts := timeScanner{backend: schema.SQLiteBackend}
		got, err := ts.value()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("sqlite garbage", func(t *testing.T) {
		ts := timeScanner{backend: schema.SQLiteBackend}
		ts.text.String = "yesterday"
		ts.text.Valid = true
		_, err := ts.value()
		assert.Error(t, err)
	})

	t.Run("native", func(t *testing.T) {
		ts := timeScanner{backend: schema.PostgreSQLBackend}
		ts.native.Time = now
		ts.native.Valid = true
		got, err := ts.value()
		require.NoError(t, err)
		assert.Equal(t, now, *got)
		assert.Equal(t, now, formatTime(now, schema.PostgreSQLBackend))
	})
}
