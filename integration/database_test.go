//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPodiumWithMySQL tests the podium CLI with a MySQL backend.
func TestPodiumWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "podium",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/podium?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestPodiumWithPostgres tests the podium CLI with a PostgreSQL backend.
func TestPodiumWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario caches laps and records runs in one database, then inspects and clears it.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()

	// Set environment variables
	for key, value := range map[string]string{
		"PODIUM_CACHE_BACKEND":      backend,
		"PODIUM_CACHE_DB_CONNECT":   connStr,
		"PODIUM_HISTORY_BACKEND":    backend,
		"PODIUM_HISTORY_DB_CONNECT": connStr,
	} {
		t.Setenv(key, value)
	}

	home := t.TempDir()
	srv, lapRequests := fakeOpenF1(t)

	_, err := runPodium(t, home, "cache", "clear")
	require.NoError(t, err)
	_, err = runPodium(t, home, "history", "clear")
	require.NoError(t, err)

	for range 2 {
		_, err = runPodium(t, home, "predict", "--openf1-url", srv.URL, "--output", "json", "--output-file", filepath.Join(t.TempDir(), "out.json"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), lapRequests.Load(), "second run should be served from the lap cache")

	cache, err := runPodium(t, home, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, cache, "Total Entries: 1")

	history, err := runPodium(t, home, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, history, "Total Runs: 2")
	assert.Contains(t, history, "Total Predictions: 40")

	export := filepath.Join(t.TempDir(), "runs")
	_, err = runPodium(t, home, "history", "export", "--output-file", export)
	require.NoError(t, err)
	info, err := os.Stat(export + ".predictions.parquet")
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = runPodium(t, home, "history", "clear")
	require.NoError(t, err)
}
