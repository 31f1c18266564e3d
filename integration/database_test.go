//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts req and returns host:port of its first exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseBackends runs the full persistence lifecycle against env.
func exerciseBackends(t *testing.T, env map[string]string) {
	t.Helper()
	sample := writeSample(t)
	env["HOME"] = t.TempDir() // shared by every run so sqlite files persist

	_, err := runCommand(t, env, "cache", "clear")
	require.NoError(t, err)

	if env["TRANSCOMPLEX_ANALYSIS_BACKEND"] != "" {
		_, err = runCommand(t, env, "analysis", "clear")
		require.NoError(t, err)
	}

	// Run twice so the second pass reads from the cache
	for range 2 {
		_, err = runCommand(t, env, "batch", "--split", "line", "--output", "json", sample)
		require.NoError(t, err)
	}

	out, err := runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Total Entries: %d", len(sampleLines)))

	if env["TRANSCOMPLEX_ANALYSIS_BACKEND"] != "" {
		out, err = runCommand(t, env, "analysis", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Total Runs: 2")
	}
}

// TestScoringWithMySQL tests the CLI with a MySQL backend.
func TestScoringWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "transcomplex",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/transcomplex?parseTime=true", host, port)
	exerciseBackends(t, map[string]string{
		"TRANSCOMPLEX_CACHE_BACKEND":       "mysql",
		"TRANSCOMPLEX_CACHE_DB_CONNECT":    connStr,
		"TRANSCOMPLEX_ANALYSIS_BACKEND":    "mysql",
		"TRANSCOMPLEX_ANALYSIS_DB_CONNECT": connStr,
	})
}

// TestScoringWithPostgres tests the CLI with a PostgreSQL backend.
func TestScoringWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	exerciseBackends(t, map[string]string{
		"TRANSCOMPLEX_CACHE_BACKEND":       "postgresql",
		"TRANSCOMPLEX_CACHE_DB_CONNECT":    connStr,
		"TRANSCOMPLEX_ANALYSIS_BACKEND":    "postgresql",
		"TRANSCOMPLEX_ANALYSIS_DB_CONNECT": connStr,
	})
}

// TestScoringWithRedis tests the CLI with a Redis result cache and SQLite run history.
func TestScoringWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	exerciseBackends(t, map[string]string{
		"TRANSCOMPLEX_CACHE_BACKEND":    "redis",
		"TRANSCOMPLEX_CACHE_DB_CONNECT": fmt.Sprintf("redis://%s:%s/0", host, port),
		"TRANSCOMPLEX_ANALYSIS_BACKEND": "sqlite",
	})
}
