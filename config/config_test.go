package config_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/config"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "revenue.db", cfg.DBPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "KES", cfg.Currency)
	assert.False(t, cfg.EnableScenarios)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSOrigins)
}

func TestLoad_EnvironmentThenFlags(t *testing.T) {
	// GIVEN: REVENUE_* variables
	// WHEN: A flag names the same setting
	// THEN: The flag wins, the rest come from the environment

	chdir(t, t.TempDir())
	t.Setenv("REVENUE_PORT", "9090")
	t.Setenv("REVENUE_LOG_LEVEL", "debug")
	t.Setenv("REVENUE_CURRENCY", "usd")
	t.Setenv("REVENUE_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load([]string{"-port", "7070", "-scenarios"})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "USD", cfg.Currency)
	assert.True(t, cfg.EnableScenarios)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := config.Load([]string{"-db-driver", "postgres"})
	assert.Error(t, err)

	cfg, err := config.Load([]string{"-db-driver", "POSTGRES", "-database-url", "postgres://localhost/revenue"})
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.DBDriver)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	for _, args := range [][]string{
		{"-port", "0"},
		{"-db-driver", "mysql"},
		{"-log-level", "chatty"},
		{"-db", ""},
	} {
		_, err := config.Load(args)
		assert.Error(t, err, "args %v", args)
	}
}
