/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults below
  2. .env file in the working directory, if present
  3. REVENUE_* environment variables (REVENUE_PORT, REVENUE_DB_DRIVER, ...)
  4. Command-line flags (-port, -db, -db-driver, -database-url, -log-level)

EXAMPLES:
  # SQLite file database
  ./server -db="./data/revenue.db"

  # PostgreSQL
  REVENUE_DB_DRIVER=postgres REVENUE_DATABASE_URL=postgres://... ./server
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port            int
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	LogLevel        slog.Level
	CORSOrigins     []string
	Currency        string
	EnableScenarios bool
}

// Load reads configuration for the server from defaults, .env, the
// environment and args (usually os.Args[1:]).
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("db_path", "revenue.db")
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "http://localhost:5173,http://localhost:8080")
	v.SetDefault("currency", "KES")
	v.SetDefault("enable_scenarios", false)
	v.SetEnvPrefix("REVENUE")
	v.AutomaticEnv()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	port := fs.Int("port", v.GetInt("port"), "HTTP server port")
	dbPath := fs.String("db", v.GetString("db_path"), "SQLite database path (\":memory:\" for in-memory)")
	driver := fs.String("db-driver", v.GetString("db_driver"), "database driver: sqlite or postgres")
	dbURL := fs.String("database-url", v.GetString("database_url"), "PostgreSQL connection URL")
	level := fs.String("log-level", v.GetString("log_level"), "debug, info, warn or error")
	scenarios := fs.Bool("scenarios", v.GetBool("enable_scenarios"), "expose demo scenario endpoints")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:            *port,
		DBDriver:        strings.ToLower(*driver),
		DBPath:          *dbPath,
		DatabaseURL:     *dbURL,
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		Currency:        strings.ToUpper(v.GetString("currency")),
		EnableScenarios: *scenarios,
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", *level, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("sqlite driver requires a database path")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres driver requires REVENUE_DATABASE_URL or -database-url")
		}
	default:
		return fmt.Errorf("unknown db driver %q", c.DBDriver)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code, got %q", c.Currency)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
