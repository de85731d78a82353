/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the revenue target and performance tracking server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, .env, REVENUE_* env, flags)
  2. Open the SQLite or PostgreSQL store
  3. Wire the aggregator to the credit-case and legal-case ledgers
  4. Create the engine and API handler
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/revenue.db"

  # Run with in-memory database and demo scenarios
  ./server -db=":memory:" -scenarios

  # Run against PostgreSQL
  ./server -db-driver=postgres -database-url="postgres://localhost/revenue"

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go, store/postgres/postgres.go: Database implementations
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/revenue-engine/api"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/config"
	"github.com/warp/revenue-engine/revenue"
	"github.com/warp/revenue-engine/store/postgres"
	"github.com/warp/revenue-engine/store/sqlite"
)

// storage is what both database backends provide.
type storage interface {
	revenue.TargetStore
	cases.PaymentLedger
	Reset(ctx context.Context) error
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	aggregator := revenue.NewAggregator(cases.Sources(store)...)
	engine := revenue.NewEngine(store, aggregator, logger)

	handler := api.NewHandler(engine, store, cfg.Currency, logger)
	if cfg.EnableScenarios {
		handler.EnableScenarios(store.Reset)
	}

	router := api.NewRouter(handler, api.HeaderResolver{}, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db_driver", cfg.DBDriver, "scenarios", cfg.EnableScenarios)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.DBPath)
	}
}
