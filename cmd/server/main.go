/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load YAML config if given
  2. Open the SQLite store
  3. Seed the leave type catalog and holiday set (idempotent)
  4. Wire ledger, calendar, and engine
  5. Start the chi server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file path (optional)
  -addr    Listen address, overrides config (default from config, :8080)
  -db      SQLite database path, overrides config
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: YAML configuration
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "YAML config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", slog.Any("error", err))
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	catalog := leave.NewCatalog(store)
	if err := catalog.Seed(ctx, cfg.LeaveTypes()); err != nil {
		logger.Error("failed to seed leave type catalog", slog.Any("error", err))
		os.Exit(1)
	}

	holidays, err := loadHolidays(ctx, store, cfg)
	if err != nil {
		logger.Error("failed to load holidays", slog.Any("error", err))
		os.Exit(1)
	}

	ledger := leave.NewBalanceLedger(store, store)
	calendar := leave.NewBusinessCalendar(holidays)
	engine := leave.NewEngine(store, ledger, calendar,
		&leave.LogNotifier{Logger: logger},
		&leave.LogAuditLog{Logger: logger},
		logger)

	handler := api.NewHandler(engine, catalog, holidays, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadHolidays merges configured holiday dates into the store and builds the
// in-memory set the calendar reads from.
func loadHolidays(ctx context.Context, store leave.HolidayStore, cfg *config.Config) (*leave.HolidaySet, error) {
	existing, err := store.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, h := range existing {
		known[h.Date.Format("2006-01-02")] = true
	}

	for _, hc := range cfg.Holidays {
		if known[hc.Date] {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", hc.Date, time.UTC)
		if err != nil {
			return nil, err
		}
		if err := store.PutHoliday(ctx, &leave.Holiday{
			ID:   uuid.NewString(),
			Date: date,
			Name: hc.Name,
		}); err != nil {
			return nil, err
		}
	}

	all, err := store.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(all))
	for _, h := range all {
		dates = append(dates, h.Date)
	}
	return leave.NewHolidaySet(dates...), nil
}
