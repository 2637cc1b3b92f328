package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/medication-identifier/aggregator"
	"github.com/giygas/medication-identifier/catalog"
	"github.com/giygas/medication-identifier/config"
	"github.com/giygas/medication-identifier/data"
	"github.com/giygas/medication-identifier/database"
	"github.com/giygas/medication-identifier/handlers"
	"github.com/giygas/medication-identifier/health"
	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
	"github.com/giygas/medication-identifier/resolver"
	"github.com/giygas/medication-identifier/scheduler"
	"github.com/giygas/medication-identifier/server"
	"github.com/giygas/medication-identifier/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	if err := run(cfg); err != nil {
		logging.Error("Server stopped with error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}

	_ = logging.Close()
}

// loadEnv reads .env from the working directory, then from the executable directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		slog.Warn("Failed to get executable path", "error", err)
		return
	}

	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		slog.Warn("Failed to change directory", "error", err)
		return
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cat := catalog.Default()
	logging.Info("Reference catalog loaded", "entries", cat.Len(), "variations", cat.VariationCount())

	res := resolver.New(store, cat, resolver.Options{
		MaxSplitDepth:     cfg.SplitMaxDepth,
		UsageTimeout:      cfg.UsageRecordTimeout,
		UnidentifiedLabel: cfg.UnidentifiedLabel,
		UnclassifiedLabel: cfg.UnclassifiedLabel,
	})

	stats := data.NewDataContainer()
	stats.SetServerStartTime(time.Now())

	interval := time.Duration(cfg.StatsIntervalMinutes) * time.Minute
	sched := scheduler.NewScheduler(store, stats, interval, cfg.StaleAfter())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(handlers.Dependencies{
		Resolver:   res,
		Aggregator: aggregator.New(res, cfg.AggregateWorkers),
		Store:      store,
		Catalog:    cat,
		Validator:  validation.NewInputValidator(cfg.MaxNameLength, cfg.AggregateMaxNames),
		Health:     health.NewHealthChecker(store, cat, stats, interval),
		Stats:      stats,
	})

	srv := server.NewServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Let pending usage writes reach the store before it closes
	res.Wait()
	return nil
}

// openStore builds the configured learned mapping store. The returned func
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config) (interfaces.MappingStore, func(), error) {
	if cfg.StoreBackend != config.StorePostgres {
		logging.Warn("Using in-memory mapping store, learned mappings are lost on restart")
		return mappings.NewMemoryStore(), func() {}, nil
	}

	if cfg.DBAutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnTimeout:     cfg.DBConnTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			logging.Warn("Failed to close database", "error", err)
		}
	}
	return mappings.NewPostgresStore(db), closeDB, nil
}
