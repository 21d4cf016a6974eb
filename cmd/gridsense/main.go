// GridSense Core - Energy Monitoring Platform
//
// This is the main entry point for the GridSense Core application, a
// multi-tenant energy monitoring service: users register accounts, enrol
// their devices, and record energy readings that only they can query.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gridsense/gridsense-core/migrations"

	"github.com/gridsense/gridsense-core/internal/api"
	"github.com/gridsense/gridsense-core/internal/audit"
	"github.com/gridsense/gridsense-core/internal/auth"
	"github.com/gridsense/gridsense-core/internal/device"
	"github.com/gridsense/gridsense-core/internal/infrastructure/config"
	"github.com/gridsense/gridsense-core/internal/infrastructure/database"
	"github.com/gridsense/gridsense-core/internal/infrastructure/influxdb"
	"github.com/gridsense/gridsense-core/internal/infrastructure/logging"
	"github.com/gridsense/gridsense-core/internal/usage"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GridSense Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. Validation fails fast here when the signing
	// secret is missing or left at the dev default in production.
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Wire up repositories and services
	userRepo := auth.NewSQLiteUserRepository(db.DB)
	authSvc := auth.NewService(userRepo, cfg.Security.JWT.Secret, cfg.AccessTokenTTL())

	deviceRepo := device.NewSQLiteRepository(db.DB)

	// Connect to InfluxDB (optional usage telemetry mirror)
	var influxClient *influxdb.Client
	var mirror usage.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	ledger := usage.NewLedger(deviceRepo, usage.NewSQLiteRepository(db.DB), mirror, log)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Auth:    authSvc,
		Devices: deviceRepo,
		Ledger:  ledger,
		Audit:   audit.NewSQLiteRepository(db.DB),
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, server, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. Database

	log.Info("GridSense Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRIDSENSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRIDSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			// The mirror is best-effort; losing it is not fatal
			if !errors.Is(err, influxdb.ErrNotConnected) {
				return fmt.Errorf("influxdb: %w", err)
			}
		}
	}

	return nil
}
