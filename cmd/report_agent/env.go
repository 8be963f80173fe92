package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/inspection-reports/internal/config"
	"github.com/jonathan/inspection-reports/internal/db"
	"github.com/jonathan/inspection-reports/internal/localstore"
	"github.com/jonathan/inspection-reports/internal/observability"
	"github.com/jonathan/inspection-reports/internal/store"
)

var (
	configPath  string
	databaseURL string
	sqlitePath  string
	logLevel    string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Path to an on-device SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed summaries")
}

// env is what every command needs: the merged configuration and a logger.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *observability.Printer
}

// loadEnv merges defaults, the config file and flags, in that order of
// precedence from lowest to highest.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg := config.Defaults()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	switch {
	case databaseURL != "":
		cfg.DatabaseURL, cfg.SQLitePath = databaseURL, ""
	case sqlitePath != "":
		cfg.DatabaseURL, cfg.SQLitePath = "", sqlitePath
	case cfg.DatabaseURL == "" && cfg.SQLitePath == "":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &env{
		cfg:     &cfg,
		logger:  observability.NewLogger(cmd.ErrOrStderr(), cfg.SlogLevel()),
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// openStores connects to PostgreSQL or opens the SQLite file, whichever the
// configuration names. The returned func releases it.
func (e *env) openStores(ctx context.Context) (store.Stores, func(), error) {
	switch {
	case e.cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, e.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		return database, database.Close, nil
	case e.cfg.SQLitePath != "":
		local, err := localstore.Open(e.cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		e.logger.Debug("opened local store", slog.String("path", e.cfg.SQLitePath))
		return local, func() { _ = local.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("no storage configured: set --db-url, --sqlite or DATABASE_URL")
	}
}
