package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/catalog"
	"github.com/heimdex/reeldate/internal/config"
	"github.com/heimdex/reeldate/internal/db"
	"github.com/heimdex/reeldate/internal/fsmeta"
	"github.com/heimdex/reeldate/internal/logging"
)

var version = config.Version

var optionsFile string

var rootCmd = &cobra.Command{
	Use:   "reeldate",
	Short: "Reconcile capture dates and timecodes for media clips",
	Long: `reeldate resolves when each clip in a catalog was recorded, stamps it
with a start timecode and scene date, reports clock skew between date
sources, and files clips into day bins.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&optionsFile, "options", "",
		"run options YAML file (default $REELDATE_OPTIONS or <data dir>/options.yaml)")
}

// app holds the process-wide services a command needs.
type app struct {
	cfg     *config.EnvConfig
	logger  *slog.Logger
	db      *db.DB
	repo    *catalog.SQLiteRepository
	service *catalog.Service
	stater  fsmeta.Stater
}

// openApp loads configuration, opens the catalog database and builds the
// catalog service. The caller closes it.
func openApp() (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := catalog.NewRepository(database.Conn())
	stater := fsmeta.OS{}
	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		repo:    repo,
		service: catalog.NewService(repo, stater, logger),
		stater:  stater,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// loadOptions reads the options file; an explicit --options must exist.
func (a *app) loadOptions() (config.Options, error) {
	if optionsFile != "" {
		return config.LoadOptions(optionsFile, true)
	}
	return config.LoadOptions(a.cfg.OptionsPath(), false)
}
