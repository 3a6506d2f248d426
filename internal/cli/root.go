// Package cli implements the command-line interface for cubebot.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot/internal/bot"
	"github.com/SeamusWaldron/cubebot/internal/config"
	"github.com/SeamusWaldron/cubebot/internal/maestro"
	"github.com/SeamusWaldron/cubebot/internal/storage"
	"github.com/SeamusWaldron/cubebot/internal/vision"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool
	dryRun     bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cubebot",
	Short: "Two-armed Rubik's cube solving robot",
	Long: `cubebot drives a two-armed cube solving robot: it observes the cube
through a camera, plans a solution with a two-phase search, and executes
it move by move on a pair of Maestro-driven grippers.

Run 'cubebot solve' with the cube loaded to solve it, 'cubebot serve' to
expose the HTTP control surface, or 'cubebot watch' for a live TUI.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Robot profile path (default: ./cubebot.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "History database path (default: from profile)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Simulate the hardware and camera")
}

// newLogger builds the process logger. Verbose turns on development
// output with debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// loadProfile reads the robot profile honoring the global flags.
func loadProfile() (*config.Profile, error) {
	p, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		p.History.Path = dbPath
	}
	return p, nil
}

// openHistory opens the solve history database, migrating as needed.
func openHistory(p *config.Profile) (*storage.DB, *storage.SolveRepository, error) {
	db, err := storage.Open(p.History.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, storage.NewSolveRepository(db), nil
}

// botHandle bundles a constructed bot with everything that needs closing.
type botHandle struct {
	Bot     *bot.Bot
	Profile *config.Profile
	Repo    *storage.SolveRepository
	Logger  *zap.Logger

	closers []func()
}

// Close releases hardware and database handles.
func (h *botHandle) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}
}

// newBot assembles the full stack: profile, logger, history, driver and
// camera. With --dry-run the hardware and camera are simulated; the
// simulated cube starts scrambled so a dry solve has work to do.
func newBot() (*botHandle, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	h := &botHandle{Profile: profile, Logger: logger}
	h.closers = append(h.closers, func() { _ = logger.Sync() })

	db, repo, err := openHistory(profile)
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
	} else {
		h.Repo = repo
		h.closers = append(h.closers, func() { db.Close() })
	}

	cfg := bot.Config{Profile: profile, Repo: h.Repo, Logger: logger}
	if dryRun {
		cube := cubeForDryRun()
		sim := bot.NewSimulator(cube)
		cfg.Driver = sim
		cfg.Sensor = sim
	} else {
		ctrl, err := maestro.Open(profile.Serial)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.closers = append(h.closers, func() { _ = ctrl.Close() })

		arms := maestro.NewArms(ctrl, profile, logger.Named("maestro"))
		if err := arms.Init(); err != nil {
			h.Close()
			return nil, fmt.Errorf("initialize arms: %w", err)
		}
		cfg.Driver = arms
		cfg.Sensor = vision.New(profile.Camera, logger.Named("vision"))
	}

	h.Bot = bot.New(cfg)
	return h, nil
}
