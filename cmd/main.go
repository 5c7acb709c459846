package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/repositories"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	version = "0.1.0"

	envConfigPath     = "TRIPX_CONFIG"
	defaultConfigPath = "config.toml"
)

func main() {
	os.Exit(run(os.Args))
}

// run returns the process exit code so deferred cleanup happens before exiting.
func run(args []string) int {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := loadConfig(configPath)
	if err != nil {
		logger.Errorf("configuration error: %v", err)
		return 1
	}

	var storage session.Storage
	if db, err := shared.OpenDatabase(config.Database); err != nil {
		logger.Warn("session database unavailable, sessions will not persist", "path", config.Database.Path, "error", err)
	} else {
		defer db.Close()
		storage = repositories.NewKVRepository(db)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Storage:    storage,
		Logger:     logger,
	})

	if err := runner.app().Run(context.Background(), args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return 0
		}
		logger.Errorf("application error: %v", err)
		return 1
	}
	return 0
}

// loadConfig reads path when it exists, falls back to the embedded defaults otherwise,
// then applies TRIPX_* overrides and validates the result.
func loadConfig(path string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// app builds the root command.
//
// Components are rewired before every run so --debug reaches their child loggers and no run inherits another's renderer.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "tripx",
		Usage:   "Plan trips, destinations and weather against a trip-planning backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every request at debug level",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(r.logger, log.DebugLevel)
			}
			r.wire()
			return ctx, nil
		},
		Commands: r.register(),
	}
}
