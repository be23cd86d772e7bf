package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"ytmb/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "ytmb",
		Usage:    "Build YouTube Music playlists from free-text track lists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrSessionExpired) {
			logger.Error("not authenticated, run 'ytmb auth login' or 'ytmb auth headers'")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
