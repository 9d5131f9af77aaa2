package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)
	shared.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", defaultConfigPath, "error", err)
		}
	}
	shared.ApplyEnv(config)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
		Connect:    connectSpotify,
	})
	if err := runner.connect(ctx); err != nil {
		logger.Debug("spotify service unavailable", "error", err)
	}

	app := &cli.Command{
		Name:     "csvlist",
		Usage:    "Build Spotify playlists from CSV files of artists and songs",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// connectSpotify builds a Spotify client from the config credentials, restores any stored token, and persists
// refreshed tokens back to configPath.
func connectSpotify(ctx context.Context, config *shared.Config, configPath string, logger *log.Logger) (services.MusicService, error) {
	svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}
	svc.SetRateLimit(config.Pacing.RateLimit)

	svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := config.Credentials.Spotify.Update(token); err != nil {
			logger.Warn("failed to update refreshed token", "error", err)
			return
		}
		if configPath == "" {
			return
		}
		if err := shared.SaveToken(configPath, token); err != nil {
			logger.Warn("failed to save refreshed token", "path", configPath, "error", err)
			return
		}
		logger.Debug("refreshed token saved", "path", configPath)
	})

	if token := config.Credentials.Spotify.Token(); token != nil {
		if err := svc.OAuthenticate(ctx, token); err != nil {
			logger.Warn("failed to restore Spotify token, run `csvlist spotify auth`", "error", err)
		}
	}

	return svc, nil
}
