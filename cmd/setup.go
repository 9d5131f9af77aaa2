package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the config.toml template, then loads and validates it.
//
// An existing file is kept unless --force is set.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		if !cmd.Bool("force") {
			r.logger.Info("config file exists, validating", "path", configPath)
		} else if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Config written to %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	shared.ApplyEnv(config)
	if err := config.Validate(); err != nil {
		return err
	}

	creds := config.Credentials.Spotify
	switch {
	case creds.ClientID == "" || creds.ClientSecret == "" || creds.ClientID == shared.DefaultConfig().Credentials.Spotify.ClientID:
		r.writePlainln("Next steps:")
		r.writePlain("1. Create an app at https://developer.spotify.com/dashboard\n")
		r.writePlain("2. Set client_id and client_secret in %s (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)\n", configPath)
		r.writePlain("3. Add %s as a redirect URI and run 'csvlist spotify auth'\n", creds.RedirectURI)
	case creds.Token() == nil:
		r.writePlain("✓ Credentials found. Run 'csvlist spotify auth' to authorize.\n")
	default:
		r.writePlain("✓ Config is valid and authorized.\n")
	}

	return nil
}
