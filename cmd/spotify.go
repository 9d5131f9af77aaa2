package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/csvlist/internal/server"
	"github.com/desertthunder/csvlist/internal/services"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// profileService is implemented by services that can describe the signed-in user.
type profileService interface {
	UserProfile(ctx context.Context) (*services.SpotifyUser, error)
}

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	if err := r.useConfig(ctx, cmd); err != nil {
		return err
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	oauthSrv, ok := r.spotify.(services.OAuthService)
	if !ok {
		svc, err := services.NewSpotifyService(creds.Map())
		if err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
		oauthSrv = svc
	}

	token, err := r.doOAuth(ctx, oauthSrv, "authorization")
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: csvlist import songs.csv\n")

	return nil
}

// SpotifyMe prints the authenticated user's profile.
func (r *Runner) SpotifyMe(ctx context.Context, cmd *cli.Command) error {
	if err := r.useConfig(ctx, cmd); err != nil {
		return err
	}

	profiler, ok := r.spotify.(profileService)
	if !ok {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	user, err := profiler.UserProfile(ctx)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if user, err = profiler.UserProfile(ctx); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("User: %s\n", user.DisplayName)
	r.writePlain("ID: %s\n", user.ID)
	if user.Country != "" {
		r.writePlain("Country: %s\n", user.Country)
	}
	if user.Product != "" {
		r.writePlain("Plan: %s\n", user.Product)
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))

	srv, err := server.NewCallbackServer(addr, handler, r.logger)
	if err != nil {
		return nil, err
	}
	srv.Start()

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	result, err := srv.Wait(ctx, authTimeout)
	if err != nil {
		return nil, err
	}
	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// handleSpotifyAuthError checks if an error is a token expiration error and triggers reauthorization if needed.
//
// The first return value reports whether reauthorization was attempted.
func (r *Runner) handleSpotifyAuthError(ctx context.Context, err error) (bool, error) {
	if err == nil || !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	oauthSrv, ok := r.spotify.(services.OAuthService)
	if !ok {
		return true, fmt.Errorf("%w: spotify service does not support reauthorization", shared.ErrNotAuthenticated)
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...\n")

	token, reauthErr := r.doOAuth(ctx, oauthSrv, "reauthorization")
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}
	if err := r.saveTokens(token); err != nil {
		return true, err
	}

	if authErr := oauthSrv.OAuthenticate(ctx, r.config.Credentials.Spotify.Token()); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...\n")
	return true, nil
}
