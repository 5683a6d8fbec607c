package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/spotsort/internal/server"
	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and exchanges the auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(configPath)

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, config, spotifyService, "authorization")
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.config = config
	r.configPath = configPath

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: spotsort library tracks\n")

	return nil
}

// AuthStatus reports the stored token state without touching the catalog.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	creds := config.Credentials.Spotify

	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.writePlain("✗ Credentials not configured\n")
		r.writePlain("Run 'spotsort setup config' and fill in client_id and client_secret\n")
		return nil
	}

	r.writePlain("✓ Credentials configured\n")

	token := creds.Token()
	if token == nil {
		r.writePlain("✗ No stored token, run 'spotsort auth login'\n")
		return nil
	}

	if !creds.Expiry.IsZero() && creds.Expiry.Before(time.Now()) {
		if creds.RefreshToken != "" {
			r.writePlain("⚠ Access token expired at %s (refresh token available)\n", creds.Expiry.Format(time.RFC3339))
		} else {
			r.writePlain("✗ Access token expired at %s, run 'spotsort auth login'\n", creds.Expiry.Format(time.RFC3339))
		}
		return nil
	}

	r.writePlain("✓ Authenticated")
	if !creds.Expiry.IsZero() {
		r.writePlain(" (token valid until %s)", creds.Expiry.Format(time.RFC3339))
	}
	r.writePlain("\n")

	return nil
}

// Info renders the authenticated account's profile.
func (r *Runner) Info(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		retry, authErr := r.handleAuthError(ctx, err, cmd)
		if !retry {
			return err
		}
		if authErr != nil {
			return authErr
		}
		if user, err = r.spotify.CurrentUser(ctx); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader("Spotify Account Information")
	r.writePlain("Name:      %s\n", user.DisplayName)
	r.writePlain("User ID:   %s\n", user.ID)
	if user.Product != "" {
		r.writePlain("Account:   %s\n", strings.ToUpper(user.Product))
	}
	if user.Country != "" {
		r.writePlain("Country:   %s\n", user.Country)
	}
	r.writePlain("Followers: %d\n", user.Followers)

	return nil
}

// loadConfig reads the config at path, falling back to the runner's config
// and finally to defaults.
func (r *Runner) loadConfig(configPath string) *shared.Config {
	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		}
		r.logger.Warn("failed to load config, using current", "path", configPath)
	}
	if r.config != nil {
		return r.config
	}
	return shared.DefaultConfig()
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService, verb string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	handler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	r.logger.Infof("starting OAuth server for %s at %v", verb, addr)

	// Give the listener a moment to come up before the redirect lands.
	go func() {
		time.Sleep(100 * time.Millisecond)
		r.writePlain("→ Opening browser for Spotify %s...\n", verb)
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
		r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")
	}()

	token, err := server.WaitForCallback(ctx, addr, router, handler, 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	return token, nil
}

// handleAuthError checks whether err is a token expiration and reauthorizes
// when it is. Returns true when the caller should retry the operation.
func (r *Runner) handleAuthError(ctx context.Context, err error, cmd *cli.Command) (bool, error) {
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}
	config := r.loadConfig(configPath)

	spotifyService, ok := r.spotify.(services.OAuthService)
	if !ok {
		return true, fmt.Errorf("spotify service does not support reauthorization")
	}

	token, reauthErr := r.doOAuth(ctx, config, spotifyService, "reauthorization")
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return true, fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return true, fmt.Errorf("failed to save config: %w", err)
	}

	if authErr := spotifyService.OAuthenticate(ctx, token); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.config = config
	r.configPath = configPath
	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")

	return true, nil
}
