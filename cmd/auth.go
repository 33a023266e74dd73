package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/monthly/internal/repositories"
	"github.com/desertthunder/monthly/internal/server"
	"github.com/desertthunder/monthly/internal/services"
	"github.com/desertthunder/monthly/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// Auth runs the authorization flow and caches the resulting token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := repositories.Open(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("logout") {
		if err := repositories.NewTokenRepository(db).Delete(spotifyTokenKey); err != nil {
			return err
		}
		return r.writePlain("✓ Cached Spotify token removed from %s\n", config.Database.Path)
	}

	spotify, err := r.authorize(ctx, config, db, true)
	if err != nil {
		return err
	}

	user, err := spotify.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify authorization: %w", err)
	}

	r.writePlainln("✓ Authorized as %s", displayName(user))
	return r.writePlain("✓ Token cached in %s\n", config.Database.Path)
}

// spotifyTokenKey is the token cache key for the Spotify account.
const spotifyTokenKey = "spotify"

// authorize returns a Spotify client with a usable token. The cached token is used unless
// force is set or none is cached; otherwise the interactive flow runs. Every new or refreshed
// token is written back to the cache.
func (r *Runner) authorize(ctx context.Context, config *shared.Config, db *sql.DB, force bool) (*services.SpotifyService, error) {
	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	tokens := repositories.NewTokenRepository(db)
	spotify.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := tokens.Save(spotifyTokenKey, token); err != nil {
			r.logger.Warn("failed to cache token", "error", err)
		}
	})

	var token *oauth2.Token
	if !force {
		token, err = tokens.Get(spotifyTokenKey)
		switch {
		case err == nil:
			r.logger.Debug("using cached token", "expiry", token.Expiry)
		case errors.Is(err, shared.ErrTokenNotFound):
			r.logger.Info("no cached token, starting authorization")
		default:
			return nil, err
		}
	}

	if token == nil {
		if token, err = r.doOAuth(ctx, config, spotify); err != nil {
			return nil, err
		}
		if err := tokens.Save(spotifyTokenKey, token); err != nil {
			return nil, err
		}
	}

	if err := spotify.OAuthenticate(ctx, token); err != nil {
		return nil, err
	}
	return spotify, nil
}

// doOAuth obtains a token through the authorization code flow, using the local callback
// server or, in headless mode, a redirect URL pasted by the user.
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}
	authURL := oauthSrv.GetAuthURL(state)

	if config.Sync.Headless {
		code, err := r.readRedirect(authURL, state)
		if err != nil {
			return nil, err
		}
		token, err := oauthSrv.GetOAuthConfig().Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: token exchange failed: %w", shared.ErrAuthFailed, err)
		}
		return token, nil
	}

	return r.serveCallback(ctx, config, oauthSrv.GetOAuthConfig(), state, authURL)
}

// readRedirect prints authURL and reads back the URL the browser was redirected to.
func (r *Runner) readRedirect(authURL, state string) (string, error) {
	r.writePlain("Open this URL in a browser and authorize monthly:\n\n%s\n\n", authURL)
	r.writePlain("Paste the URL you were redirected to: ")

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("%w: no redirect URL provided", shared.ErrAuthFailed)
	}
	return server.CodeFromRedirect(strings.TrimSpace(line), state)
}

// serveCallback starts the callback server on the redirect URI's address and waits for one callback.
func (r *Runner) serveCallback(ctx context.Context, config *shared.Config, exchanger server.Exchanger, state, authURL string) (*oauth2.Token, error) {
	addr, path, err := config.Credentials.Spotify.CallbackAddr()
	if err != nil {
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler(exchanger, state, path)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", addr)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

func displayName(user *services.SpotifyUser) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.ID
}
