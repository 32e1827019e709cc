package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/desertthunder/undertone/internal/views"
	"github.com/urfave/cli/v3"
)

func credentials(cmd *cli.Command) models.Credentials {
	return models.Credentials{Username: cmd.String("username"), Password: cmd.String("password")}
}

// AuthStatus reports the current session from GET /me.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking session")

	state, err := r.profile.Session.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.Session{LoggedIn: state.LoggedIn, Username: state.Username}, cmd.Bool("pretty"))
	}
	if state.LoggedIn {
		return r.writePlain("✓ Logged in as %s\n", state.Username)
	}
	return r.writePlain("✗ Not logged in\n")
}

// AuthLogin logs in. The session cookie is stored by the runner's cookie jar.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	state, err := r.profile.Session.Login(ctx, credentials(cmd))
	if err != nil {
		r.writePlain("✗ %s\n", views.AuthMessage(err))
		return err
	}

	r.logger.Info("authentication successful", "username", state.Username)
	return r.writePlain("✓ Logged in as %s\n", state.Username)
}

// AuthRegister creates an account and logs in when auto-login is enabled.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	state, err := r.profile.Session.Register(ctx, credentials(cmd))
	if err != nil {
		r.writePlain("✗ %s\n", views.AuthMessage(err))
		return err
	}

	if state.LoggedIn {
		return r.writePlain("✓ Account created, logged in as %s\n", state.Username)
	}
	return r.writePlain("✓ %s\n", state.Message)
}

// AuthLogout ends the session and drops stored cookies for the backend.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.profile.Session.Logout(ctx)

	if r.jar != nil {
		if u, err := url.Parse(r.config.API.BaseURL); err == nil {
			if err := r.jar.Clear(u); err != nil {
				r.logger.Warn("failed to clear stored cookies", "error", err)
			}
		}
	}
	return r.writePlain("✓ Logged out\n")
}
