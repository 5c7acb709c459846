package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

func credentials(cmd *cli.Command) (string, string, error) {
	username, password := cmd.StringArg("username"), cmd.String("password")
	if username == "" {
		return "", "", fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: --password or TRIPX_PASSWORD is required", shared.ErrMissingArgument)
	}
	return username, password, nil
}

// AuthLogin signs in, stores the session durably and loads the user's trips.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username, password, err := credentials(cmd)
	if err != nil {
		return err
	}

	r.connect(ctx, true)
	r.quiet()

	r.logger.Info("logging in", "user", username, "origin", r.gateway.Origin())
	sess, err := r.sync.Login(ctx, username, password)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s (%d trips)\n", sess.Username, len(r.store.Trips()))
}

// AuthRegister creates an account. It does not log in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username, password, err := credentials(cmd)
	if err != nil {
		return err
	}

	r.connect(ctx, true)

	user, err := r.auth.Register(ctx, username, cmd.String("email"), password)
	if err != nil {
		return err
	}

	r.writePlain("✓ Registered %s (id %d)\n", user.Username, user.ID)
	return r.writePlain("Next: tripx auth login %s\n", user.Username)
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sess := r.connect(ctx, false)
	r.quiet()

	if err := r.sync.Logout(); err != nil {
		return err
	}
	if sess == nil {
		return r.writePlain("Not logged in\n")
	}
	return r.writePlain("✓ Logged out %s\n", sess.Username)
}

// AuthStatus probes /health, then reports the stored session and whether the backend still accepts it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	health, err := r.auth.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlainHeader("tripx status")
	r.writePlain("Backend: %s\n", r.gateway.Origin())
	r.writePlain("Status:  %s\n", health.Status)

	sess := r.connect(ctx, false)
	if sess == nil {
		return r.writePlain("Session: ✗ Not logged in\n")
	}

	r.writePlain("Session: %s (id %d)\n", sess.Username, sess.UserID)
	if exp, ok := r.store.TokenExpiry(); ok {
		if time.Now().After(exp) {
			r.writePlain("Token:   expired %s\n", exp.Local().Format(time.DateTime))
		} else {
			r.writePlain("Token:   valid until %s\n", exp.Local().Format(time.DateTime))
		}
	}

	if _, err := r.auth.Me(ctx); err != nil {
		return r.writePlain("Backend: ✗ Session rejected (%v)\n", err)
	}
	return r.writePlain("Backend: ✓ Session accepted\n")
}
