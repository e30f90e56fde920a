package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/photogallery/internal/common"
)

// Login prompts for credentials and stores the session token locally.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if email == "" {
		return errors.New("email must not be empty")
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	if err := a.saveSession(ctx, session.Token, session.ExpiresAt); err != nil {
		a.logger.Warn(ctx, "session not persisted", "error", err)
	}
	a.printf("Logged in, session valid until %s\n", session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// Logout revokes the server session and forgets the local token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	err := a.api.Logout(ctx)
	if derr := a.meta.Delete(ctx, metadata.KeySessionToken, metadata.KeySessionEnd, metadata.KeyServerURL); derr != nil {
		a.logger.Warn(ctx, "session not cleared", "error", derr)
	}
	if err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) saveSession(ctx context.Context, token string, expires time.Time) error {
	if err := a.meta.Set(ctx, metadata.KeySessionToken, token); err != nil {
		return err
	}
	if err := a.meta.Set(ctx, metadata.KeySessionEnd, expires.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return a.meta.Set(ctx, metadata.KeyServerURL, a.config.ServerURL)
}

// restoreSession reuses a saved token when it belongs to the configured
// server, has not expired and the server still accepts it.
func (a *App) restoreSession(ctx context.Context) {
	token, ok, err := a.meta.Get(ctx, metadata.KeySessionToken)
	if err != nil || !ok {
		if err != nil {
			a.logger.Warn(ctx, "saved session unreadable", "error", err)
		}
		return
	}

	server, _, _ := a.meta.Get(ctx, metadata.KeyServerURL)
	end, _, _ := a.meta.Get(ctx, metadata.KeySessionEnd)
	expires, perr := time.Parse(time.RFC3339, end)
	if server != a.config.ServerURL || perr != nil || !time.Now().Before(expires) {
		a.forgetSession(ctx)
		return
	}

	a.api.SetToken(token)
	valid, err := a.api.Validate(ctx)
	if err != nil {
		// Server unreachable: keep the token and let the next call decide.
		a.logger.Warn(ctx, "session not validated", "error", err)
		return
	}
	if !valid {
		a.api.SetToken("")
		a.forgetSession(ctx)
		return
	}
	a.printf("Resumed session (valid until %s)\n", expires.Local().Format(time.DateTime))
}

func (a *App) forgetSession(ctx context.Context) {
	if err := a.meta.Delete(ctx, metadata.KeySessionToken, metadata.KeySessionEnd, metadata.KeyServerURL); err != nil {
		a.logger.Warn(ctx, "session not cleared", "error", err)
	}
}
