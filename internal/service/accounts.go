// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/captcha"
	"github.com/olegiv/exhibit-cms/internal/mail"
	"github.com/olegiv/exhibit-cms/internal/resetcode"
	"github.com/olegiv/exhibit-cms/internal/store"
)

// MinPasswordLength is the shortest password accepted on setup or reset.
const MinPasswordLength = 8

// Reset code scopes keep admin and client codes apart.
const (
	scopeAdmin  = "admin"
	scopeClient = "client"
)

// Accounts bundles the collaborators of the login and password flows.
type Accounts struct {
	Tokens  *auth.JWTManager
	Resets  *resetcode.Store
	Mailer  mail.Mailer
	Captcha *captcha.Verifier
	URLs    URLs
	Logger  *slog.Logger
}

func (a *Accounts) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// LoginInput is a login request.
type LoginInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	CaptchaToken string `json:"recaptchaToken"`
}

// SetupPasswordInput replaces a temporary password.
type SetupPasswordInput struct {
	Email        string `json:"email" validate:"required,email"`
	TempPassword string `json:"tempPassword" validate:"required"`
	NewPassword  string `json:"newPassword" validate:"required,min=8"`
}

// ResetRequestInput asks for a reset code. The new password is held with the
// code until it is verified.
type ResetRequestInput struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ResetVerifyInput redeems a reset code.
type ResetVerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// credential is the password state of an admin or client user.
type credential struct {
	id     int64
	hash   string
	status int64
}

// credentialStore abstracts the admin_users and client_users tables.
type credentialStore interface {
	find(ctx context.Context, email string) (credential, error)
	setPassword(ctx context.Context, id int64, hash string) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// verifyCaptcha turns a rejected captcha into a field error.
func (a *Accounts) verifyCaptcha(ctx context.Context, token, remoteIP string) error {
	if a.Captcha == nil {
		return nil
	}
	if err := a.Captcha.Verify(ctx, token, remoteIP); err != nil {
		if errors.Is(err, captcha.ErrMissingToken) || errors.Is(err, captcha.ErrFailed) {
			return invalid("recaptchaToken", "Captcha verification failed")
		}
		return fmt.Errorf("verifying captcha: %w", err)
	}
	return nil
}

// authenticate checks email and password. Unknown emails and wrong passwords
// both yield ErrUnauthorized. Outdated hashes are upgraded in place.
func (a *Accounts) authenticate(ctx context.Context, creds credentialStore, email, password string) (credential, error) {
	c, err := creds.find(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return credential{}, ErrUnauthorized
		}
		return credential{}, err
	}
	ok, err := auth.CheckPassword(password, c.hash)
	if err != nil || !ok {
		return credential{}, ErrUnauthorized
	}
	if auth.NeedsRehash(c.hash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := creds.setPassword(ctx, c.id, hash); err != nil {
				a.logger().Warn("failed to upgrade password hash", "user_id", c.id, "error", err)
			}
		}
	}
	return c, nil
}

// setupPassword replaces a temporary password sent in a setup link.
func (a *Accounts) setupPassword(ctx context.Context, creds credentialStore, in SetupPasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	c, err := a.authenticate(ctx, creds, in.Email, in.TempPassword)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return creds.setPassword(ctx, c.id, hash)
}

// requestReset stores a code with the hash of the new password and mails the
// code to the account.
func (a *Accounts) requestReset(ctx context.Context, scope string, creds credentialStore, in ResetRequestInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)
	if _, err := creds.find(ctx, email); err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	code, err := a.Resets.Issue(ctx, scope, email, hash)
	if err != nil {
		return err
	}
	if err := a.Mailer.Send(ctx, mail.ResetCodeMessage(email, code, a.Resets.TTL())); err != nil {
		return fmt.Errorf("sending reset code: %w", err)
	}
	a.logger().Info("password reset code sent", "scope", scope, "email", email)
	return nil
}

// resetPassword redeems a code and stores the password held with it.
func (a *Accounts) resetPassword(ctx context.Context, scope string, creds credentialStore, in ResetVerifyInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)
	hash, err := a.Resets.Redeem(ctx, scope, email, in.Code)
	switch {
	case errors.Is(err, resetcode.ErrExpired):
		return invalid("code", "Verification code expired or invalid")
	case errors.Is(err, resetcode.ErrInvalidCode):
		return invalid("code", "Invalid verification code")
	case errors.Is(err, resetcode.ErrTooManyAttempts):
		return invalid("code", "Too many attempts, request a new code")
	case err != nil:
		return err
	}
	c, err := creds.find(ctx, email)
	if err != nil {
		return err
	}
	return creds.setPassword(ctx, c.id, hash)
}

// sendSetupLink mails a link that lets the account replace its temporary
// password. Delivery failures are logged; the account already exists.
func (a *Accounts) sendSetupLink(ctx context.Context, role, email, tempPassword string) {
	path := "/setup-password/"
	if role == scopeAdmin {
		path = "/admin/setup-password/"
	}
	link := joinURL(a.URLs.PanelFrontend, path+url.PathEscape(email)+"/"+url.PathEscape(tempPassword)) + "?role=" + role
	if err := a.Mailer.Send(ctx, mail.SetupLinkMessage(email, link)); err != nil {
		a.logger().Warn("failed to send setup link", "role", role, "email", email, "error", err)
	}
}

// logActivity writes an activity log entry. It runs in the request so the
// entry exists when the response is sent.
func logActivity(ctx context.Context, queries *store.Queries, logger *slog.Logger, email, ip, action string) {
	if err := queries.CreateActivityLog(ctx, store.CreateActivityLogParams{
		Email:     email,
		IpAddress: ip,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		logger.Warn("failed to write activity log", "email", email, "action", action, "error", err)
	}
}
