// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// handleLogin runs a login with account lockout around it. Lockout keys are
// scoped so an admin and a client sharing an email do not lock each other.
func handleLogin[T any](h *Handler, w http.ResponseWriter, r *http.Request, scope string,
	login func(context.Context, service.LoginInput, string) (T, error)) {
	var in service.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	key := scope + ":" + strings.ToLower(strings.TrimSpace(in.Email))

	if h.login != nil {
		if locked, remaining := h.login.IsAccountLocked(key); locked {
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Too many failed login attempts. Try again in %s.", remaining.Round(time.Second)), nil)
			return
		}
	}

	ip := tracking.ClientIP(r)
	res, err := login(r.Context(), in, ip)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) && h.login != nil {
			if locked, _ := h.login.RecordFailedAttempt(key); locked {
				h.logger.Warn("login locked out", "scope", scope, "ip", ip)
			}
		}
		h.writeServiceError(w, r, err, "log in")
		return
	}

	if h.login != nil {
		h.login.RecordSuccessfulLogin(key)
	}
	h.logger.Info("user logged in", "scope", scope, "ip", ip)
	WriteSuccess(w, res, nil)
}

// AdminLogin handles POST /api/admin/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	handleLogin(h, w, r, "admin", h.admins.Login)
}

// ClientLogin handles POST /api/client/login.
func (h *Handler) ClientLogin(w http.ResponseWriter, r *http.Request) {
	handleLogin(h, w, r, "client", h.clients.Login)
}

// passwordFlow decodes T and runs fn, answering with message on success.
func passwordFlow[T any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, T) error, action, message string) {
	var in T
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := fn(r.Context(), in); err != nil {
		h.writeServiceError(w, r, err, action)
		return
	}
	WriteMessage(w, message)
}

// AdminSetupPassword handles POST /api/admin/setup-password.
func (h *Handler) AdminSetupPassword(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.admins.SetupPassword, "set up password", "Password updated successfully")
}

// AdminRequestReset handles POST /api/admin/request-password-reset.
func (h *Handler) AdminRequestReset(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.admins.RequestPasswordReset, "request password reset", "Verification code sent to your email")
}

// AdminResetPassword handles POST /api/admin/verify-reset-code.
func (h *Handler) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.admins.ResetPassword, "reset password", "Password reset successfully")
}

// ClientSetupPassword handles POST /api/client/setup-password.
func (h *Handler) ClientSetupPassword(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.clients.SetupPassword, "set up password", "Password updated successfully")
}

// ClientRequestReset handles POST /api/client/request-password-reset.
func (h *Handler) ClientRequestReset(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.clients.RequestPasswordReset, "request password reset", "Verification code sent to your email")
}

// ClientResetPassword handles POST /api/client/verify-reset-code.
func (h *Handler) ClientResetPassword(w http.ResponseWriter, r *http.Request) {
	passwordFlow(h, w, r, h.clients.ResetPassword, "reset password", "Password reset successfully")
}

