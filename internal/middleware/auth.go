// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyClaims      ContextKey = "claims"
	ContextKeyRequestPath ContextKey = "request_path"
)

// BearerToken extracts the token from an Authorization header. The raw
// header without a scheme is accepted too, as panel clients send it that way.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok {
		return h
	}
	if !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireToken creates middleware that validates the bearer token and stores
// its claims in the request context. When kinds are given, the token must be
// of one of them.
func RequireToken(tokens *auth.JWTManager, kinds ...auth.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				slog.Debug("token rejected", "path", r.URL.Path, "error", err)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
				return
			}

			if len(kinds) > 0 && !slices.Contains(kinds, claims.Kind) {
				denied(w, r, claims, "token kind not allowed")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminRoles creates middleware that allows only admin tokens with one
// of the given roles. It must run after RequireToken.
func RequireAdminRoles(roles ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			if claims.Kind != auth.KindAdmin || !slices.Contains(roles, claims.Role) {
				denied(w, r, claims, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// denied logs and writes a 403 response.
func denied(w http.ResponseWriter, r *http.Request, claims *auth.Claims, reason string) {
	slog.Warn("access denied",
		"status", http.StatusForbidden,
		"method", r.Method,
		"path", r.URL.Path,
		"user_id", claims.UserID(),
		"kind", string(claims.Kind),
		"role", claims.Role,
		"reason", reason,
		"remote_addr", tracking.ClientIP(r),
	)
	WriteAPIError(w, http.StatusForbidden, "forbidden", "You do not have access to this resource", nil)
}

// GetClaims retrieves the token claims from the request context.
// Returns nil if the request is not authenticated.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID returns the authenticated user's ID, or 0.
func GetUserID(r *http.Request) int64 {
	if c := GetClaims(r); c != nil {
		return c.UserID()
	}
	return 0
}

// GetClientID returns the tenant of an authenticated client user, or 0.
func GetClientID(r *http.Request) int64 {
	if c := GetClaims(r); c != nil && c.Kind == auth.KindClient {
		return c.ClientID
	}
	return 0
}

// GetUserEmail returns the authenticated user's email, or "".
func GetUserEmail(r *http.Request) string {
	if c := GetClaims(r); c != nil {
		return c.Email
	}
	return ""
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
