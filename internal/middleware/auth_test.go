// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
)

func testTokens(t *testing.T) *auth.JWTManager {
	t.Helper()
	m, err := auth.NewJWTManager("middleware-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func issue(t *testing.T, m *auth.JWTManager, id auth.Identity) string {
	t.Helper()
	tok, err := m.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

// claimsEcho writes the authenticated email so tests can see what reached the handler.
func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetUserEmail(r)))
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def", "abc.def"},
		{"bearer  abc.def ", "abc.def"},
		{"abc.def", "abc.def"},
		{"Basic dXNlcjpwYXNz", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRequireToken(t *testing.T) {
	m := testTokens(t)
	clientTok := issue(t, m, auth.Identity{UserID: 7, Kind: auth.KindClient, Email: "owner@museum.example", ClientID: 3})
	adminTok := issue(t, m, auth.Identity{UserID: 1, Kind: auth.KindAdmin, Role: auth.RoleSuperAdmin, Email: "root@example.com"})

	handler := RequireToken(m, auth.KindClient)(claimsEcho())

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("wrong kind", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil)
		req.Header.Set("Authorization", "Bearer "+adminTok)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("valid client token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil)
		req.Header.Set("Authorization", "Bearer "+clientTok)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Body.String(); got != "owner@museum.example" {
			t.Errorf("email = %q, want %q", got, "owner@museum.example")
		}
	})

	t.Run("any kind", func(t *testing.T) {
		anyKind := RequireToken(m)(claimsEcho())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", adminTok)
		w := httptest.NewRecorder()
		anyKind.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestRequireAdminRoles(t *testing.T) {
	m := testTokens(t)
	handler := RequireToken(m, auth.KindAdmin)(RequireAdminRoles(auth.RoleSuperAdmin, auth.RoleAdmin)(claimsEcho()))

	tests := []struct {
		name string
		role int
		want int
	}{
		{"super admin", auth.RoleSuperAdmin, http.StatusOK},
		{"admin", auth.RoleAdmin, http.StatusOK},
		{"operator", auth.RoleOperator, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := issue(t, m, auth.Identity{UserID: 5, Kind: auth.KindAdmin, Role: tt.role, Email: "a@example.com"})
			req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	t.Run("without claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdminRoles(auth.RoleSuperAdmin)(claimsEcho()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

func TestClaimAccessors(t *testing.T) {
	t.Run("no claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if GetClaims(req) != nil {
			t.Error("GetClaims() should be nil")
		}
		if GetUserID(req) != 0 || GetClientID(req) != 0 || GetUserEmail(req) != "" {
			t.Error("accessors should return zero values without claims")
		}
	})

	t.Run("client claims", func(t *testing.T) {
		claims := &auth.Claims{Kind: auth.KindClient, Email: "c@example.com", ClientID: 9}
		claims.Subject = "44"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyClaims, claims))

		if got := GetUserID(req); got != 44 {
			t.Errorf("GetUserID() = %d, want 44", got)
		}
		if got := GetClientID(req); got != 9 {
			t.Errorf("GetClientID() = %d, want 9", got)
		}
	})

	t.Run("admin has no tenant", func(t *testing.T) {
		claims := &auth.Claims{Kind: auth.KindAdmin, ClientID: 9}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyClaims, claims))
		if got := GetClientID(req); got != 0 {
			t.Errorf("GetClientID() = %d, want 0", got)
		}
	})
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/landing/museum-x1", nil))

	if got != "/api/landing/museum-x1" {
		t.Errorf("GetRequestPath() = %q, want %q", got, "/api/landing/museum-x1")
	}
	if GetRequestPath(context.Background()) != "" {
		t.Error("GetRequestPath() on empty context should be empty")
	}
}
