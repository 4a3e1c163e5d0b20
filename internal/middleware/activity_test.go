// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "middleware-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func withClaims(r *http.Request, email string) *http.Request {
	claims := &auth.Claims{Kind: auth.KindClient, Email: email, ClientID: 1}
	return r.WithContext(context.WithValue(r.Context(), ContextKeyClaims, claims))
}

func listActions(t *testing.T, db *sql.DB) []store.ActivityLog {
	t.Helper()
	logs, err := store.New(db).ListActivityLogs(context.Background(), store.ListActivityLogsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListActivityLogs: %v", err)
	}
	return logs
}

func TestActivityLogger(t *testing.T) {
	db := setupTestDB(t)
	mw := ActivityLogger(db)

	status := http.StatusOK
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	// Reads are never logged.
	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil), "owner@museum.example")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Anonymous writes are not logged.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/client/visitor-data", nil))

	// Failed writes are not logged.
	status = http.StatusUnprocessableEntity
	req = withClaims(httptest.NewRequest(http.MethodPost, "/api/exhibit/add", nil), "owner@museum.example")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if logs := listActions(t, db); len(logs) != 0 {
		t.Fatalf("expected no activity logs, got %d", len(logs))
	}

	status = http.StatusOK
	req = withClaims(httptest.NewRequest(http.MethodDelete, "/api/exhibit/AB12CD", nil), "owner@museum.example")
	req.RemoteAddr = "203.0.113.9:4444"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	logs := listActions(t, db)
	if len(logs) != 1 {
		t.Fatalf("expected 1 activity log, got %d", len(logs))
	}
	if logs[0].Action != "DELETE /api/exhibit/AB12CD" {
		t.Errorf("Action = %q", logs[0].Action)
	}
	if logs[0].Email != "owner@museum.example" {
		t.Errorf("Email = %q", logs[0].Email)
	}
	if logs[0].IpAddress != "203.0.113.9" {
		t.Errorf("IpAddress = %q", logs[0].IpAddress)
	}
}
