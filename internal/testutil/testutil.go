// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the exhibit CMS.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/olegiv/exhibit-cms/internal/store"
)

// TestLogger creates a quiet test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "exhibit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
	}
}

// CreateClient inserts an active client with the given link and enables the
// listed languages for it.
func CreateClient(t *testing.T, db *sql.DB, link string, languages ...string) store.Client {
	t.Helper()

	ctx := context.Background()
	q := store.New(db)
	now := time.Now().UTC()

	mobile := "9" + link
	for len(mobile) < 10 {
		mobile += "0"
	}
	c, err := q.CreateClient(ctx, store.CreateClientParams{
		Name:          "Client " + link,
		Email:         link + "@example.com",
		Mobile:        mobile[:10],
		Status:        1,
		AllottedUsers: 1,
		Link:          link,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	for _, lang := range languages {
		if err := q.UpsertClientLanguage(ctx, store.UpsertClientLanguageParams{
			ClientID: c.ID,
			Language: lang,
			Enabled:  1,
		}); err != nil {
			t.Fatalf("UpsertClientLanguage: %v", err)
		}
	}
	return c
}
