// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Default super-admin account created on an empty database.
const (
	DefaultAdminEmail = "admin@example.com"
	DefaultAdminName  = "Administrator"
)

// PasswordHasher hashes a plain-text password for storage.
type PasswordHasher func(password string) (string, error)

// Seed creates the default super admin when no admin users exist.
func Seed(ctx context.Context, db *sql.DB, hash PasswordHasher, password string) error {
	queries := New(db)

	count, err := queries.CountAdminUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if count > 0 {
		slog.Info("admin users already exist, skipping seed")
		return nil
	}

	passwordHash, err := hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateAdminUser(ctx, CreateAdminUserParams{
		Name:         DefaultAdminName,
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		UserType:     0,
		Status:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	return nil
}
