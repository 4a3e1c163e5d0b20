// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/store"
)

func seedAdmin(t *testing.T, h *harness) {
	t.Helper()
	require.NoError(t, store.Seed(context.Background(), h.db, auth.HashPassword, "changeme1"))
}

func TestAdminLogin(t *testing.T) {
	h := newHarness(t)
	seedAdmin(t, h)
	ctx := context.Background()

	res, err := h.admins.Login(ctx, LoginInput{Email: "ADMIN@example.com", Password: "changeme1"}, "192.0.2.10")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultAdminEmail, res.User.Email)
	assert.Equal(t, int64(auth.RoleSuperAdmin), res.User.UserType)

	claims, err := h.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAdmin, claims.Kind)
	assert.Equal(t, res.User.ID, claims.UserID())

	logs, _, err := h.admins.ActivityLogs(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Admin logged in", logs[0].Action)

	_, err = h.admins.Login(ctx, LoginInput{Email: store.DefaultAdminEmail, Password: "nope"}, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = h.admins.Login(ctx, LoginInput{Email: "bad", Password: "changeme1"}, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddAdmin(t *testing.T) {
	h := newHarness(t)
	seedAdmin(t, h)
	ctx := context.Background()

	op, err := h.admins.AddAdmin(ctx, NewAdmin{Name: "Ravi", Email: "ravi@example.com", UserType: auth.RoleOperator})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, op.Status)

	msg := h.mailer.last(t)
	assert.Contains(t, msg.Text, "https://panel.example/admin/setup-password/")
	assert.Contains(t, msg.Text, "?role=admin")

	require.NoError(t, h.admins.SetupPassword(ctx, SetupPasswordInput{
		Email:        "ravi@example.com",
		TempPassword: h.mailer.tempPassword(t),
		NewPassword:  "operator-pass",
	}))
	_, err = h.admins.Login(ctx, LoginInput{Email: "ravi@example.com", Password: "operator-pass"}, "")
	require.NoError(t, err)

	_, err = h.admins.AddAdmin(ctx, NewAdmin{Name: "Ravi", Email: "ravi@example.com", UserType: auth.RoleAdmin})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = h.admins.AddAdmin(ctx, NewAdmin{Name: "Root", Email: "root@example.com", UserType: auth.RoleSuperAdmin})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "user_type")
}

func TestAdminList(t *testing.T) {
	h := newHarness(t)
	seedAdmin(t, h)
	ctx := context.Background()

	_, err := h.admins.AddAdmin(ctx, NewAdmin{Name: "Ann", Email: "ann@example.com", UserType: auth.RoleAdmin})
	require.NoError(t, err)

	list, err := h.admins.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "super admin is not listed")
	assert.Equal(t, "ann@example.com", list[0].Email)
}

func TestAdminSetStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	op, err := h.admins.AddAdmin(ctx, NewAdmin{Name: "Ann", Email: "ann@example.com", UserType: auth.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, h.admins.SetupPassword(ctx, SetupPasswordInput{
		Email: op.Email, TempPassword: h.mailer.tempPassword(t), NewPassword: "ann-password",
	}))

	require.NoError(t, h.admins.SetStatus(ctx, op.ID, StatusBlocked))
	_, err = h.admins.Login(ctx, LoginInput{Email: op.Email, Password: "ann-password"}, "")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, h.admins.SetStatus(ctx, 999, StatusActive), ErrNotFound)

	var verr *ValidationError
	assert.ErrorAs(t, h.admins.SetStatus(ctx, op.ID, 7), &verr)
}

func TestAdminPasswordReset(t *testing.T) {
	h := newHarness(t)
	seedAdmin(t, h)
	ctx := context.Background()

	require.NoError(t, h.admins.RequestPasswordReset(ctx, ResetRequestInput{Email: store.DefaultAdminEmail, NewPassword: "brand-new-1"}))
	code := h.mailer.resetCode(t)

	// A client-scoped redemption must not consume an admin code.
	err := h.clients.ResetPassword(ctx, ResetVerifyInput{Email: store.DefaultAdminEmail, Code: code})
	require.Error(t, err)

	require.NoError(t, h.admins.ResetPassword(ctx, ResetVerifyInput{Email: store.DefaultAdminEmail, Code: code}))
	_, err = h.admins.Login(ctx, LoginInput{Email: store.DefaultAdminEmail, Password: "brand-new-1"}, "")
	require.NoError(t, err)
}

func TestAdminReadModels(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.client(t, "museum", "english")
	h.client(t, "gallery", "english")

	clients, err := h.admins.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	_, err = h.admins.Profile(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
