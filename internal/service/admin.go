// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/store"
)

// AdminService manages operator accounts and the admin read models.
type AdminService struct {
	queries  *store.Queries
	accounts *Accounts
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(db *sql.DB, accounts *Accounts) *AdminService {
	return &AdminService{
		queries:  store.New(db),
		accounts: accounts,
		logger:   accounts.logger(),
		now:      time.Now,
	}
}

// AdminUser is the API shape of an operator account.
type AdminUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	UserType  int64     `json:"user_type"`
	Status    int64     `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func adminFromRow(row store.AdminUser) AdminUser {
	return AdminUser{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Mobile:    row.Mobile,
		UserType:  row.UserType,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}
}

// NewAdmin holds the fields of an operator being added. Super admins are only
// created by seeding.
type NewAdmin struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"omitempty,mobile"`
	UserType int64  `json:"user_type" validate:"oneof=1 2"`
}

// AddAdmin creates an operator with a temporary password and mails the setup link.
func (s *AdminService) AddAdmin(ctx context.Context, in NewAdmin) (AdminUser, error) {
	in.Name = cleanText(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return AdminUser{}, err
	}

	if _, err := s.queries.GetAdminUserByEmail(ctx, in.Email); err == nil {
		return AdminUser{}, fmt.Errorf("admin user %w", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, fmt.Errorf("checking admin user: %w", err)
	}

	tempPassword, err := auth.TempPassword()
	if err != nil {
		return AdminUser{}, err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return AdminUser{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.queries.CreateAdminUser(ctx, store.CreateAdminUserParams{
		Name:         in.Name,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: hash,
		UserType:     in.UserType,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return AdminUser{}, fmt.Errorf("creating admin user: %w", err)
	}

	s.logger.Info("admin user created", "id", user.ID, "user_type", user.UserType)
	s.accounts.sendSetupLink(ctx, scopeAdmin, in.Email, tempPassword)
	return adminFromRow(user), nil
}

// AdminLoginResult is returned by a successful admin login.
type AdminLoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// Login authenticates an operator and writes an activity log entry.
func (s *AdminService) Login(ctx context.Context, in LoginInput, remoteIP string) (AdminLoginResult, error) {
	if err := validateStruct(in); err != nil {
		return AdminLoginResult{}, err
	}
	if err := s.accounts.verifyCaptcha(ctx, in.CaptchaToken, remoteIP); err != nil {
		return AdminLoginResult{}, err
	}

	c, err := s.accounts.authenticate(ctx, adminCredentials{s.queries, s.now}, in.Email, in.Password)
	if err != nil {
		return AdminLoginResult{}, err
	}
	if c.status != StatusActive {
		return AdminLoginResult{}, ErrAccountBlocked
	}
	user, err := s.queries.GetAdminUserByID(ctx, c.id)
	if err != nil {
		return AdminLoginResult{}, notFound(err, "admin user")
	}

	token, err := s.accounts.Tokens.Issue(auth.Identity{
		UserID: user.ID,
		Kind:   auth.KindAdmin,
		Role:   int(user.UserType),
		Email:  user.Email,
	})
	if err != nil {
		return AdminLoginResult{}, fmt.Errorf("issuing token: %w", err)
	}

	logActivity(ctx, s.queries, s.logger, user.Email, remoteIP, "Admin logged in")
	return AdminLoginResult{Token: token, User: adminFromRow(user)}, nil
}

// SetupPassword replaces an operator's temporary password.
func (s *AdminService) SetupPassword(ctx context.Context, in SetupPasswordInput) error {
	return s.accounts.setupPassword(ctx, adminCredentials{s.queries, s.now}, in)
}

// RequestPasswordReset mails a verification code for a new password.
func (s *AdminService) RequestPasswordReset(ctx context.Context, in ResetRequestInput) error {
	return s.accounts.requestReset(ctx, scopeAdmin, adminCredentials{s.queries, s.now}, in)
}

// ResetPassword verifies the code and applies the pending password.
func (s *AdminService) ResetPassword(ctx context.Context, in ResetVerifyInput) error {
	return s.accounts.resetPassword(ctx, scopeAdmin, adminCredentials{s.queries, s.now}, in)
}

// SetStatus blocks or re-activates an operator.
func (s *AdminService) SetStatus(ctx context.Context, id, status int64) error {
	if status != StatusActive && status != StatusBlocked {
		return invalid("status", "Status must be 0 or 1")
	}
	n, err := s.queries.UpdateAdminUserStatus(ctx, store.UpdateAdminUserStatusParams{
		Status:    status,
		UpdatedAt: s.now().UTC(),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("updating admin status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("admin user %w", ErrNotFound)
	}
	return nil
}

// List returns the admins and operators. The super admin is not listed.
func (s *AdminService) List(ctx context.Context) ([]AdminUser, error) {
	rows, err := s.queries.ListAdminUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing admin users: %w", err)
	}
	out := make([]AdminUser, 0, len(rows))
	for _, r := range rows {
		if r.UserType == auth.RoleAdmin || r.UserType == auth.RoleOperator {
			out = append(out, adminFromRow(r))
		}
	}
	return out, nil
}

// Profile returns the operator with the given id.
func (s *AdminService) Profile(ctx context.Context, id int64) (AdminUser, error) {
	row, err := s.queries.GetAdminUserByID(ctx, id)
	if err != nil {
		return AdminUser{}, notFound(err, "admin user")
	}
	return adminFromRow(row), nil
}

// ListClients returns every client.
func (s *AdminService) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.queries.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	out := make([]Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, clientFromRow(r))
	}
	return out, nil
}

// ActivityLogs returns one page of login and mutation activity.
func (s *AdminService) ActivityLogs(ctx context.Context, page Page) ([]store.ActivityLog, int64, error) {
	logs, err := s.queries.ListActivityLogs(ctx, store.ListActivityLogsParams{
		Limit:  page.limit(),
		Offset: page.offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing activity logs: %w", err)
	}
	total, err := s.queries.CountActivityLogs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting activity logs: %w", err)
	}
	return logs, total, nil
}

// QRScans returns one page of recorded QR code scans.
func (s *AdminService) QRScans(ctx context.Context, page Page) ([]store.QrScan, int64, error) {
	scans, err := s.queries.ListQrScans(ctx, store.ListQrScansParams{
		Limit:  page.limit(),
		Offset: page.offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing QR scans: %w", err)
	}
	total, err := s.queries.CountQrScans(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting QR scans: %w", err)
	}
	return scans, total, nil
}

// adminCredentials adapts admin_users to credentialStore.
type adminCredentials struct {
	queries *store.Queries
	now     func() time.Time
}

func (c adminCredentials) find(ctx context.Context, email string) (credential, error) {
	u, err := c.queries.GetAdminUserByEmail(ctx, email)
	if err != nil {
		return credential{}, notFound(err, "admin user")
	}
	return credential{id: u.ID, hash: u.PasswordHash, status: u.Status}, nil
}

func (c adminCredentials) setPassword(ctx context.Context, id int64, hash string) error {
	if err := c.queries.UpdateAdminUserPassword(ctx, store.UpdateAdminUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    c.now().UTC(),
		ID:           id,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
