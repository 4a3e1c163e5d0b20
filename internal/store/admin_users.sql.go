// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const adminUserColumns = `id, name, email, mobile, password_hash, user_type, status, created_at, updated_at`

func scanAdminUser(row interface{ Scan(...interface{}) error }) (AdminUser, error) {
	var i AdminUser
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Mobile,
		&i.PasswordHash,
		&i.UserType,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAdminUser = `INSERT INTO admin_users (name, email, mobile, password_hash, user_type, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + adminUserColumns

type CreateAdminUserParams struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"password_hash"`
	UserType     int64     `json:"user_type"`
	Status       int64     `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateAdminUser(ctx context.Context, arg CreateAdminUserParams) (AdminUser, error) {
	row := q.db.QueryRowContext(ctx, createAdminUser,
		arg.Name,
		arg.Email,
		arg.Mobile,
		arg.PasswordHash,
		arg.UserType,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanAdminUser(row)
}

const getAdminUserByID = `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = ?`

func (q *Queries) GetAdminUserByID(ctx context.Context, id int64) (AdminUser, error) {
	return scanAdminUser(q.db.QueryRowContext(ctx, getAdminUserByID, id))
}

const getAdminUserByEmail = `SELECT ` + adminUserColumns + ` FROM admin_users WHERE email = ?`

func (q *Queries) GetAdminUserByEmail(ctx context.Context, email string) (AdminUser, error) {
	return scanAdminUser(q.db.QueryRowContext(ctx, getAdminUserByEmail, email))
}

const listAdminUsers = `SELECT ` + adminUserColumns + ` FROM admin_users ORDER BY created_at DESC`

func (q *Queries) ListAdminUsers(ctx context.Context) ([]AdminUser, error) {
	rows, err := q.db.QueryContext(ctx, listAdminUsers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []AdminUser{}
	for rows.Next() {
		i, err := scanAdminUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAdminUsers = `SELECT COUNT(*) FROM admin_users`

func (q *Queries) CountAdminUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAdminUsers).Scan(&count)
	return count, err
}

const updateAdminUserStatus = `UPDATE admin_users SET status = ?, updated_at = ? WHERE id = ?`

type UpdateAdminUserStatusParams struct {
	Status    int64     `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateAdminUserStatus(ctx context.Context, arg UpdateAdminUserStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAdminUserStatus, arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateAdminUserPassword = `UPDATE admin_users SET password_hash = ?, updated_at = ? WHERE id = ?`

type UpdateAdminUserPasswordParams struct {
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateAdminUserPassword(ctx context.Context, arg UpdateAdminUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateAdminUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}
