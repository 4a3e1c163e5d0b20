// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const clientUserColumns = `id, client_id, user_type, name, email, mobile, password_hash, status, created_at, updated_at`

func scanClientUser(row interface{ Scan(...interface{}) error }) (ClientUser, error) {
	var i ClientUser
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.UserType,
		&i.Name,
		&i.Email,
		&i.Mobile,
		&i.PasswordHash,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createClientUser = `INSERT INTO client_users (client_id, user_type, name, email, mobile, password_hash, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + clientUserColumns

type CreateClientUserParams struct {
	ClientID     int64     `json:"client_id"`
	UserType     int64     `json:"user_type"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"password_hash"`
	Status       int64     `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateClientUser(ctx context.Context, arg CreateClientUserParams) (ClientUser, error) {
	row := q.db.QueryRowContext(ctx, createClientUser,
		arg.ClientID,
		arg.UserType,
		arg.Name,
		arg.Email,
		arg.Mobile,
		arg.PasswordHash,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanClientUser(row)
}

const getClientUserByEmail = `SELECT ` + clientUserColumns + ` FROM client_users WHERE email = ?`

func (q *Queries) GetClientUserByEmail(ctx context.Context, email string) (ClientUser, error) {
	return scanClientUser(q.db.QueryRowContext(ctx, getClientUserByEmail, email))
}

const getClientOwner = `SELECT ` + clientUserColumns + ` FROM client_users
WHERE client_id = ? AND user_type = 0 ORDER BY id LIMIT 1`

// GetClientOwner returns the super-admin user created when the client was onboarded.
func (q *Queries) GetClientOwner(ctx context.Context, clientID int64) (ClientUser, error) {
	return scanClientUser(q.db.QueryRowContext(ctx, getClientOwner, clientID))
}

const listClientUsers = `SELECT ` + clientUserColumns + ` FROM client_users WHERE client_id = ? ORDER BY id`

func (q *Queries) ListClientUsers(ctx context.Context, clientID int64) ([]ClientUser, error) {
	rows, err := q.db.QueryContext(ctx, listClientUsers, clientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ClientUser{}
	for rows.Next() {
		i, err := scanClientUser(rows)
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

const updateClientUserPassword = `UPDATE client_users SET password_hash = ?, updated_at = ? WHERE id = ?`

type UpdateClientUserPasswordParams struct {
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateClientUserPassword(ctx context.Context, arg UpdateClientUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateClientUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateClientUserContact = `UPDATE client_users SET name = ?, email = ?, mobile = ?, status = ?, updated_at = ?
WHERE id = ?`

type UpdateClientUserContactParams struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Status    int64     `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateClientUserContact(ctx context.Context, arg UpdateClientUserContactParams) error {
	_, err := q.db.ExecContext(ctx, updateClientUserContact,
		arg.Name,
		arg.Email,
		arg.Mobile,
		arg.Status,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}
