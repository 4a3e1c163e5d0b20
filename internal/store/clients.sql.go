// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const clientColumns = `id, name, email, mobile, status, allotted_users, active_users, display_allotted,
active_displays, text_size, audio, isl, validity_date, link, advertisement_id, created_by, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (Client, error) {
	var i Client
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Mobile,
		&i.Status,
		&i.AllottedUsers,
		&i.ActiveUsers,
		&i.DisplayAllotted,
		&i.ActiveDisplays,
		&i.TextSize,
		&i.Audio,
		&i.Isl,
		&i.ValidityDate,
		&i.Link,
		&i.AdvertisementID,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectClients(rows *sql.Rows) ([]Client, error) {
	defer func() { _ = rows.Close() }()
	items := []Client{}
	for rows.Next() {
		i, err := scanClient(rows)
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

const createClient = `INSERT INTO clients (
    name, email, mobile, status, allotted_users, display_allotted, text_size, audio, isl,
    validity_date, link, created_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + clientColumns

type CreateClientParams struct {
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Mobile          string        `json:"mobile"`
	Status          int64         `json:"status"`
	AllottedUsers   int64         `json:"allotted_users"`
	DisplayAllotted int64         `json:"display_allotted"`
	TextSize        int64         `json:"text_size"`
	Audio           int64         `json:"audio"`
	Isl             int64         `json:"isl"`
	ValidityDate    sql.NullTime  `json:"validity_date"`
	Link            string        `json:"link"`
	CreatedBy       sql.NullInt64 `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (Client, error) {
	row := q.db.QueryRowContext(ctx, createClient,
		arg.Name,
		arg.Email,
		arg.Mobile,
		arg.Status,
		arg.AllottedUsers,
		arg.DisplayAllotted,
		arg.TextSize,
		arg.Audio,
		arg.Isl,
		arg.ValidityDate,
		arg.Link,
		arg.CreatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanClient(row)
}

const getClientByID = `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

func (q *Queries) GetClientByID(ctx context.Context, id int64) (Client, error) {
	return scanClient(q.db.QueryRowContext(ctx, getClientByID, id))
}

const getClientByLink = `SELECT ` + clientColumns + ` FROM clients WHERE link = ?`

func (q *Queries) GetClientByLink(ctx context.Context, link string) (Client, error) {
	return scanClient(q.db.QueryRowContext(ctx, getClientByLink, link))
}

const clientContactExists = `SELECT COUNT(*) FROM clients WHERE (email = ? OR mobile = ?) AND id != ?`

type ClientContactExistsParams struct {
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	ExcludeID int64  `json:"exclude_id"`
}

// ClientContactExists reports whether another client already uses the email or mobile.
func (q *Queries) ClientContactExists(ctx context.Context, arg ClientContactExistsParams) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, clientContactExists, arg.Email, arg.Mobile, arg.ExcludeID).Scan(&count)
	return count > 0, err
}

const listClients = `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC`

func (q *Queries) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, listClients)
	if err != nil {
		return nil, err
	}
	return collectClients(rows)
}

const updateClient = `UPDATE clients SET
    name = ?, email = ?, mobile = ?, status = ?, allotted_users = ?, display_allotted = ?,
    text_size = ?, audio = ?, isl = ?, validity_date = ?, updated_at = ?
WHERE id = ?
RETURNING ` + clientColumns

type UpdateClientParams struct {
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Mobile          string       `json:"mobile"`
	Status          int64        `json:"status"`
	AllottedUsers   int64        `json:"allotted_users"`
	DisplayAllotted int64        `json:"display_allotted"`
	TextSize        int64        `json:"text_size"`
	Audio           int64        `json:"audio"`
	Isl             int64        `json:"isl"`
	ValidityDate    sql.NullTime `json:"validity_date"`
	UpdatedAt       time.Time    `json:"updated_at"`
	ID              int64        `json:"id"`
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (Client, error) {
	row := q.db.QueryRowContext(ctx, updateClient,
		arg.Name,
		arg.Email,
		arg.Mobile,
		arg.Status,
		arg.AllottedUsers,
		arg.DisplayAllotted,
		arg.TextSize,
		arg.Audio,
		arg.Isl,
		arg.ValidityDate,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanClient(row)
}

const updateClientAdvertisement = `UPDATE clients SET advertisement_id = ?, updated_at = ? WHERE id = ?`

type UpdateClientAdvertisementParams struct {
	AdvertisementID sql.NullInt64 `json:"advertisement_id"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ID              int64         `json:"id"`
}

func (q *Queries) UpdateClientAdvertisement(ctx context.Context, arg UpdateClientAdvertisementParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateClientAdvertisement, arg.AdvertisementID, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const expireClients = `UPDATE clients SET status = 0, updated_at = ?
WHERE status = 1 AND validity_date IS NOT NULL AND validity_date < ?`

// ExpireClients deactivates clients whose validity date is before now.
func (q *Queries) ExpireClients(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, expireClients, now, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
