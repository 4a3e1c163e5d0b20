// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const upsertRedirectMapping = `INSERT INTO redirect_mappings (client_id, short_url, redirect_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (short_url) DO UPDATE SET redirect_url = excluded.redirect_url, updated_at = excluded.updated_at
RETURNING id, client_id, short_url, redirect_url, created_at, updated_at`

type UpsertRedirectMappingParams struct {
	ClientID    int64     `json:"client_id"`
	ShortUrl    string    `json:"short_url"`
	RedirectUrl string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Queries) UpsertRedirectMapping(ctx context.Context, arg UpsertRedirectMappingParams) (RedirectMapping, error) {
	row := q.db.QueryRowContext(ctx, upsertRedirectMapping,
		arg.ClientID,
		arg.ShortUrl,
		arg.RedirectUrl,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i RedirectMapping
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.ShortUrl,
		&i.RedirectUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getRedirectMappingByShortURL = `SELECT id, client_id, short_url, redirect_url, created_at, updated_at
FROM redirect_mappings WHERE short_url = ?`

func (q *Queries) GetRedirectMappingByShortURL(ctx context.Context, shortURL string) (RedirectMapping, error) {
	row := q.db.QueryRowContext(ctx, getRedirectMappingByShortURL, shortURL)
	var i RedirectMapping
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.ShortUrl,
		&i.RedirectUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createQrScan = `INSERT INTO qr_scans (client_id, redirect_mapping_id, short_url, ip_address, device_type, country, scanned_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateQrScanParams struct {
	ClientID          sql.NullInt64 `json:"client_id"`
	RedirectMappingID sql.NullInt64 `json:"redirect_mapping_id"`
	ShortUrl          string        `json:"short_url"`
	IpAddress         string        `json:"ip_address"`
	DeviceType        string        `json:"device_type"`
	Country           string        `json:"country"`
	ScannedAt         time.Time     `json:"scanned_at"`
}

func (q *Queries) CreateQrScan(ctx context.Context, arg CreateQrScanParams) error {
	_, err := q.db.ExecContext(ctx, createQrScan,
		arg.ClientID,
		arg.RedirectMappingID,
		arg.ShortUrl,
		arg.IpAddress,
		arg.DeviceType,
		arg.Country,
		arg.ScannedAt,
	)
	return err
}

const listQrScans = `SELECT id, client_id, redirect_mapping_id, short_url, ip_address, device_type, country, scanned_at
FROM qr_scans ORDER BY scanned_at DESC, id DESC LIMIT ? OFFSET ?`

type ListQrScansParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListQrScans(ctx context.Context, arg ListQrScansParams) ([]QrScan, error) {
	rows, err := q.db.QueryContext(ctx, listQrScans, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []QrScan{}
	for rows.Next() {
		var i QrScan
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.RedirectMappingID,
			&i.ShortUrl,
			&i.IpAddress,
			&i.DeviceType,
			&i.Country,
			&i.ScannedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countQrScans = `SELECT COUNT(*) FROM qr_scans`

func (q *Queries) CountQrScans(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countQrScans).Scan(&count)
	return count, err
}
