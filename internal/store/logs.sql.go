// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createExhibitLog = `INSERT INTO exhibit_logs (
    client_id, client_name, exhibit_code, user_mobile, device_type, ip_address, advertisement_id, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateExhibitLogParams struct {
	ClientID        int64         `json:"client_id"`
	ClientName      string        `json:"client_name"`
	ExhibitCode     string        `json:"exhibit_code"`
	UserMobile      string        `json:"user_mobile"`
	DeviceType      string        `json:"device_type"`
	IpAddress       string        `json:"ip_address"`
	AdvertisementID sql.NullInt64 `json:"advertisement_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (q *Queries) CreateExhibitLog(ctx context.Context, arg CreateExhibitLogParams) error {
	_, err := q.db.ExecContext(ctx, createExhibitLog,
		arg.ClientID,
		arg.ClientName,
		arg.ExhibitCode,
		arg.UserMobile,
		arg.DeviceType,
		arg.IpAddress,
		arg.AdvertisementID,
		arg.CreatedAt,
	)
	return err
}

const listExhibitLogsByClient = `SELECT id, client_id, client_name, exhibit_code, user_mobile, device_type, ip_address,
advertisement_id, created_at
FROM exhibit_logs WHERE client_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

type ListExhibitLogsByClientParams struct {
	ClientID int64 `json:"client_id"`
	Limit    int64 `json:"limit"`
	Offset   int64 `json:"offset"`
}

func (q *Queries) ListExhibitLogsByClient(ctx context.Context, arg ListExhibitLogsByClientParams) ([]ExhibitLog, error) {
	rows, err := q.db.QueryContext(ctx, listExhibitLogsByClient, arg.ClientID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ExhibitLog{}
	for rows.Next() {
		var i ExhibitLog
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.ClientName,
			&i.ExhibitCode,
			&i.UserMobile,
			&i.DeviceType,
			&i.IpAddress,
			&i.AdvertisementID,
			&i.CreatedAt,
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

const countExhibitLogsByClient = `SELECT COUNT(*) FROM exhibit_logs WHERE client_id = ?`

func (q *Queries) CountExhibitLogsByClient(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countExhibitLogsByClient, clientID).Scan(&count)
	return count, err
}

const createVisitor = `INSERT INTO visitors (client_id, name, mobile, created_at) VALUES (?, ?, ?, ?)
RETURNING id, client_id, name, mobile, created_at`

type CreateVisitorParams struct {
	ClientID  int64     `json:"client_id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateVisitor(ctx context.Context, arg CreateVisitorParams) (Visitor, error) {
	row := q.db.QueryRowContext(ctx, createVisitor, arg.ClientID, arg.Name, arg.Mobile, arg.CreatedAt)
	var i Visitor
	err := row.Scan(&i.ID, &i.ClientID, &i.Name, &i.Mobile, &i.CreatedAt)
	return i, err
}

const listVisitorsByClient = `SELECT id, client_id, name, mobile, created_at FROM visitors
WHERE client_id = ? ORDER BY created_at DESC, id DESC`

func (q *Queries) ListVisitorsByClient(ctx context.Context, clientID int64) ([]Visitor, error) {
	rows, err := q.db.QueryContext(ctx, listVisitorsByClient, clientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Visitor{}
	for rows.Next() {
		var i Visitor
		if err := rows.Scan(&i.ID, &i.ClientID, &i.Name, &i.Mobile, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createActivityLog = `INSERT INTO activity_logs (email, ip_address, action, created_at) VALUES (?, ?, ?, ?)`

type CreateActivityLogParams struct {
	Email     string    `json:"email"`
	IpAddress string    `json:"ip_address"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) error {
	_, err := q.db.ExecContext(ctx, createActivityLog, arg.Email, arg.IpAddress, arg.Action, arg.CreatedAt)
	return err
}

const listActivityLogs = `SELECT id, email, ip_address, action, created_at FROM activity_logs
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

type ListActivityLogsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListActivityLogs(ctx context.Context, arg ListActivityLogsParams) ([]ActivityLog, error) {
	rows, err := q.db.QueryContext(ctx, listActivityLogs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ActivityLog{}
	for rows.Next() {
		var i ActivityLog
		if err := rows.Scan(&i.ID, &i.Email, &i.IpAddress, &i.Action, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActivityLogs = `SELECT COUNT(*) FROM activity_logs`

func (q *Queries) CountActivityLogs(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActivityLogs).Scan(&count)
	return count, err
}

const deleteActivityLogsBefore = `DELETE FROM activity_logs WHERE created_at < ?`

func (q *Queries) DeleteActivityLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteActivityLogsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
