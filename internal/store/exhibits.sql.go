// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const exhibitColumns = `id, client_id, code, title, description, title_image, images, isl_video, status,
translations, created_at, updated_at`

func scanExhibit(row interface{ Scan(...interface{}) error }) (Exhibit, error) {
	var i Exhibit
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Code,
		&i.Title,
		&i.Description,
		&i.TitleImage,
		&i.Images,
		&i.IslVideo,
		&i.Status,
		&i.Translations,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createExhibit = `INSERT INTO exhibits (
    client_id, code, title, description, title_image, images, isl_video, status, translations, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + exhibitColumns

type CreateExhibitParams struct {
	ClientID     int64     `json:"client_id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TitleImage   string    `json:"title_image"`
	Images       string    `json:"images"`
	IslVideo     string    `json:"isl_video"`
	Status       int64     `json:"status"`
	Translations string    `json:"translations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateExhibit(ctx context.Context, arg CreateExhibitParams) (Exhibit, error) {
	row := q.db.QueryRowContext(ctx, createExhibit,
		arg.ClientID,
		arg.Code,
		arg.Title,
		arg.Description,
		arg.TitleImage,
		arg.Images,
		arg.IslVideo,
		arg.Status,
		arg.Translations,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanExhibit(row)
}

const getExhibitByCode = `SELECT ` + exhibitColumns + ` FROM exhibits WHERE code = ?`

func (q *Queries) GetExhibitByCode(ctx context.Context, code string) (Exhibit, error) {
	return scanExhibit(q.db.QueryRowContext(ctx, getExhibitByCode, code))
}

const exhibitCodeExists = `SELECT COUNT(*) FROM exhibits WHERE code = ?`

func (q *Queries) ExhibitCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, exhibitCodeExists, code).Scan(&count)
	return count > 0, err
}

const listExhibitsByClient = `SELECT ` + exhibitColumns + ` FROM exhibits WHERE client_id = ? ORDER BY created_at DESC, id DESC`

func (q *Queries) ListExhibitsByClient(ctx context.Context, clientID int64) ([]Exhibit, error) {
	rows, err := q.db.QueryContext(ctx, listExhibitsByClient, clientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Exhibit{}
	for rows.Next() {
		i, err := scanExhibit(rows)
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

const updateExhibit = `UPDATE exhibits SET
    title = ?, description = ?, title_image = ?, images = ?, isl_video = ?, translations = ?, updated_at = ?
WHERE id = ?
RETURNING ` + exhibitColumns

type UpdateExhibitParams struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TitleImage   string    `json:"title_image"`
	Images       string    `json:"images"`
	IslVideo     string    `json:"isl_video"`
	Translations string    `json:"translations"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateExhibit(ctx context.Context, arg UpdateExhibitParams) (Exhibit, error) {
	row := q.db.QueryRowContext(ctx, updateExhibit,
		arg.Title,
		arg.Description,
		arg.TitleImage,
		arg.Images,
		arg.IslVideo,
		arg.Translations,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanExhibit(row)
}

const updateExhibitStatus = `UPDATE exhibits SET status = ?, updated_at = ? WHERE code = ?`

type UpdateExhibitStatusParams struct {
	Status    int64     `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `json:"code"`
}

func (q *Queries) UpdateExhibitStatus(ctx context.Context, arg UpdateExhibitStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExhibitStatus, arg.Status, arg.UpdatedAt, arg.Code)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExhibit = `DELETE FROM exhibits WHERE code = ?`

func (q *Queries) DeleteExhibit(ctx context.Context, code string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExhibit, code)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
