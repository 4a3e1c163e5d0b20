// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const landingPageColumns = `id, client_id, display_image, title, description, unique_url, qr_code, isl_video,
translations, created_at, updated_at`

func scanLandingPage(row interface{ Scan(...interface{}) error }) (LandingPage, error) {
	var i LandingPage
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.DisplayImage,
		&i.Title,
		&i.Description,
		&i.UniqueUrl,
		&i.QrCode,
		&i.IslVideo,
		&i.Translations,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createLandingPage = `INSERT INTO landing_pages (
    client_id, display_image, title, description, unique_url, qr_code, isl_video, translations, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + landingPageColumns

type CreateLandingPageParams struct {
	ClientID     int64     `json:"client_id"`
	DisplayImage string    `json:"display_image"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	UniqueUrl    string    `json:"unique_url"`
	QrCode       string    `json:"qr_code"`
	IslVideo     string    `json:"isl_video"`
	Translations string    `json:"translations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateLandingPage(ctx context.Context, arg CreateLandingPageParams) (LandingPage, error) {
	row := q.db.QueryRowContext(ctx, createLandingPage,
		arg.ClientID,
		arg.DisplayImage,
		arg.Title,
		arg.Description,
		arg.UniqueUrl,
		arg.QrCode,
		arg.IslVideo,
		arg.Translations,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanLandingPage(row)
}

const getLandingPageByClientID = `SELECT ` + landingPageColumns + ` FROM landing_pages WHERE client_id = ?`

func (q *Queries) GetLandingPageByClientID(ctx context.Context, clientID int64) (LandingPage, error) {
	return scanLandingPage(q.db.QueryRowContext(ctx, getLandingPageByClientID, clientID))
}

const getLandingPageByUniqueURL = `SELECT ` + landingPageColumns + ` FROM landing_pages WHERE unique_url = ?`

func (q *Queries) GetLandingPageByUniqueURL(ctx context.Context, uniqueURL string) (LandingPage, error) {
	return scanLandingPage(q.db.QueryRowContext(ctx, getLandingPageByUniqueURL, uniqueURL))
}

const updateLandingPage = `UPDATE landing_pages SET
    display_image = ?, title = ?, description = ?, isl_video = ?, translations = ?, updated_at = ?
WHERE id = ?
RETURNING ` + landingPageColumns

type UpdateLandingPageParams struct {
	DisplayImage string    `json:"display_image"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	IslVideo     string    `json:"isl_video"`
	Translations string    `json:"translations"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateLandingPage(ctx context.Context, arg UpdateLandingPageParams) (LandingPage, error) {
	row := q.db.QueryRowContext(ctx, updateLandingPage,
		arg.DisplayImage,
		arg.Title,
		arg.Description,
		arg.IslVideo,
		arg.Translations,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanLandingPage(row)
}
