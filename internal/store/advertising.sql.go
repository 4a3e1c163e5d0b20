// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createAdvertiser = `INSERT INTO advertisers (name, email, mobile, active, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, email, mobile, active, created_at`

type CreateAdvertiserParams struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Active    int64     `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateAdvertiser(ctx context.Context, arg CreateAdvertiserParams) (Advertiser, error) {
	row := q.db.QueryRowContext(ctx, createAdvertiser, arg.Name, arg.Email, arg.Mobile, arg.Active, arg.CreatedAt)
	var i Advertiser
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Mobile, &i.Active, &i.CreatedAt)
	return i, err
}

const getAdvertiserByID = `SELECT id, name, email, mobile, active, created_at FROM advertisers WHERE id = ?`

func (q *Queries) GetAdvertiserByID(ctx context.Context, id int64) (Advertiser, error) {
	row := q.db.QueryRowContext(ctx, getAdvertiserByID, id)
	var i Advertiser
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Mobile, &i.Active, &i.CreatedAt)
	return i, err
}

const listAdvertisers = `SELECT id, name, email, mobile, active, created_at FROM advertisers ORDER BY name`

func (q *Queries) ListAdvertisers(ctx context.Context) ([]Advertiser, error) {
	rows, err := q.db.QueryContext(ctx, listAdvertisers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Advertiser{}
	for rows.Next() {
		var i Advertiser
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Mobile, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const advertisementColumns = `id, advertiser_id, ad_name, ad_image, active, created_at`

const createAdvertisement = `INSERT INTO advertisements (advertiser_id, ad_name, ad_image, active, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + advertisementColumns

type CreateAdvertisementParams struct {
	AdvertiserID int64     `json:"advertiser_id"`
	AdName       string    `json:"ad_name"`
	AdImage      string    `json:"ad_image"`
	Active       int64     `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateAdvertisement(ctx context.Context, arg CreateAdvertisementParams) (Advertisement, error) {
	row := q.db.QueryRowContext(ctx, createAdvertisement, arg.AdvertiserID, arg.AdName, arg.AdImage, arg.Active, arg.CreatedAt)
	var i Advertisement
	err := row.Scan(&i.ID, &i.AdvertiserID, &i.AdName, &i.AdImage, &i.Active, &i.CreatedAt)
	return i, err
}

const getAdvertisementByID = `SELECT ` + advertisementColumns + ` FROM advertisements WHERE id = ?`

func (q *Queries) GetAdvertisementByID(ctx context.Context, id int64) (Advertisement, error) {
	row := q.db.QueryRowContext(ctx, getAdvertisementByID, id)
	var i Advertisement
	err := row.Scan(&i.ID, &i.AdvertiserID, &i.AdName, &i.AdImage, &i.Active, &i.CreatedAt)
	return i, err
}

const listAdvertisements = `SELECT ` + advertisementColumns + ` FROM advertisements ORDER BY created_at DESC, id DESC`

func (q *Queries) ListAdvertisements(ctx context.Context) ([]Advertisement, error) {
	rows, err := q.db.QueryContext(ctx, listAdvertisements)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Advertisement{}
	for rows.Next() {
		var i Advertisement
		if err := rows.Scan(&i.ID, &i.AdvertiserID, &i.AdName, &i.AdImage, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listClientAdvertisements = `SELECT c.id, c.name, a.id, a.ad_name, a.ad_image, a.active
FROM clients c
LEFT JOIN advertisements a ON a.id = c.advertisement_id
ORDER BY c.name`

type ListClientAdvertisementsRow struct {
	ClientID        int64          `json:"client_id"`
	ClientName      string         `json:"client_name"`
	AdvertisementID sql.NullInt64  `json:"advertisement_id"`
	AdName          sql.NullString `json:"ad_name"`
	AdImage         sql.NullString `json:"ad_image"`
	Active          sql.NullInt64  `json:"active"`
}

// ListClientAdvertisements returns every client with its allocated advertisement, if any.
func (q *Queries) ListClientAdvertisements(ctx context.Context) ([]ListClientAdvertisementsRow, error) {
	rows, err := q.db.QueryContext(ctx, listClientAdvertisements)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ListClientAdvertisementsRow{}
	for rows.Next() {
		var i ListClientAdvertisementsRow
		if err := rows.Scan(
			&i.ClientID,
			&i.ClientName,
			&i.AdvertisementID,
			&i.AdName,
			&i.AdImage,
			&i.Active,
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
