// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const upsertClientLanguage = `INSERT INTO client_languages (client_id, language, enabled) VALUES (?, ?, ?)
ON CONFLICT (client_id, language) DO UPDATE SET enabled = excluded.enabled`

type UpsertClientLanguageParams struct {
	ClientID int64  `json:"client_id"`
	Language string `json:"language"`
	Enabled  int64  `json:"enabled"`
}

func (q *Queries) UpsertClientLanguage(ctx context.Context, arg UpsertClientLanguageParams) error {
	_, err := q.db.ExecContext(ctx, upsertClientLanguage, arg.ClientID, arg.Language, arg.Enabled)
	return err
}

const listClientLanguages = `SELECT client_id, language, enabled FROM client_languages WHERE client_id = ?`

func (q *Queries) ListClientLanguages(ctx context.Context, clientID int64) ([]ClientLanguage, error) {
	rows, err := q.db.QueryContext(ctx, listClientLanguages, clientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ClientLanguage{}
	for rows.Next() {
		var i ClientLanguage
		if err := rows.Scan(&i.ClientID, &i.Language, &i.Enabled); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
