// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/language"
	"github.com/olegiv/exhibit-cms/internal/store"
)

// DefaultLanguageCacheTTL bounds how long a client's language set is cached.
const DefaultLanguageCacheTTL = 10 * time.Minute

// NewLanguageCache returns a LanguageCache backed by the client_languages table.
func NewLanguageCache(queries *store.Queries, c cache.Cache, ttl time.Duration) *cache.LanguageCache {
	if ttl <= 0 {
		ttl = DefaultLanguageCacheTTL
	}
	return cache.NewLanguageCache(c, ttl, loadLanguages(queries))
}

func loadLanguages(queries *store.Queries) cache.LanguageLoader {
	return func(ctx context.Context, clientID int64) (language.Flags, error) {
		rows, err := queries.ListClientLanguages(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("listing client languages: %w", err)
		}
		if len(rows) == 0 {
			return nil, ErrTenantLanguagesNotFound
		}
		flags := make(language.Flags, len(rows))
		for _, r := range rows {
			flags[r.Language] = int(r.Enabled)
		}
		return flags, nil
	}
}

// saveLanguages writes a complete flag set for clientID.
func saveLanguages(ctx context.Context, queries *store.Queries, clientID int64, flags language.Flags) error {
	for name, v := range flags.Complete() {
		if err := queries.UpsertClientLanguage(ctx, store.UpsertClientLanguageParams{
			ClientID: clientID,
			Language: name,
			Enabled:  int64(v),
		}); err != nil {
			return fmt.Errorf("saving language %s: %w", name, err)
		}
	}
	return nil
}
