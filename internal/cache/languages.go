// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/olegiv/exhibit-cms/internal/language"
)

// LanguageLoader reads a client's language flags from the database.
type LanguageLoader func(ctx context.Context, clientID int64) (language.Flags, error)

// LanguageCache caches the language flags of each client.
// Entries are invalidated whenever a client's languages are edited.
type LanguageCache struct {
	typed *TypedCache[language.Flags]
	load  LanguageLoader
}

// NewLanguageCache wraps c with a loader used on cache misses.
func NewLanguageCache(c Cache, ttl time.Duration, load LanguageLoader) *LanguageCache {
	return &LanguageCache{
		typed: NewTypedCache[language.Flags](c, "langs:", ttl),
		load:  load,
	}
}

// Flags returns the cached flags for clientID, loading them on a miss.
func (lc *LanguageCache) Flags(ctx context.Context, clientID int64) (language.Flags, error) {
	flags, err := lc.typed.GetOrSet(ctx, strconv.FormatInt(clientID, 10), func() (*language.Flags, error) {
		f, err := lc.load(ctx, clientID)
		if err != nil {
			return nil, err
		}
		return &f, nil
	})
	if err != nil {
		return nil, err
	}
	return *flags, nil
}

// Active returns the active language names for clientID in registry order.
func (lc *LanguageCache) Active(ctx context.Context, clientID int64) ([]string, error) {
	flags, err := lc.Flags(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return flags.Active(), nil
}

// Invalidate drops the cached flags for clientID.
func (lc *LanguageCache) Invalidate(ctx context.Context, clientID int64) error {
	return lc.typed.Delete(ctx, strconv.FormatInt(clientID, 10))
}

// Reset drops the cached flags of every client.
func (lc *LanguageCache) Reset(ctx context.Context) error {
	return lc.typed.Clear(ctx)
}
