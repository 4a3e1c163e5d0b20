// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/exhibit-cms/internal/language"
)

func TestLanguageCache(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	ctx := context.Background()

	stored := map[int64]language.Flags{
		1: {"english": 1, "hindi": 1},
		2: {"english": 1},
	}
	loads := 0
	lc := NewLanguageCache(mem, time.Minute, func(_ context.Context, id int64) (language.Flags, error) {
		loads++
		return stored[id], nil
	})

	active, err := lc.Active(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"english", "hindi"}, active)
	_, err = lc.Active(ctx, 1)
	require.NoError(t, err)
	_, err = lc.Active(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "second read of client 1 is served from cache")

	stored[1] = language.Flags{"english": 1, "tamil": 1}
	require.NoError(t, lc.Invalidate(ctx, 1))
	active, err = lc.Active(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"english", "tamil"}, active)
	assert.Equal(t, 3, loads)

	_ = mem.Set(ctx, "reset:abc", []byte("code"), 0)
	require.NoError(t, lc.Reset(ctx))
	assert.False(t, cached(ctx, mem, "langs:1"))
	assert.False(t, cached(ctx, mem, "langs:2"))
	assert.True(t, cached(ctx, mem, "reset:abc"), "other namespaces survive a reset")

	_, err = lc.Active(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, loads)
}
