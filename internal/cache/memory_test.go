// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 100})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// cached reports whether key currently holds a value in c.
func cached(ctx context.Context, c Cache, key string) bool {
	_, err := c.Get(ctx, key)
	return err == nil
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	if !cached(ctx, cache, "key1") {
		t.Error("expected key1 to exist")
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
	if _, err := cache.TTL(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("TTL of expired key: got %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Take(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "code", []byte("123456"), time.Minute)

	val, err := cache.Take(ctx, "code")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if string(val) != "123456" {
		t.Errorf("Take = %q, want 123456", val)
	}

	if _, err := cache.Take(ctx, "code"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("second Take = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_TakeConcurrent(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()
	_ = cache.Set(ctx, "once", []byte("x"), time.Minute)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Take(ctx, "once"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Take succeeded %d times, want 1", wins)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), time.Minute)

	ttl, err := cache.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}

	if _, err := cache.TTL(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("TTL(missing) = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "langs:1", []byte("a"), 0)
	_ = cache.Set(ctx, "langs:2", []byte("b"), 0)
	_ = cache.Set(ctx, "reset:1", []byte("c"), 0)

	if err := cache.DeleteByPrefix(ctx, "langs:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for _, key := range []string{"langs:1", "langs:2"} {
		if cached(ctx, cache, key) {
			t.Errorf("%s should have been deleted", key)
		}
	}
	if !cached(ctx, cache, "reset:1") {
		t.Error("reset:1 should remain")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("12345"), 0)
	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 set", stats)
	}
	if stats.Items != 1 {
		t.Errorf("Items = %d, want 1", stats.Items)
	}
	if stats.Size != 5 {
		t.Errorf("Size = %d, want 5", stats.Size)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
	if stats.Evictions != 0 {
		t.Errorf("Evictions = %d, want 0", stats.Evictions)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "key" + strconv.Itoa(n%10)
			_ = cache.Set(ctx, key, []byte(key), 0)
			_, _ = cache.Get(ctx, key)
			_ = cache.Delete(ctx, key)
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	original := []byte("original")
	_ = cache.Set(ctx, "k", original, 0)
	original[0] = 'X'

	val, _ := cache.Get(ctx, "k")
	if string(val) != "original" {
		t.Errorf("stored value mutated: %s", val)
	}

	val[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliases storage: %s", again)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := cache.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after close = %v, want ErrCacheClosed", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after close = %v, want ErrCacheClosed", err)
	}
	if err := cache.Ping(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping after close = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_MaxSizeEvictsSoonestExpiry(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 2})
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("a"), time.Minute)
	_ = cache.Set(ctx, "long", []byte("b"), time.Hour)
	_ = cache.Set(ctx, "new", []byte("c"), time.Hour)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected short to be evicted, got %v", err)
	}
	for _, k := range []string{"long", "new"} {
		if _, err := cache.Get(ctx, k); err != nil {
			t.Errorf("Get(%q): %v", k, err)
		}
	}
	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items = %d, want 2", got)
	}
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}

	// Overwriting an existing key never evicts.
	_ = cache.Set(ctx, "long", []byte("b2"), time.Hour)
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("overwrite evicted: Evictions = %d", got)
	}
}
