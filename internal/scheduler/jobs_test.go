// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/testutil"
)

type fakeExpirer struct {
	calls int
	err   error
}

func (f *fakeExpirer) ExpireClients(context.Context) (int64, error) {
	f.calls++
	return 2, f.err
}

type fakePurger struct {
	olderThan time.Duration
}

func (f *fakePurger) Purge(_ context.Context, olderThan time.Duration) (service.PurgeResult, error) {
	f.olderThan = olderThan
	return service.PurgeResult{Events: 1}, nil
}

type fakePruner struct {
	maxSize int
}

func (f *fakePruner) Prune(maxSize int) {
	f.maxSize = maxSize
}

type fakeReloader struct {
	calls int
}

func (f *fakeReloader) Reload() error {
	f.calls++
	return nil
}

func TestMaintenanceJobs(t *testing.T) {
	expirer := &fakeExpirer{}
	purger := &fakePurger{}
	pruner := &fakePruner{}
	reloader := &fakeReloader{}

	s := New(testutil.TestLoggerSilent())
	for _, job := range MaintenanceJobs(MaintenanceConfig{
		Clients:   expirer,
		Audit:     purger,
		Retention: 90 * 24 * time.Hour,
		Limiter:   pruner,
		GeoIP:     reloader,
		Logger:    testutil.TestLoggerSilent(),
	}) {
		require.NoError(t, s.Add(job))
	}

	names := make([]string, 0, 4)
	for _, j := range s.List() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"expire-clients", "prune-rate-limiters", "purge-audit", "reload-geoip"}, names)

	ctx := context.Background()
	require.NoError(t, s.TriggerNow(ctx, "expire-clients"))
	assert.Equal(t, 1, expirer.calls)

	require.NoError(t, s.TriggerNow(ctx, "purge-audit"))
	assert.Equal(t, 90*24*time.Hour, purger.olderThan)

	require.NoError(t, s.TriggerNow(ctx, "prune-rate-limiters"))
	assert.Equal(t, maxLimiterEntries, pruner.maxSize)

	require.NoError(t, s.TriggerNow(ctx, "reload-geoip"))
	assert.Equal(t, 1, reloader.calls)

	expirer.err = errors.New("db locked")
	assert.Error(t, s.TriggerNow(ctx, "expire-clients"))
}

func TestMaintenanceJobs_SkipsMissing(t *testing.T) {
	jobs := MaintenanceJobs(MaintenanceConfig{
		Clients: &fakeExpirer{},
		Audit:   &fakePurger{}, // no retention: purging disabled
	})
	require.Len(t, jobs, 1)
	assert.Equal(t, "expire-clients", jobs[0].Name)
}

func TestMaintenanceJobs_WithServices(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	events := service.NewEventService(db, testutil.TestLoggerSilent())
	jobs := MaintenanceJobs(MaintenanceConfig{Audit: events, Retention: time.Hour})
	require.Len(t, jobs, 1)
	assert.NoError(t, jobs[0].Run(context.Background()))
}
