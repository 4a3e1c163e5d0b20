// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/exhibit-cms/internal/service"
)

// Default schedules of the maintenance jobs.
const (
	ExpireClientsSchedule = "@hourly"
	PurgeAuditSchedule    = "30 3 * * *"
	PruneLimitersSchedule = "*/10 * * * *"
	ReloadGeoIPSchedule   = "15 4 * * *"
)

// maxLimiterEntries is the per-IP limiter map size above which it is reset.
const maxLimiterEntries = 10000

// ClientExpirer deactivates clients past their validity date.
type ClientExpirer interface {
	ExpireClients(ctx context.Context) (int64, error)
}

// AuditPurger removes old events and activity logs.
type AuditPurger interface {
	Purge(ctx context.Context, olderThan time.Duration) (service.PurgeResult, error)
}

// LimiterPruner bounds the memory of a per-IP rate limiter.
type LimiterPruner interface {
	Prune(maxSize int)
}

// DatabaseReloader reopens a file-backed database after it is replaced on disk.
type DatabaseReloader interface {
	Reload() error
}

// MaintenanceConfig selects the maintenance jobs to register. Nil
// collaborators skip their job.
type MaintenanceConfig struct {
	Clients   ClientExpirer
	Audit     AuditPurger
	Retention time.Duration
	Limiter   LimiterPruner
	GeoIP     DatabaseReloader
	Logger    *slog.Logger
}

// MaintenanceJobs builds the periodic jobs of the CMS.
func MaintenanceJobs(cfg MaintenanceConfig) []Job {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var jobs []Job
	if cfg.Clients != nil {
		jobs = append(jobs, Job{
			Name:        "expire-clients",
			Description: "Deactivate clients whose validity date has passed",
			Schedule:    ExpireClientsSchedule,
			Run: func(ctx context.Context) error {
				n, err := cfg.Clients.ExpireClients(ctx)
				if err != nil {
					return err
				}
				if n > 0 {
					logger.Info("expired clients", "count", n)
				}
				return nil
			},
		})
	}
	if cfg.Audit != nil && cfg.Retention > 0 {
		jobs = append(jobs, Job{
			Name:        "purge-audit",
			Description: "Delete events and activity logs past the retention period",
			Schedule:    PurgeAuditSchedule,
			Run: func(ctx context.Context) error {
				_, err := cfg.Audit.Purge(ctx, cfg.Retention)
				return err
			},
		})
	}
	if cfg.Limiter != nil {
		jobs = append(jobs, Job{
			Name:        "prune-rate-limiters",
			Description: "Forget idle per-IP rate limiters",
			Schedule:    PruneLimitersSchedule,
			Run: func(context.Context) error {
				cfg.Limiter.Prune(maxLimiterEntries)
				return nil
			},
		})
	}
	if cfg.GeoIP != nil {
		jobs = append(jobs, Job{
			Name:        "reload-geoip",
			Description: "Pick up a refreshed GeoLite2 country database",
			Schedule:    ReloadGeoIPSchedule,
			Run: func(context.Context) error {
				return cfg.GeoIP.Reload()
			},
		})
	}
	return jobs
}
