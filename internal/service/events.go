// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/exhibit-cms/internal/store"
)

// EventService reads the persisted warning and error log and purges old
// audit records.
type EventService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		queries: store.New(db),
		logger:  logger,
	}
}

// List returns one page of events, newest first.
func (s *EventService) List(ctx context.Context, page Page) ([]store.Event, error) {
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Limit:  page.limit(),
		Offset: page.offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// PurgeResult counts the records removed by Purge.
type PurgeResult struct {
	Events     int64
	Activities int64
}

// Purge removes events and activity logs older than olderThan.
func (s *EventService) Purge(ctx context.Context, olderThan time.Duration) (PurgeResult, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var res PurgeResult
	var err error
	if res.Events, err = s.queries.DeleteEventsBefore(ctx, cutoff); err != nil {
		return res, fmt.Errorf("deleting events: %w", err)
	}
	if res.Activities, err = s.queries.DeleteActivityLogsBefore(ctx, cutoff); err != nil {
		return res, fmt.Errorf("deleting activity logs: %w", err)
	}

	if res.Events > 0 || res.Activities > 0 {
		s.logger.Info("purged old audit records", "events", res.Events, "activity_logs", res.Activities)
	}
	return res, nil
}
