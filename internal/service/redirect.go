// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/exhibit-cms/internal/geoip"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/tracking"
	"github.com/olegiv/exhibit-cms/internal/util"
)

// RedirectService resolves QR short links and records scans.
type RedirectService struct {
	queries      *store.Queries
	geo          *geoip.Lookup
	allowPrivate bool
	logger       *slog.Logger
	now          func() time.Time
}

// NewRedirectService creates a RedirectService. geo may be nil. allowPrivate
// permits redirect targets on private networks, for development.
func NewRedirectService(db *sql.DB, geo *geoip.Lookup, allowPrivate bool, logger *slog.Logger) *RedirectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedirectService{
		queries:      store.New(db),
		geo:          geo,
		allowPrivate: allowPrivate,
		logger:       logger,
		now:          time.Now,
	}
}

// Resolve returns the target of a short link and records the scan.
func (s *RedirectService) Resolve(ctx context.Context, shortURL string, visit tracking.Visit) (string, error) {
	m, err := s.queries.GetRedirectMappingByShortURL(ctx, shortURL)
	if err != nil {
		return "", notFound(err, "short URL")
	}

	var country string
	if s.geo != nil {
		country = s.geo.Country(visit.IP)
	}
	if err := s.queries.CreateQrScan(ctx, store.CreateQrScanParams{
		ClientID:          sql.NullInt64{Int64: m.ClientID, Valid: true},
		RedirectMappingID: sql.NullInt64{Int64: m.ID, Valid: true},
		ShortUrl:          shortURL,
		IpAddress:         visit.IP,
		DeviceType:        visit.DeviceType,
		Country:           country,
		ScannedAt:         s.now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("recording QR scan: %w", err)
	}
	return m.RedirectUrl, nil
}

// UpdateInput changes where a short link points.
type UpdateInput struct {
	ShortURL    string `json:"shortUrl" validate:"required,max=100"`
	RedirectURL string `json:"redirectUrl" validate:"required"`
}

// Update creates or repoints a short link owned by clientID. An existing
// mapping of another client is not taken over.
func (s *RedirectService) Update(ctx context.Context, clientID int64, in UpdateInput) (store.RedirectMapping, error) {
	in.ShortURL = strings.TrimSpace(in.ShortURL)
	in.RedirectURL = strings.TrimSpace(in.RedirectURL)
	if err := validateStruct(in); err != nil {
		return store.RedirectMapping{}, err
	}
	if !util.IsValidSlug(in.ShortURL) {
		return store.RedirectMapping{}, invalid("shortUrl", "Short URL may only contain lowercase letters, digits and inner hyphens")
	}
	if err := util.ValidateRedirectURL(in.RedirectURL, s.allowPrivate); err != nil {
		return store.RedirectMapping{}, invalid("redirectUrl", err.Error())
	}

	existing, err := s.queries.GetRedirectMappingByShortURL(ctx, in.ShortURL)
	switch {
	case err == nil && existing.ClientID != clientID:
		return store.RedirectMapping{}, fmt.Errorf("short URL %w", ErrConflict)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return store.RedirectMapping{}, fmt.Errorf("loading redirect mapping: %w", err)
	}

	now := s.now().UTC()
	m, err := s.queries.UpsertRedirectMapping(ctx, store.UpsertRedirectMappingParams{
		ClientID:    clientID,
		ShortUrl:    in.ShortURL,
		RedirectUrl: in.RedirectURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.RedirectMapping{}, fmt.Errorf("saving redirect mapping: %w", err)
	}
	s.logger.Info("redirect updated", "client_id", clientID, "short_url", in.ShortURL)
	return m, nil
}
