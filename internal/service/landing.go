// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/qrcode"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// Landing is the API shape of a client's landing page.
type Landing struct {
	ID           int64             `json:"id"`
	ClientID     int64             `json:"clientId"`
	DisplayImage string            `json:"displayImage"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	UniqueURL    string            `json:"uniqueUrl"`
	QRCode       string            `json:"qrCode"`
	IslVideo     string            `json:"islVideo,omitempty"`
	Translations []localize.Record `json:"translations"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func landingFromRow(row store.LandingPage) (Landing, error) {
	records, err := localize.Decode(row.Translations)
	if err != nil {
		return Landing{}, err
	}
	return Landing{
		ID:           row.ID,
		ClientID:     row.ClientID,
		DisplayImage: row.DisplayImage,
		Title:        row.Title,
		Description:  row.Description,
		UniqueURL:    row.UniqueUrl,
		QRCode:       row.QrCode,
		IslVideo:     row.IslVideo,
		Translations: records,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// LandingInput holds the fields of a new landing page.
type LandingInput struct {
	Title        string
	Description  string
	DisplayImage string
	IslVideo     string
	Translations map[string]localize.Override
}

// LandingUpdate is a partial landing page edit. Nil fields are left unchanged.
type LandingUpdate struct {
	Title        *string
	Description  *string
	DisplayImage *string
	IslVideo     *string
	Translations map[string]localize.Override
}

// LandingView is what visitors see when they open a client link.
type LandingView struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	DisplayImage       string            `json:"displayImage"`
	Translations       []localize.Record `json:"translations"`
	AdvertisementImage string            `json:"advertisementImage,omitempty"`
	IslVideo           string            `json:"islVideo,omitempty"`
}

// SetupLanding creates the client's landing page, its QR code and the redirect
// mapping the QR code resolves through. A client has at most one landing page.
func (s *ContentService) SetupLanding(ctx context.Context, clientID int64, in LandingInput) (Landing, error) {
	title := cleanText(in.Title)
	description := cleanText(in.Description)

	fields := map[string]string{}
	if title == "" {
		fields["title"] = "Title is required"
	}
	if description == "" {
		fields["description"] = "Description is required"
	}
	if in.DisplayImage == "" {
		fields["displayImage"] = "Display image is required"
	}
	if err := fieldErrors(fields); err != nil {
		return Landing{}, err
	}
	overrides, err := cleanOverrides(in.Translations)
	if err != nil {
		return Landing{}, err
	}

	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return Landing{}, notFound(err, "client")
	}
	if _, err := s.queries.GetLandingPageByClientID(ctx, clientID); err == nil {
		return Landing{}, fmt.Errorf("landing page %w", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Landing{}, fmt.Errorf("loading landing page: %w", err)
	}

	active, err := s.languages.Active(ctx, clientID)
	if err != nil {
		return Landing{}, err
	}
	records := s.merger.Merge(ctx, nil, active,
		localize.Source{Title: title, Description: description},
		localize.Update{
			Overrides:     overrides,
			RegenerateAll: true,
			SkipAudio:     client.Audio == 0,
		})
	translations, err := localize.Encode(records)
	if err != nil {
		return Landing{}, err
	}

	qr, err := qrcode.DataURL(joinURL(s.urls.Proxy, client.Link))
	if err != nil {
		return Landing{}, fmt.Errorf("generating QR code: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Landing{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := s.queries.WithTx(tx)

	now := s.now().UTC()
	row, err := qtx.CreateLandingPage(ctx, store.CreateLandingPageParams{
		ClientID:     clientID,
		DisplayImage: in.DisplayImage,
		Title:        title,
		Description:  description,
		UniqueUrl:    client.Link,
		QrCode:       qr,
		IslVideo:     in.IslVideo,
		Translations: translations,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Landing{}, fmt.Errorf("creating landing page: %w", err)
	}
	if _, err := qtx.UpsertRedirectMapping(ctx, store.UpsertRedirectMappingParams{
		ClientID:    clientID,
		ShortUrl:    client.Link,
		RedirectUrl: joinURL(s.urls.PWA, client.Link),
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return Landing{}, fmt.Errorf("creating redirect mapping: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Landing{}, fmt.Errorf("committing landing page: %w", err)
	}

	s.logger.Info("landing page created", "client_id", clientID, "link", client.Link)
	return landingFromRow(row)
}

// Landing returns the client's landing page.
func (s *ContentService) Landing(ctx context.Context, clientID int64) (Landing, error) {
	row, err := s.queries.GetLandingPageByClientID(ctx, clientID)
	if err != nil {
		return Landing{}, notFound(err, "landing page")
	}
	return landingFromRow(row)
}

// EditLanding applies a partial edit to the client's landing page.
func (s *ContentService) EditLanding(ctx context.Context, clientID int64, upd LandingUpdate) (Landing, error) {
	row, err := s.queries.GetLandingPageByClientID(ctx, clientID)
	if err != nil {
		return Landing{}, notFound(err, "landing page")
	}

	src, update, err := s.textUpdate(row.Title, row.Description, upd.Title, upd.Description, upd.Translations)
	if err != nil {
		return Landing{}, err
	}
	records, err := s.merge(ctx, clientID, row.Translations, src, update)
	if err != nil {
		return Landing{}, err
	}
	translations, err := localize.Encode(records)
	if err != nil {
		return Landing{}, err
	}

	params := store.UpdateLandingPageParams{
		DisplayImage: row.DisplayImage,
		Title:        src.Title,
		Description:  src.Description,
		IslVideo:     row.IslVideo,
		Translations: translations,
		UpdatedAt:    s.now().UTC(),
		ID:           row.ID,
	}
	if upd.DisplayImage != nil && *upd.DisplayImage != "" {
		params.DisplayImage = *upd.DisplayImage
	}
	if upd.IslVideo != nil {
		params.IslVideo = *upd.IslVideo
	}

	updated, err := s.queries.UpdateLandingPage(ctx, params)
	if err != nil {
		return Landing{}, fmt.Errorf("updating landing page: %w", err)
	}
	return landingFromRow(updated)
}

// ViewLanding returns the public landing page for a client link. The visit is
// written in the background; Wait blocks until pending writes finish.
func (s *ContentService) ViewLanding(ctx context.Context, link string, visit tracking.Visit) (LandingView, error) {
	row, err := s.queries.GetLandingPageByUniqueURL(ctx, link)
	if err != nil {
		return LandingView{}, notFound(err, "landing page")
	}
	client, err := s.queries.GetClientByID(ctx, row.ClientID)
	if err != nil {
		return LandingView{}, notFound(err, "client")
	}
	records, err := localize.Decode(row.Translations)
	if err != nil {
		return LandingView{}, err
	}

	view := LandingView{
		Title:        row.Title,
		Description:  row.Description,
		DisplayImage: row.DisplayImage,
		Translations: records,
		IslVideo:     row.IslVideo,
	}
	if client.AdvertisementID.Valid {
		ad, err := s.queries.GetAdvertisementByID(ctx, client.AdvertisementID.Int64)
		switch {
		case err == nil && ad.Active == 1:
			view.AdvertisementImage = ad.AdImage
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			s.logger.Warn("failed to load advertisement", "client_id", client.ID, "error", err)
		}
	}

	s.visits.Add(1)
	go func() {
		defer s.visits.Done()
		logCtx, cancel := context.WithTimeout(context.Background(), visitLogTimeout)
		defer cancel()
		if err := s.logVisit(logCtx, client, link, visit); err != nil {
			s.logger.Warn("failed to record landing visit", "link", link, "error", err)
		}
	}()

	return view, nil
}

// RelocalizeClient merges the landing page and every exhibit of a client
// again without text changes, after its language settings were edited.
// Newly active languages are generated and deactivated ones dropped.
func (s *ContentService) RelocalizeClient(ctx context.Context, clientID int64) error {
	if _, err := s.EditLanding(ctx, clientID, LandingUpdate{}); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("relocalizing landing page: %w", err)
	}

	exhibits, err := s.queries.ListExhibitsByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("listing exhibits: %w", err)
	}
	for _, e := range exhibits {
		if _, err := s.EditExhibit(ctx, clientID, e.Code, ExhibitUpdate{}); err != nil {
			return fmt.Errorf("relocalizing exhibit %s: %w", e.Code, err)
		}
	}

	s.logger.Info("client content relocalized", "client_id", clientID, "exhibits", len(exhibits))
	return nil
}
