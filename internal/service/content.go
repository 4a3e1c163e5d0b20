// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the exhibit CMS use cases on top of the store,
// the localization pipeline and the outbound integrations.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// Exhibit statuses.
const (
	ExhibitPending  = 0
	ExhibitApproved = 1
)

// visitLogTimeout bounds a background landing visit write.
const visitLogTimeout = 5 * time.Second

// maxCodeAttempts bounds exhibit code generation retries.
const maxCodeAttempts = 10

// URLs are the public addresses links and QR codes point at.
type URLs struct {
	PanelFrontend string // admin and client panel
	PWA           string // visitor app
	Proxy         string // redirect endpoint encoded in QR codes
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ContentService manages exhibits and landing pages.
type ContentService struct {
	db        *sql.DB
	queries   *store.Queries
	merger    *localize.Merger
	languages *cache.LanguageCache
	urls      URLs
	logger    *slog.Logger
	now       func() time.Time

	visits sync.WaitGroup
}

// NewContentService creates a ContentService.
func NewContentService(db *sql.DB, merger *localize.Merger, languages *cache.LanguageCache, urls URLs, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		db:        db,
		queries:   store.New(db),
		merger:    merger,
		languages: languages,
		urls:      urls,
		logger:    logger,
		now:       time.Now,
	}
}

// Exhibit is the API shape of an exhibit.
type Exhibit struct {
	ID           int64             `json:"id"`
	ClientID     int64             `json:"clientId"`
	Code         string            `json:"code"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	TitleImage   string            `json:"titleImage"`
	Images       []string          `json:"images"`
	IslVideo     string            `json:"islVideo,omitempty"`
	Status       int64             `json:"status"`
	Translations []localize.Record `json:"translations"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func exhibitFromRow(row store.Exhibit) (Exhibit, error) {
	records, err := localize.Decode(row.Translations)
	if err != nil {
		return Exhibit{}, err
	}
	return Exhibit{
		ID:           row.ID,
		ClientID:     row.ClientID,
		Code:         row.Code,
		Title:        row.Title,
		Description:  row.Description,
		TitleImage:   row.TitleImage,
		Images:       decodeStrings(row.Images),
		IslVideo:     row.IslVideo,
		Status:       row.Status,
		Translations: records,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// ExhibitInput holds the fields of a new exhibit. Asset fields are URLs of
// files that were already uploaded.
type ExhibitInput struct {
	Title        string
	Description  string
	TitleImage   string
	Images       []string
	IslVideo     string
	Translations map[string]localize.Override
}

// ExhibitUpdate is a partial exhibit edit. Nil fields are left unchanged.
// A non-nil Images replaces the whole gallery.
type ExhibitUpdate struct {
	Title        *string
	Description  *string
	TitleImage   *string
	Images       []string
	IslVideo     *string
	Translations map[string]localize.Override
}

// CreateExhibit stores a new exhibit localized into every active language of
// the client.
func (s *ContentService) CreateExhibit(ctx context.Context, clientID int64, in ExhibitInput) (Exhibit, error) {
	title := cleanText(in.Title)
	description := cleanText(in.Description)

	fields := map[string]string{}
	if title == "" {
		fields["title"] = "Title is required"
	}
	if description == "" {
		fields["description"] = "Description is required"
	}
	if in.TitleImage == "" {
		fields["titleImage"] = "Title image is required"
	}
	if err := fieldErrors(fields); err != nil {
		return Exhibit{}, err
	}

	overrides, err := cleanOverrides(in.Translations)
	if err != nil {
		return Exhibit{}, err
	}

	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return Exhibit{}, notFound(err, "client")
	}
	active, err := s.languages.Active(ctx, clientID)
	if err != nil {
		return Exhibit{}, err
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
		return Exhibit{}, err
	}
	images, err := encodeStrings(in.Images)
	if err != nil {
		return Exhibit{}, err
	}
	code, err := s.newExhibitCode(ctx)
	if err != nil {
		return Exhibit{}, err
	}

	now := s.now().UTC()
	row, err := s.queries.CreateExhibit(ctx, store.CreateExhibitParams{
		ClientID:     clientID,
		Code:         code,
		Title:        title,
		Description:  description,
		TitleImage:   in.TitleImage,
		Images:       images,
		IslVideo:     in.IslVideo,
		Status:       ExhibitApproved,
		Translations: translations,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Exhibit{}, fmt.Errorf("creating exhibit: %w", err)
	}

	s.logger.Info("exhibit created", "client_id", clientID, "code", code, "languages", len(records))
	return exhibitFromRow(row)
}

func (s *ContentService) newExhibitCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := auth.ExhibitCode()
		if err != nil {
			return "", err
		}
		exists, err := s.queries.ExhibitCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking exhibit code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique exhibit code")
}

// ownedExhibit loads an exhibit and checks that it belongs to clientID.
func (s *ContentService) ownedExhibit(ctx context.Context, clientID int64, code string) (store.Exhibit, error) {
	row, err := s.queries.GetExhibitByCode(ctx, code)
	if err != nil {
		return store.Exhibit{}, notFound(err, "exhibit")
	}
	if row.ClientID != clientID {
		return store.Exhibit{}, fmt.Errorf("exhibit %w", ErrNotFound)
	}
	return row, nil
}

// EditExhibit applies a partial edit. The translation list is always merged
// again so language settings changed since the last edit take effect.
func (s *ContentService) EditExhibit(ctx context.Context, clientID int64, code string, upd ExhibitUpdate) (Exhibit, error) {
	row, err := s.ownedExhibit(ctx, clientID, code)
	if err != nil {
		return Exhibit{}, err
	}

	src, update, err := s.textUpdate(row.Title, row.Description, upd.Title, upd.Description, upd.Translations)
	if err != nil {
		return Exhibit{}, err
	}

	records, err := s.merge(ctx, row.ClientID, row.Translations, src, update)
	if err != nil {
		return Exhibit{}, err
	}
	translations, err := localize.Encode(records)
	if err != nil {
		return Exhibit{}, err
	}

	params := store.UpdateExhibitParams{
		Title:        src.Title,
		Description:  src.Description,
		TitleImage:   row.TitleImage,
		Images:       row.Images,
		IslVideo:     row.IslVideo,
		Translations: translations,
		UpdatedAt:    s.now().UTC(),
		ID:           row.ID,
	}
	if upd.TitleImage != nil && *upd.TitleImage != "" {
		params.TitleImage = *upd.TitleImage
	}
	if upd.Images != nil {
		if params.Images, err = encodeStrings(upd.Images); err != nil {
			return Exhibit{}, err
		}
	}
	if upd.IslVideo != nil {
		params.IslVideo = *upd.IslVideo
	}

	updated, err := s.queries.UpdateExhibit(ctx, params)
	if err != nil {
		return Exhibit{}, fmt.Errorf("updating exhibit: %w", err)
	}
	return exhibitFromRow(updated)
}

// textUpdate folds the supplied title and description into the canonical
// source and describes the change for the merger.
func (s *ContentService) textUpdate(title, description string, newTitle, newDescription *string,
	overrides map[string]localize.Override) (localize.Source, localize.Update, error) {
	src := localize.Source{Title: title, Description: description}
	var update localize.Update

	fields := map[string]string{}
	if t := cleanPtr(newTitle); t != nil {
		if *t == "" {
			fields["title"] = "Title cannot be empty"
		}
		src.Title = *t
		update.Title = t
	}
	if d := cleanPtr(newDescription); d != nil {
		if *d == "" {
			fields["description"] = "Description cannot be empty"
		}
		src.Description = *d
		update.Description = d
	}
	if err := fieldErrors(fields); err != nil {
		return src, update, err
	}

	ov, err := cleanOverrides(overrides)
	if err != nil {
		return src, update, err
	}
	update.Overrides = ov
	return src, update, nil
}

// merge runs the merger over a stored translation list using the client's
// current languages and narration setting.
func (s *ContentService) merge(ctx context.Context, clientID int64, stored string,
	src localize.Source, update localize.Update) ([]localize.Record, error) {
	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, "client")
	}
	active, err := s.languages.Active(ctx, clientID)
	if err != nil {
		return nil, err
	}
	existing, err := localize.Decode(stored)
	if err != nil {
		return nil, err
	}
	update.SkipAudio = client.Audio == 0
	return s.merger.Merge(ctx, existing, active, src, update), nil
}

// DeleteExhibit removes one of the client's exhibits.
func (s *ContentService) DeleteExhibit(ctx context.Context, clientID int64, code string) error {
	if _, err := s.ownedExhibit(ctx, clientID, code); err != nil {
		return err
	}
	if _, err := s.queries.DeleteExhibit(ctx, code); err != nil {
		return fmt.Errorf("deleting exhibit: %w", err)
	}
	return nil
}

// ListExhibits returns the client's exhibits, newest first.
func (s *ContentService) ListExhibits(ctx context.Context, clientID int64) ([]Exhibit, error) {
	rows, err := s.queries.ListExhibitsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing exhibits: %w", err)
	}
	out := make([]Exhibit, 0, len(rows))
	for _, row := range rows {
		e, err := exhibitFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ApproveExhibit marks an exhibit as approved.
func (s *ContentService) ApproveExhibit(ctx context.Context, clientID int64, code string) error {
	if _, err := s.ownedExhibit(ctx, clientID, code); err != nil {
		return err
	}
	if _, err := s.queries.UpdateExhibitStatus(ctx, store.UpdateExhibitStatusParams{
		Status:    ExhibitApproved,
		UpdatedAt: s.now().UTC(),
		Code:      code,
	}); err != nil {
		return fmt.Errorf("approving exhibit: %w", err)
	}
	return nil
}

// ViewExhibit returns a public exhibit and records the view. clientLink, when
// set, must be the link of the exhibit's owner.
func (s *ContentService) ViewExhibit(ctx context.Context, clientLink, code string, visit tracking.Visit) (Exhibit, error) {
	row, err := s.queries.GetExhibitByCode(ctx, code)
	if err != nil {
		return Exhibit{}, notFound(err, "exhibit")
	}
	client, err := s.queries.GetClientByID(ctx, row.ClientID)
	if err != nil {
		return Exhibit{}, notFound(err, "client")
	}
	if clientLink != "" && !strings.EqualFold(client.Link, clientLink) {
		return Exhibit{}, fmt.Errorf("exhibit %w", ErrNotFound)
	}

	if err := s.logVisit(ctx, client, code, visit); err != nil {
		s.logger.Warn("failed to record exhibit view", "code", code, "error", err)
	}
	return exhibitFromRow(row)
}

func (s *ContentService) logVisit(ctx context.Context, client store.Client, code string, visit tracking.Visit) error {
	mobile := visit.Mobile
	if mobile == "" {
		mobile = "Unknown"
	}
	return s.queries.CreateExhibitLog(ctx, store.CreateExhibitLogParams{
		ClientID:        client.ID,
		ClientName:      client.Name,
		ExhibitCode:     code,
		UserMobile:      mobile,
		DeviceType:      visit.DeviceType,
		IpAddress:       visit.IP,
		AdvertisementID: client.AdvertisementID,
		CreatedAt:       s.now().UTC(),
	})
}

// Wait blocks until background visit logging has finished.
func (s *ContentService) Wait() {
	s.visits.Wait()
}
