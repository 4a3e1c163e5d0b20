// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/exhibit-cms/internal/store"
)

// AdvertiserService manages advertisers, their advertisements and which
// advertisement each client shows.
type AdvertiserService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewAdvertiserService creates an AdvertiserService.
func NewAdvertiserService(db *sql.DB) *AdvertiserService {
	return &AdvertiserService{queries: store.New(db), now: time.Now}
}

// NewAdvertiser holds the fields of an advertiser.
type NewAdvertiser struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Mobile string `json:"mobile" validate:"omitempty,mobile"`
}

// NewAdvertisement holds the fields of an advertisement. AdImage is the URL of
// the uploaded image.
type NewAdvertisement struct {
	AdName       string `json:"adName" validate:"required,max=100"`
	AdvertiserID int64  `json:"advertiserId" validate:"required,min=1"`
	AdImage      string `json:"adImage" validate:"required"`
}

// ClientAd reports the advertisement allocated to a client.
type ClientAd struct {
	SerialNumber     int    `json:"serialNumber"`
	ClientID         int64  `json:"clientId"`
	ClientName       string `json:"clientName"`
	HasAdvertisement string `json:"hasAdvertisement"`
	Advertisement    string `json:"advertisement"`
	AdvertisementID  *int64 `json:"advertisementId,omitempty"`
}

// AddAdvertiser stores an advertiser.
func (s *AdvertiserService) AddAdvertiser(ctx context.Context, in NewAdvertiser) (store.Advertiser, error) {
	in.Name = cleanText(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return store.Advertiser{}, err
	}
	a, err := s.queries.CreateAdvertiser(ctx, store.CreateAdvertiserParams{
		Name:      in.Name,
		Email:     in.Email,
		Mobile:    in.Mobile,
		Active:    StatusActive,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return store.Advertiser{}, fmt.Errorf("creating advertiser: %w", err)
	}
	return a, nil
}

// AddAdvertisement stores an advertisement for an existing advertiser.
func (s *AdvertiserService) AddAdvertisement(ctx context.Context, in NewAdvertisement) (store.Advertisement, error) {
	in.AdName = cleanText(in.AdName)
	if err := validateStruct(in); err != nil {
		return store.Advertisement{}, err
	}
	if _, err := s.queries.GetAdvertiserByID(ctx, in.AdvertiserID); err != nil {
		return store.Advertisement{}, notFound(err, "advertiser")
	}
	ad, err := s.queries.CreateAdvertisement(ctx, store.CreateAdvertisementParams{
		AdvertiserID: in.AdvertiserID,
		AdName:       in.AdName,
		AdImage:      in.AdImage,
		Active:       StatusActive,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return store.Advertisement{}, fmt.Errorf("creating advertisement: %w", err)
	}
	return ad, nil
}

// Allocate sets the advertisement a client shows. A nil advertisementID
// clears the allocation.
func (s *AdvertiserService) Allocate(ctx context.Context, clientID int64, advertisementID *int64) (Client, error) {
	var ad sql.NullInt64
	if advertisementID != nil {
		if _, err := s.queries.GetAdvertisementByID(ctx, *advertisementID); err != nil {
			return Client{}, notFound(err, "advertisement")
		}
		ad = sql.NullInt64{Int64: *advertisementID, Valid: true}
	}
	n, err := s.queries.UpdateClientAdvertisement(ctx, store.UpdateClientAdvertisementParams{
		AdvertisementID: ad,
		UpdatedAt:       s.now().UTC(),
		ID:              clientID,
	})
	if err != nil {
		return Client{}, fmt.Errorf("allocating advertisement: %w", err)
	}
	if n == 0 {
		return Client{}, fmt.Errorf("client %w", ErrNotFound)
	}
	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return Client{}, notFound(err, "client")
	}
	return clientFromRow(client), nil
}

// ClientAds lists every client with its allocated advertisement.
func (s *AdvertiserService) ClientAds(ctx context.Context) ([]ClientAd, error) {
	rows, err := s.queries.ListClientAdvertisements(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing client advertisements: %w", err)
	}
	out := make([]ClientAd, 0, len(rows))
	for i, r := range rows {
		ad := ClientAd{
			SerialNumber:     i + 1,
			ClientID:         r.ClientID,
			ClientName:       r.ClientName,
			HasAdvertisement: "No",
			Advertisement:    "N/A",
		}
		if r.AdvertisementID.Valid && r.AdName.Valid {
			id := r.AdvertisementID.Int64
			ad.HasAdvertisement = "Yes"
			ad.Advertisement = r.AdName.String
			ad.AdvertisementID = &id
		}
		out = append(out, ad)
	}
	return out, nil
}

// ListAdvertisers returns every advertiser.
func (s *AdvertiserService) ListAdvertisers(ctx context.Context) ([]store.Advertiser, error) {
	rows, err := s.queries.ListAdvertisers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing advertisers: %w", err)
	}
	return rows, nil
}

// ListAdvertisements returns every advertisement.
func (s *AdvertiserService) ListAdvertisements(ctx context.Context) ([]store.Advertisement, error) {
	rows, err := s.queries.ListAdvertisements(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing advertisements: %w", err)
	}
	return rows, nil
}
