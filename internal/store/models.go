// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type AdminUser struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-"`
	UserType     int64     `json:"user_type"`
	Status       int64     `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Advertiser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Active    int64     `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Advertisement struct {
	ID           int64     `json:"id"`
	AdvertiserID int64     `json:"advertiser_id"`
	AdName       string    `json:"ad_name"`
	AdImage      string    `json:"ad_image"`
	Active       int64     `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Client struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Mobile          string        `json:"mobile"`
	Status          int64         `json:"status"`
	AllottedUsers   int64         `json:"allotted_users"`
	ActiveUsers     int64         `json:"active_users"`
	DisplayAllotted int64         `json:"display_allotted"`
	ActiveDisplays  int64         `json:"active_displays"`
	TextSize        int64         `json:"text_size"`
	Audio           int64         `json:"audio"`
	Isl             int64         `json:"isl"`
	ValidityDate    sql.NullTime  `json:"validity_date"`
	Link            string        `json:"link"`
	AdvertisementID sql.NullInt64 `json:"advertisement_id"`
	CreatedBy       sql.NullInt64 `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type ClientUser struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	UserType     int64     `json:"user_type"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-"`
	Status       int64     `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ClientLanguage struct {
	ClientID int64  `json:"client_id"`
	Language string `json:"language"`
	Enabled  int64  `json:"enabled"`
}

// Exhibit stores images and translations as JSON text.
type Exhibit struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TitleImage   string    `json:"title_image"`
	Images       string    `json:"images"`
	IslVideo     string    `json:"isl_video"`
	Status       int64     `json:"status"`
	Translations string    `json:"translations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LandingPage struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	DisplayImage string    `json:"display_image"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	UniqueUrl    string    `json:"unique_url"`
	QrCode       string    `json:"qr_code"`
	IslVideo     string    `json:"isl_video"`
	Translations string    `json:"translations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RedirectMapping struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	ShortUrl    string    `json:"short_url"`
	RedirectUrl string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type QrScan struct {
	ID                int64         `json:"id"`
	ClientID          sql.NullInt64 `json:"client_id"`
	RedirectMappingID sql.NullInt64 `json:"redirect_mapping_id"`
	ShortUrl          string        `json:"short_url"`
	IpAddress         string        `json:"ip_address"`
	DeviceType        string        `json:"device_type"`
	Country           string        `json:"country"`
	ScannedAt         time.Time     `json:"scanned_at"`
}

type ExhibitLog struct {
	ID              int64         `json:"id"`
	ClientID        int64         `json:"client_id"`
	ClientName      string        `json:"client_name"`
	ExhibitCode     string        `json:"exhibit_code"`
	UserMobile      string        `json:"user_mobile"`
	DeviceType      string        `json:"device_type"`
	IpAddress       string        `json:"ip_address"`
	AdvertisementID sql.NullInt64 `json:"advertisement_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Visitor struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityLog struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IpAddress string    `json:"ip_address"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
