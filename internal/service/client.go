// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/language"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/util"
)

// Client user types.
const (
	ClientUserSuperAdmin = 0
	ClientUserAdmin      = 1
)

// Account statuses shared by clients, client users and admins.
const (
	StatusBlocked int64 = 0
	StatusActive  int64 = 1
)

const maxLinkAttempts = 10

// ClientService manages tenants, their users and visitor data.
type ClientService struct {
	db        *sql.DB
	queries   *store.Queries
	content   *ContentService
	languages *cache.LanguageCache
	accounts  *Accounts
	logger    *slog.Logger
	now       func() time.Time
}

// NewClientService creates a ClientService.
func NewClientService(db *sql.DB, content *ContentService, languages *cache.LanguageCache, accounts *Accounts) *ClientService {
	return &ClientService{
		db:        db,
		queries:   store.New(db),
		content:   content,
		languages: languages,
		accounts:  accounts,
		logger:    accounts.logger(),
		now:       time.Now,
	}
}

// Client is the API shape of a tenant.
type Client struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Mobile          string     `json:"mobile"`
	Status          int64      `json:"status"`
	AllottedUsers   int64      `json:"allottedUsers"`
	ActiveUsers     int64      `json:"activeUsers"`
	MaximumDisplays int64      `json:"maximumDisplays"`
	ActiveDisplays  int64      `json:"activeDisplays"`
	TextSize        int64      `json:"textSize"`
	Audio           int64      `json:"audio"`
	Isl             int64      `json:"isl"`
	ValidityDate    *time.Time `json:"validityDate,omitempty"`
	Link            string     `json:"link"`
	AdvertisementID *int64     `json:"advertisementId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func clientFromRow(row store.Client) Client {
	c := Client{
		ID:              row.ID,
		Name:            row.Name,
		Email:           row.Email,
		Mobile:          row.Mobile,
		Status:          row.Status,
		AllottedUsers:   row.AllottedUsers,
		ActiveUsers:     row.ActiveUsers,
		MaximumDisplays: row.DisplayAllotted,
		ActiveDisplays:  row.ActiveDisplays,
		TextSize:        row.TextSize,
		Audio:           row.Audio,
		Isl:             row.Isl,
		Link:            row.Link,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.ValidityDate.Valid {
		t := row.ValidityDate.Time
		c.ValidityDate = &t
	}
	if row.AdvertisementID.Valid {
		id := row.AdvertisementID.Int64
		c.AdvertisementID = &id
	}
	return c
}

// ClientUser is the API shape of a client panel user.
type ClientUser struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"clientId"`
	UserType int64  `json:"userType"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Status   int64  `json:"status"`
}

func clientUserFromRow(row store.ClientUser) ClientUser {
	return ClientUser{
		ID:       row.ID,
		ClientID: row.ClientID,
		UserType: row.UserType,
		Name:     row.Name,
		Email:    row.Email,
		Mobile:   row.Mobile,
		Status:   row.Status,
	}
}

// NewClient holds the fields of a client being onboarded.
type NewClient struct {
	Name            string   `json:"name" validate:"required,max=60"`
	Email           string   `json:"email" validate:"required,email"`
	Mobile          string   `json:"mobile" validate:"required,mobile"`
	Status          *int64   `json:"status" validate:"omitempty,oneof=0 1"`
	AllottedUsers   int64    `json:"allottedUsers" validate:"min=1"`
	MaximumDisplays int64    `json:"maximumDisplays" validate:"min=0"`
	TextSize        int64    `json:"textSize" validate:"min=0"`
	Audio           int64    `json:"audio" validate:"oneof=0 1"`
	Isl             int64    `json:"isl" validate:"oneof=0 1"`
	ValidityDays    int      `json:"validityDays" validate:"min=0"`
	Languages       []string `json:"languages"`
}

// ClientUpdate is a partial client edit. Nil fields are left unchanged.
// Languages is a patch over the current flags.
type ClientUpdate struct {
	Name            *string        `json:"name" validate:"omitempty,max=60"`
	Email           *string        `json:"email" validate:"omitempty,email"`
	Mobile          *string        `json:"mobile" validate:"omitempty,mobile"`
	Status          *int64         `json:"status" validate:"omitempty,oneof=0 1"`
	AllottedUsers   *int64         `json:"allottedUsers" validate:"omitempty,min=1"`
	MaximumDisplays *int64         `json:"maximumDisplays" validate:"omitempty,min=0"`
	TextSize        *int64         `json:"textSize" validate:"omitempty,min=0"`
	Audio           *int64         `json:"audio" validate:"omitempty,oneof=0 1"`
	Isl             *int64         `json:"isl" validate:"omitempty,oneof=0 1"`
	ValidityDays    *int           `json:"validityDays" validate:"omitempty,min=0"`
	Languages       language.Flags `json:"languages"`
}

// ClientDetails is a client with its owner account and language settings.
type ClientDetails struct {
	Client    Client         `json:"client"`
	Owner     ClientUser     `json:"user"`
	Languages language.Flags `json:"languages"`
}

// AddClient onboards a tenant: the client row, its super-admin user with a
// temporary password, and its language settings. The temporary password is
// mailed as a setup link.
func (s *ClientService) AddClient(ctx context.Context, createdBy int64, in NewClient) (Client, error) {
	in.Name = cleanText(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return Client{}, err
	}
	flags, err := language.FlagsFromSelection(in.Languages)
	if err != nil {
		return Client{}, invalid("languages", err.Error())
	}

	exists, err := s.queries.ClientContactExists(ctx, store.ClientContactExistsParams{Email: in.Email, Mobile: in.Mobile})
	if err != nil {
		return Client{}, fmt.Errorf("checking client contact: %w", err)
	}
	if exists {
		return Client{}, fmt.Errorf("client with this email or mobile %w", ErrConflict)
	}
	if _, err := s.queries.GetClientUserByEmail(ctx, in.Email); err == nil {
		return Client{}, fmt.Errorf("user with this email %w", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Client{}, fmt.Errorf("checking client user: %w", err)
	}

	link, err := s.newLink(ctx, in.Name)
	if err != nil {
		return Client{}, err
	}
	tempPassword, err := auth.TempPassword()
	if err != nil {
		return Client{}, err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return Client{}, fmt.Errorf("hashing password: %w", err)
	}

	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}
	now := s.now().UTC()
	var creator sql.NullInt64
	if createdBy > 0 {
		creator = sql.NullInt64{Int64: createdBy, Valid: true}
	}
	var validity sql.NullTime
	if in.ValidityDays > 0 {
		validity = sql.NullTime{Time: now.AddDate(0, 0, in.ValidityDays), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Client{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := s.queries.WithTx(tx)

	client, err := qtx.CreateClient(ctx, store.CreateClientParams{
		Name:            in.Name,
		Email:           in.Email,
		Mobile:          in.Mobile,
		Status:          status,
		AllottedUsers:   in.AllottedUsers,
		DisplayAllotted: in.MaximumDisplays,
		TextSize:        in.TextSize,
		Audio:           in.Audio,
		Isl:             in.Isl,
		ValidityDate:    validity,
		Link:            link,
		CreatedBy:       creator,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return Client{}, fmt.Errorf("creating client: %w", err)
	}
	if _, err := qtx.CreateClientUser(ctx, store.CreateClientUserParams{
		ClientID:     client.ID,
		UserType:     ClientUserSuperAdmin,
		Name:         in.Name,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: hash,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return Client{}, fmt.Errorf("creating client user: %w", err)
	}
	if err := saveLanguages(ctx, qtx, client.ID, flags); err != nil {
		return Client{}, err
	}
	if err := tx.Commit(); err != nil {
		return Client{}, fmt.Errorf("committing client: %w", err)
	}

	s.logger.Info("client created", "client_id", client.ID, "link", link, "languages", flags.Active())
	s.accounts.sendSetupLink(ctx, scopeClient, in.Email, tempPassword)
	return clientFromRow(client), nil
}

func (s *ClientService) newLink(ctx context.Context, name string) (string, error) {
	for range maxLinkAttempts {
		suffix, err := auth.LinkSuffix()
		if err != nil {
			return "", err
		}
		link := util.ClientLink(name, suffix)
		_, err = s.queries.GetClientByLink(ctx, link)
		if errors.Is(err, sql.ErrNoRows) {
			return link, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking client link: %w", err)
		}
	}
	return "", errors.New("could not generate a unique client link")
}

// ClientLoginResult is returned by a successful client login.
type ClientLoginResult struct {
	Token  string     `json:"token"`
	User   ClientUser `json:"user"`
	Client Client     `json:"client"`
	QRURL  string     `json:"qrURL,omitempty"`
	Code   string     `json:"code,omitempty"`
}

// Login authenticates a client user and writes an activity log entry.
func (s *ClientService) Login(ctx context.Context, in LoginInput, remoteIP string) (ClientLoginResult, error) {
	if err := validateStruct(in); err != nil {
		return ClientLoginResult{}, err
	}
	if err := s.accounts.verifyCaptcha(ctx, in.CaptchaToken, remoteIP); err != nil {
		return ClientLoginResult{}, err
	}

	creds := clientCredentials{s.queries, s.now}
	if _, err := s.accounts.authenticate(ctx, creds, in.Email, in.Password); err != nil {
		return ClientLoginResult{}, err
	}
	user, err := s.queries.GetClientUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return ClientLoginResult{}, notFound(err, "client user")
	}
	client, err := s.queries.GetClientByID(ctx, user.ClientID)
	if err != nil {
		return ClientLoginResult{}, notFound(err, "client")
	}
	switch {
	case user.Status == StatusBlocked || client.Status == StatusBlocked:
		return ClientLoginResult{}, ErrAccountBlocked
	case user.Status != StatusActive || client.Status != StatusActive:
		return ClientLoginResult{}, ErrAccountInactive
	}

	token, err := s.accounts.Tokens.Issue(auth.Identity{
		UserID:   user.ID,
		Kind:     auth.KindClient,
		Role:     int(user.UserType),
		Email:    user.Email,
		ClientID: client.ID,
	})
	if err != nil {
		return ClientLoginResult{}, fmt.Errorf("issuing token: %w", err)
	}

	result := ClientLoginResult{
		Token:  token,
		User:   clientUserFromRow(user),
		Client: clientFromRow(client),
	}
	if landing, err := s.queries.GetLandingPageByClientID(ctx, client.ID); err == nil {
		result.QRURL = landing.QrCode
		result.Code = landing.UniqueUrl
	}

	action := "User logged in"
	if user.UserType == ClientUserSuperAdmin {
		action = "Client logged in"
	}
	logActivity(ctx, s.queries, s.logger, user.Email, remoteIP, action)
	return result, nil
}

// SetupPassword replaces a client user's temporary password.
func (s *ClientService) SetupPassword(ctx context.Context, in SetupPasswordInput) error {
	return s.accounts.setupPassword(ctx, clientCredentials{s.queries, s.now}, in)
}

// RequestPasswordReset mails a verification code for a new password.
func (s *ClientService) RequestPasswordReset(ctx context.Context, in ResetRequestInput) error {
	return s.accounts.requestReset(ctx, scopeClient, clientCredentials{s.queries, s.now}, in)
}

// ResetPassword verifies the code and applies the pending password.
func (s *ClientService) ResetPassword(ctx context.Context, in ResetVerifyInput) error {
	return s.accounts.resetPassword(ctx, scopeClient, clientCredentials{s.queries, s.now}, in)
}

// EditClient applies a partial edit to a client and its owner account. A
// language patch re-localizes the client's landing page and exhibits.
func (s *ClientService) EditClient(ctx context.Context, clientID int64, upd ClientUpdate) (ClientDetails, error) {
	upd.Name = cleanPtr(upd.Name)
	if upd.Email != nil {
		e := normalizeEmail(*upd.Email)
		upd.Email = &e
	}
	if err := validateStruct(upd); err != nil {
		return ClientDetails{}, err
	}
	if upd.Name != nil && *upd.Name == "" {
		return ClientDetails{}, invalid("name", "Name cannot be empty")
	}

	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return ClientDetails{}, notFound(err, "client")
	}
	owner, err := s.queries.GetClientOwner(ctx, clientID)
	if err != nil {
		return ClientDetails{}, notFound(err, "client user")
	}

	var flags language.Flags
	if upd.Languages != nil {
		if err := upd.Languages.Validate(); err != nil {
			return ClientDetails{}, invalid("languages", err.Error())
		}
		current, err := s.languages.Flags(ctx, clientID)
		if err != nil && !errors.Is(err, ErrTenantLanguagesNotFound) {
			return ClientDetails{}, err
		}
		flags = current.Merge(upd.Languages)
		if len(flags.Active()) == 0 {
			return ClientDetails{}, invalid("languages", "At least one language must be active")
		}
	}

	params := store.UpdateClientParams{
		Name:            client.Name,
		Email:           client.Email,
		Mobile:          client.Mobile,
		Status:          client.Status,
		AllottedUsers:   client.AllottedUsers,
		DisplayAllotted: client.DisplayAllotted,
		TextSize:        client.TextSize,
		Audio:           client.Audio,
		Isl:             client.Isl,
		ValidityDate:    client.ValidityDate,
		UpdatedAt:       s.now().UTC(),
		ID:              client.ID,
	}
	setIf(&params.Name, upd.Name)
	setIf(&params.Email, upd.Email)
	setIf(&params.Mobile, upd.Mobile)
	setIf(&params.Status, upd.Status)
	setIf(&params.AllottedUsers, upd.AllottedUsers)
	setIf(&params.DisplayAllotted, upd.MaximumDisplays)
	setIf(&params.TextSize, upd.TextSize)
	setIf(&params.Audio, upd.Audio)
	setIf(&params.Isl, upd.Isl)
	if upd.ValidityDays != nil {
		params.ValidityDate = sql.NullTime{}
		if *upd.ValidityDays > 0 {
			params.ValidityDate = sql.NullTime{Time: params.UpdatedAt.AddDate(0, 0, *upd.ValidityDays), Valid: true}
		}
	}

	if params.Email != client.Email || params.Mobile != client.Mobile {
		exists, err := s.queries.ClientContactExists(ctx, store.ClientContactExistsParams{
			Email:     params.Email,
			Mobile:    params.Mobile,
			ExcludeID: client.ID,
		})
		if err != nil {
			return ClientDetails{}, fmt.Errorf("checking client contact: %w", err)
		}
		if exists {
			return ClientDetails{}, fmt.Errorf("client with this email or mobile %w", ErrConflict)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClientDetails{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := s.queries.WithTx(tx)

	if _, err := qtx.UpdateClient(ctx, params); err != nil {
		return ClientDetails{}, fmt.Errorf("updating client: %w", err)
	}
	if err := qtx.UpdateClientUserContact(ctx, store.UpdateClientUserContactParams{
		Name:      params.Name,
		Email:     params.Email,
		Mobile:    params.Mobile,
		Status:    params.Status,
		UpdatedAt: params.UpdatedAt,
		ID:        owner.ID,
	}); err != nil {
		return ClientDetails{}, fmt.Errorf("updating client user: %w", err)
	}
	if flags != nil {
		if err := saveLanguages(ctx, qtx, clientID, flags); err != nil {
			return ClientDetails{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return ClientDetails{}, fmt.Errorf("committing client: %w", err)
	}

	if flags != nil {
		if err := s.languages.Invalidate(ctx, clientID); err != nil {
			s.logger.Warn("failed to invalidate language cache", "client_id", clientID, "error", err)
		}
	}
	narrationOn := client.Audio == 0 && params.Audio == 1
	if flags != nil || narrationOn {
		if err := s.content.RelocalizeClient(ctx, clientID); err != nil {
			return ClientDetails{}, err
		}
	}

	return s.Details(ctx, clientID)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Details returns a client with its owner and complete language flags.
func (s *ClientService) Details(ctx context.Context, clientID int64) (ClientDetails, error) {
	client, err := s.queries.GetClientByID(ctx, clientID)
	if err != nil {
		return ClientDetails{}, notFound(err, "client")
	}
	owner, err := s.queries.GetClientOwner(ctx, clientID)
	if err != nil {
		return ClientDetails{}, notFound(err, "client user")
	}
	flags, err := s.languages.Flags(ctx, clientID)
	if err != nil {
		return ClientDetails{}, err
	}
	return ClientDetails{
		Client:    clientFromRow(client),
		Owner:     clientUserFromRow(owner),
		Languages: flags.Complete(),
	}, nil
}

// VisitorInput is a visitor registering on a client's kiosk.
type VisitorInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	ClientLink string `json:"clientLink" validate:"required"`
}

// RecordVisitor stores a visitor for the client behind ClientLink. A visitor
// with the same name and mobile is returned instead of a duplicate.
func (s *ClientService) RecordVisitor(ctx context.Context, in VisitorInput) (store.Visitor, bool, error) {
	in.Name = cleanText(in.Name)
	if err := validateStruct(in); err != nil {
		return store.Visitor{}, false, err
	}
	client, err := s.queries.GetClientByLink(ctx, in.ClientLink)
	if err != nil {
		return store.Visitor{}, false, notFound(err, "client")
	}

	visitors, err := s.queries.ListVisitorsByClient(ctx, client.ID)
	if err != nil {
		return store.Visitor{}, false, fmt.Errorf("listing visitors: %w", err)
	}
	for _, v := range visitors {
		if v.Mobile == in.Mobile && v.Name == in.Name {
			return v, false, nil
		}
	}

	v, err := s.queries.CreateVisitor(ctx, store.CreateVisitorParams{
		ClientID:  client.ID,
		Name:      in.Name,
		Mobile:    in.Mobile,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return store.Visitor{}, false, fmt.Errorf("creating visitor: %w", err)
	}
	return v, true, nil
}

// ListVisitors returns the client's visitors.
func (s *ClientService) ListVisitors(ctx context.Context, clientID int64) ([]store.Visitor, error) {
	visitors, err := s.queries.ListVisitorsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing visitors: %w", err)
	}
	return visitors, nil
}

// ListExhibitLogs returns one page of the client's exhibit and landing views,
// newest first, and the total count.
func (s *ClientService) ListExhibitLogs(ctx context.Context, clientID int64, page Page) ([]store.ExhibitLog, int64, error) {
	logs, err := s.queries.ListExhibitLogsByClient(ctx, store.ListExhibitLogsByClientParams{
		ClientID: clientID,
		Limit:    page.limit(),
		Offset:   page.offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing exhibit logs: %w", err)
	}
	total, err := s.queries.CountExhibitLogsByClient(ctx, clientID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting exhibit logs: %w", err)
	}
	return logs, total, nil
}

// clientCredentials adapts client_users to credentialStore.
type clientCredentials struct {
	queries *store.Queries
	now     func() time.Time
}

func (c clientCredentials) find(ctx context.Context, email string) (credential, error) {
	u, err := c.queries.GetClientUserByEmail(ctx, email)
	if err != nil {
		return credential{}, notFound(err, "client user")
	}
	return credential{id: u.ID, hash: u.PasswordHash, status: u.Status}, nil
}

func (c clientCredentials) setPassword(ctx context.Context, id int64, hash string) error {
	if err := c.queries.UpdateClientUserPassword(ctx, store.UpdateClientUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    c.now().UTC(),
		ID:           id,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// ExpireClients blocks clients whose validity date has passed.
func (s *ClientService) ExpireClients(ctx context.Context) (int64, error) {
	n, err := s.queries.ExpireClients(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expiring clients: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired clients", "count", n)
	}
	return n, nil
}
