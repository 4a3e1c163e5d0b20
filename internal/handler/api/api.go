// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers of the exhibit CMS.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
	"github.com/olegiv/exhibit-cms/internal/translate"
)

// Deps are the collaborators of the API handlers.
type Deps struct {
	DB          *sql.DB
	Admins      *service.AdminService
	Clients     *service.ClientService
	Content     *service.ContentService
	Advertisers *service.AdvertiserService
	Redirects   *service.RedirectService
	Events      *service.EventService
	Files       *storage.FileSaver
	Tokens      *auth.JWTManager
	Login       *middleware.LoginProtection
	Translate   *translate.Service // optional, reported by /health
	Cache       cache.Cache        // optional, reported by /health
	UploadsDir  string
	Version     string
	Logger      *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db          *sql.DB
	admins      *service.AdminService
	clients     *service.ClientService
	content     *service.ContentService
	advertisers *service.AdvertiserService
	redirects   *service.RedirectService
	events      *service.EventService
	files       *storage.FileSaver
	tokens      *auth.JWTManager
	login       *middleware.LoginProtection
	translate   *translate.Service
	cache       cache.Cache
	uploadsDir  string
	version     string
	logger      *slog.Logger
	startTime   time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := d.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		db:          d.DB,
		admins:      d.Admins,
		clients:     d.Clients,
		content:     d.Content,
		advertisers: d.Advertisers,
		redirects:   d.Redirects,
		events:      d.Events,
		files:       d.Files,
		tokens:      d.Tokens,
		login:       d.Login,
		translate:   d.Translate,
		cache:       d.Cache,
		uploadsDir:  d.UploadsDir,
		version:     version,
		logger:      logger,
		startTime:   time.Now(),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is returned by operations that have no resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteMessage writes a 200 response carrying only a message.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteSuccess(w, MessageResponse{Message: message}, nil)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps a service error onto the error envelope. action
// completes "Failed to ..." for unexpected errors.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, capitalizeFirst(err.Error()))
	case errors.Is(err, service.ErrConflict):
		WriteConflict(w, capitalizeFirst(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, service.ErrAccountBlocked):
		WriteForbidden(w, "Account is blocked")
	case errors.Is(err, service.ErrAccountInactive):
		WriteForbidden(w, "Account is inactive")
	case errors.Is(err, service.ErrForbidden):
		WriteForbidden(w, "You do not have access to this resource")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"action", action,
			"error", err,
		)
		WriteInternalError(w, "Failed to "+action)
	}
}

// writeUploadError maps storage errors for the named multipart field.
func (h *Handler) writeUploadError(w http.ResponseWriter, r *http.Request, field string, err error) {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "file_too_large",
			"File exceeds the upload limit", map[string]string{field: "File is too large"})
	case errors.Is(err, storage.ErrUnsupportedType):
		WriteValidationError(w, map[string]string{field: "Unsupported file type"})
	default:
		h.writeServiceError(w, r, err, "store upload")
	}
}

// decodeJSON decodes JSON from the request body. It writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// parseIDParam parses a positive int64 URL parameter. It writes a 400 and
// returns false when the parameter is invalid.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return 0, false
	}
	return id, true
}

// parsePage reads page and per_page query parameters.
func parsePage(r *http.Request) service.Page {
	page := service.Page{Number: 1, PerPage: service.DefaultPerPage}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page.Number = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 {
		page.PerPage = min(pp, service.MaxPerPage)
	}
	return page
}

// pageMeta builds pagination metadata for a listed page.
func pageMeta(page service.Page, total int64) *Meta {
	pages := int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	return &Meta{
		Total:   total,
		Page:    page.Number,
		PerPage: page.PerPage,
		Pages:   pages,
	}
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
