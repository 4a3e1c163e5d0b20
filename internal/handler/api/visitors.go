// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// RecordVisitor handles POST /api/client/visitor-data. A new visitor gets a
// 201; a returning one (same name and mobile) a 200.
func (h *Handler) RecordVisitor(w http.ResponseWriter, r *http.Request) {
	var in service.VisitorInput
	if !decodeJSON(w, r, &in) {
		return
	}
	visitor, created, err := h.clients.RecordVisitor(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "record visitor")
		return
	}
	if created {
		WriteCreated(w, visitor)
		return
	}
	WriteSuccess(w, visitor, nil)
}

// ListVisitors handles GET /api/client/visitors.
func (h *Handler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.clients.ListVisitors(r.Context(), middleware.GetClientID(r))
	if err != nil {
		h.writeServiceError(w, r, err, "list visitors")
		return
	}
	WriteSuccess(w, visitors, &Meta{Total: int64(len(visitors))})
}

// ListExhibitLogs handles GET /api/client/exhibit-logs.
func (h *Handler) ListExhibitLogs(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	logs, total, err := h.clients.ListExhibitLogs(r.Context(), middleware.GetClientID(r), page)
	if err != nil {
		h.writeServiceError(w, r, err, "list exhibit logs")
		return
	}
	WriteSuccess(w, logs, pageMeta(page, total))
}

// UpdateRedirect handles POST /api/redirect/update-redirect-url.
func (h *Handler) UpdateRedirect(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	mapping, err := h.redirects.Update(r.Context(), middleware.GetClientID(r), in)
	if err != nil {
		h.writeServiceError(w, r, err, "update redirect")
		return
	}
	WriteSuccess(w, mapping, nil)
}

// Redirect handles GET /api/redirect/{shortUrl}. It records the QR scan and
// answers with a 302 to the mapped target.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.redirects.Resolve(r.Context(), chi.URLParam(r, "shortUrl"), tracking.FromRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err, "resolve redirect")
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
