// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// SetupLanding handles POST /api/landing/setup.
// Accepts multipart/form-data with title, description, translations (JSON),
// displayImage and islVideo.
func (h *Handler) SetupLanding(w http.ResponseWriter, r *http.Request) {
	f, ok := parseMultipart(w, r)
	if !ok {
		return
	}
	translations, ok := parseTranslations(w, f)
	if !ok {
		return
	}

	in := service.LandingInput{
		Title:        f.value("title"),
		Description:  f.value("description"),
		Translations: translations,
	}
	up := h.newUploadBatch()
	image, ok := up.one(w, r, f, "displayImage", storage.KindImage)
	if !ok {
		return
	}
	if image != nil {
		in.DisplayImage = *image
	}
	video, ok := up.one(w, r, f, "islVideo", storage.KindVideo)
	if !ok {
		return
	}
	if video != nil {
		in.IslVideo = *video
	}

	landing, err := h.content.SetupLanding(r.Context(), middleware.GetClientID(r), in)
	if err != nil {
		up.discard(r)
		h.writeServiceError(w, r, err, "set up landing page")
		return
	}
	WriteCreated(w, landing)
}

// GetLanding handles GET /api/landing, the landing page of the calling client.
func (h *Handler) GetLanding(w http.ResponseWriter, r *http.Request) {
	landing, err := h.content.Landing(r.Context(), middleware.GetClientID(r))
	if err != nil {
		h.writeServiceError(w, r, err, "load landing page")
		return
	}
	WriteSuccess(w, landing, nil)
}

// EditLanding handles PUT /api/landing/edit.
func (h *Handler) EditLanding(w http.ResponseWriter, r *http.Request) {
	edit, f, ok := readTextEdit(w, r)
	if !ok {
		return
	}

	upd := service.LandingUpdate{
		Title:        edit.Title,
		Description:  edit.Description,
		Translations: edit.Translations,
	}
	up := h.newUploadBatch()
	if f != nil {
		if upd.DisplayImage, ok = up.one(w, r, *f, "displayImage", storage.KindImage); !ok {
			return
		}
		if upd.IslVideo, ok = up.one(w, r, *f, "islVideo", storage.KindVideo); !ok {
			return
		}
	}

	landing, err := h.content.EditLanding(r.Context(), middleware.GetClientID(r), upd)
	if err != nil {
		up.discard(r)
		h.writeServiceError(w, r, err, "update landing page")
		return
	}
	WriteSuccess(w, landing, nil)
}

// ViewLanding handles GET /api/landing/{id}, where id is the client link.
// It is public; the visit is recorded in the background.
func (h *Handler) ViewLanding(w http.ResponseWriter, r *http.Request) {
	visit := tracking.FromRequest(r)
	visit.Mobile = r.URL.Query().Get("mobile")

	view, err := h.content.ViewLanding(r.Context(), chi.URLParam(r, "id"), visit)
	if err != nil {
		h.writeServiceError(w, r, err, "load landing page")
		return
	}
	WriteSuccess(w, view, nil)
}
