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

// CreateExhibit handles POST /api/exhibit/add.
// Accepts multipart/form-data with title, description, translations (JSON),
// titleImage, images (up to 10) and islVideo.
func (h *Handler) CreateExhibit(w http.ResponseWriter, r *http.Request) {
	f, ok := parseMultipart(w, r)
	if !ok {
		return
	}
	translations, ok := parseTranslations(w, f)
	if !ok {
		return
	}

	in := service.ExhibitInput{
		Title:        f.value("title"),
		Description:  f.value("description"),
		Translations: translations,
	}
	if in.Title == "" || in.Description == "" {
		fields := map[string]string{}
		if in.Title == "" {
			fields["title"] = "Title is required"
		}
		if in.Description == "" {
			fields["description"] = "Description is required"
		}
		WriteValidationError(w, fields)
		return
	}

	up := h.newUploadBatch()
	titleImage, ok := up.one(w, r, f, "titleImage", storage.KindImage)
	if !ok {
		return
	}
	if titleImage != nil {
		in.TitleImage = *titleImage
	}
	if in.Images, ok = up.many(w, r, f, "images", storage.KindImage, maxGalleryImages); !ok {
		return
	}
	video, ok := up.one(w, r, f, "islVideo", storage.KindVideo)
	if !ok {
		return
	}
	if video != nil {
		in.IslVideo = *video
	}

	exhibit, err := h.content.CreateExhibit(r.Context(), middleware.GetClientID(r), in)
	if err != nil {
		up.discard(r)
		h.writeServiceError(w, r, err, "create exhibit")
		return
	}
	WriteCreated(w, exhibit)
}

// EditExhibit handles PUT /api/exhibit/{code}.
// Accepts a JSON body with title, description and translations, or a
// multipart body that may also replace titleImage, images and islVideo.
func (h *Handler) EditExhibit(w http.ResponseWriter, r *http.Request) {
	edit, f, ok := readTextEdit(w, r)
	if !ok {
		return
	}

	upd := service.ExhibitUpdate{
		Title:        edit.Title,
		Description:  edit.Description,
		Translations: edit.Translations,
	}
	up := h.newUploadBatch()
	if f != nil {
		if upd.TitleImage, ok = up.one(w, r, *f, "titleImage", storage.KindImage); !ok {
			return
		}
		if upd.Images, ok = up.many(w, r, *f, "images", storage.KindImage, maxGalleryImages); !ok {
			return
		}
		if upd.IslVideo, ok = up.one(w, r, *f, "islVideo", storage.KindVideo); !ok {
			return
		}
	}

	exhibit, err := h.content.EditExhibit(r.Context(), middleware.GetClientID(r), chi.URLParam(r, "code"), upd)
	if err != nil {
		up.discard(r)
		h.writeServiceError(w, r, err, "update exhibit")
		return
	}
	WriteSuccess(w, exhibit, nil)
}

// DeleteExhibit handles DELETE /api/exhibit/{code}.
func (h *Handler) DeleteExhibit(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteExhibit(r.Context(), middleware.GetClientID(r), chi.URLParam(r, "code")); err != nil {
		h.writeServiceError(w, r, err, "delete exhibit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExhibits handles GET /api/exhibit/all.
func (h *Handler) ListExhibits(w http.ResponseWriter, r *http.Request) {
	exhibits, err := h.content.ListExhibits(r.Context(), middleware.GetClientID(r))
	if err != nil {
		h.writeServiceError(w, r, err, "list exhibits")
		return
	}
	WriteSuccess(w, exhibits, &Meta{Total: int64(len(exhibits))})
}

// ApproveExhibit handles PUT /api/exhibit/approve/{code}.
func (h *Handler) ApproveExhibit(w http.ResponseWriter, r *http.Request) {
	if err := h.content.ApproveExhibit(r.Context(), middleware.GetClientID(r), chi.URLParam(r, "code")); err != nil {
		h.writeServiceError(w, r, err, "approve exhibit")
		return
	}
	WriteMessage(w, "Exhibit approved successfully")
}

// ViewExhibit handles GET /api/exhibit/{clientCode}/{code}. It is public and
// records the view. The visitor's mobile may be passed as ?mobile=.
func (h *Handler) ViewExhibit(w http.ResponseWriter, r *http.Request) {
	visit := tracking.FromRequest(r)
	visit.Mobile = r.URL.Query().Get("mobile")

	exhibit, err := h.content.ViewExhibit(r.Context(), chi.URLParam(r, "clientCode"), chi.URLParam(r, "code"), visit)
	if err != nil {
		h.writeServiceError(w, r, err, "load exhibit")
		return
	}
	WriteSuccess(w, exhibit, nil)
}
