// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
)

// AddAdmin handles POST /api/admin/add.
func (h *Handler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var in service.NewAdmin
	if !decodeJSON(w, r, &in) {
		return
	}
	admin, err := h.admins.AddAdmin(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "add admin")
		return
	}
	WriteCreated(w, admin)
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status *int64 `json:"status"`
}

// AdminSetStatus handles PUT /api/admin/{id}.
func (h *Handler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "admin")
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == nil {
		WriteValidationError(w, map[string]string{"status": "Status is required"})
		return
	}
	if id == middleware.GetUserID(r) {
		WriteValidationError(w, map[string]string{"status": "You cannot change your own status"})
		return
	}
	if err := h.admins.SetStatus(r.Context(), id, *req.Status); err != nil {
		h.writeServiceError(w, r, err, "update admin status")
		return
	}
	WriteMessage(w, "Status updated successfully")
}

// ListAdmins handles GET /api/admin.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list admins")
		return
	}
	WriteSuccess(w, admins, &Meta{Total: int64(len(admins))})
}

// ListClients handles GET /api/admin/getClients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.admins.ListClients(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list clients")
		return
	}
	WriteSuccess(w, clients, &Meta{Total: int64(len(clients))})
}

// Profile handles GET /api/admin/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.Profile(r.Context(), middleware.GetUserID(r))
	if err != nil {
		h.writeServiceError(w, r, err, "load profile")
		return
	}
	WriteSuccess(w, admin, nil)
}

// ActivityLogs handles GET /api/admin/logs.
func (h *Handler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	logs, total, err := h.admins.ActivityLogs(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err, "list activity logs")
		return
	}
	WriteSuccess(w, logs, pageMeta(page, total))
}

// QRScans handles GET /api/admin/qr-scans.
func (h *Handler) QRScans(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	scans, total, err := h.admins.QRScans(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err, "list QR scans")
		return
	}
	WriteSuccess(w, scans, pageMeta(page, total))
}

// AddAdvertiser handles POST /api/admin/add-advertiser.
func (h *Handler) AddAdvertiser(w http.ResponseWriter, r *http.Request) {
	var in service.NewAdvertiser
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.advertisers.AddAdvertiser(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "add advertiser")
		return
	}
	WriteCreated(w, a)
}

// AddAdvertisement handles POST /api/admin/add-advertisement. The image is
// the multipart file "adImage".
func (h *Handler) AddAdvertisement(w http.ResponseWriter, r *http.Request) {
	f, ok := parseMultipart(w, r)
	if !ok {
		return
	}

	in := service.NewAdvertisement{AdName: f.value("adName")}
	if id, ok := f.intValue("advertiserId"); ok {
		in.AdvertiserID = id
	}
	up := h.newUploadBatch()
	image, ok := up.one(w, r, f, "adImage", storage.KindImage)
	if !ok {
		return
	}
	if image == nil {
		WriteValidationError(w, map[string]string{"adImage": "Advertisement image is required"})
		return
	}
	in.AdImage = *image

	ad, err := h.advertisers.AddAdvertisement(r.Context(), in)
	if err != nil {
		up.discard(r)
		h.writeServiceError(w, r, err, "add advertisement")
		return
	}
	WriteCreated(w, ad)
}

// AllocateRequest assigns an advertisement to a client. A null
// advertisementId clears the allocation.
type AllocateRequest struct {
	ClientID        int64  `json:"clientId"`
	AdvertisementID *int64 `json:"advertisementId"`
}

// AllocateAd handles POST /api/admin/allocate-ad.
func (h *Handler) AllocateAd(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ClientID <= 0 {
		WriteValidationError(w, map[string]string{"clientId": "Client is required"})
		return
	}
	client, err := h.advertisers.Allocate(r.Context(), req.ClientID, req.AdvertisementID)
	if err != nil {
		h.writeServiceError(w, r, err, "allocate advertisement")
		return
	}
	WriteSuccess(w, client, nil)
}

// ClientAds handles GET /api/admin/getads.
func (h *Handler) ClientAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.advertisers.ClientAds(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list client advertisements")
		return
	}
	WriteSuccess(w, ads, &Meta{Total: int64(len(ads))})
}

// ListAdvertisers handles GET /api/admin/advertisers.
func (h *Handler) ListAdvertisers(w http.ResponseWriter, r *http.Request) {
	list, err := h.advertisers.ListAdvertisers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list advertisers")
		return
	}
	WriteSuccess(w, list, &Meta{Total: int64(len(list))})
}

// ListAdvertisements handles GET /api/admin/advertisements.
func (h *Handler) ListAdvertisements(w http.ResponseWriter, r *http.Request) {
	list, err := h.advertisers.ListAdvertisements(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list advertisements")
		return
	}
	WriteSuccess(w, list, &Meta{Total: int64(len(list))})
}

// AddClient handles POST /api/client/add.
func (h *Handler) AddClient(w http.ResponseWriter, r *http.Request) {
	var in service.NewClient
	if !decodeJSON(w, r, &in) {
		return
	}
	client, err := h.clients.AddClient(r.Context(), middleware.GetUserID(r), in)
	if err != nil {
		h.writeServiceError(w, r, err, "add client")
		return
	}
	WriteCreated(w, client)
}

// EditClient handles PUT /api/admin/clients/{id}.
func (h *Handler) EditClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "client")
	if !ok {
		return
	}
	var upd service.ClientUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	details, err := h.clients.EditClient(r.Context(), id, upd)
	if err != nil {
		h.writeServiceError(w, r, err, "update client")
		return
	}
	WriteSuccess(w, details, nil)
}

// ClientDetails handles GET /api/admin/clients/{id}.
func (h *Handler) ClientDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "client")
	if !ok {
		return
	}
	details, err := h.clients.Details(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "load client")
		return
	}
	WriteSuccess(w, details, nil)
}

// Events handles GET /api/admin/events, the persisted warning and error log.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	events, err := h.events.List(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err, "list events")
		return
	}
	WriteSuccess(w, events, &Meta{Page: page.Number, PerPage: page.PerPage})
}
