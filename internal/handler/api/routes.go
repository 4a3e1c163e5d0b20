// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/middleware"
)

// RouteConfig tunes the middleware placed in front of the API.
type RouteConfig struct {
	CORSOrigins []string
	// Timeout bounds every API request. Uploads and translation both run
	// inside the request, so it must leave room for them.
	Timeout time.Duration
	// PublicRequests per PublicWindow are allowed per IP on the anonymous
	// write and redirect routes.
	PublicRequests int
	PublicWindow   time.Duration
	// RateLimiter, when set, limits every API request per IP.
	RateLimiter *middleware.GlobalRateLimiter
}

func (c RouteConfig) withDefaults() RouteConfig {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.PublicRequests <= 0 {
		c.PublicRequests = 30
	}
	if c.PublicWindow <= 0 {
		c.PublicWindow = time.Minute
	}
	return c
}

// Register mounts the health endpoints and the /api tree on r.
func (h *Handler) Register(r chi.Router, rc RouteConfig) {
	rc = rc.withDefaults()

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rc.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		if rc.RateLimiter != nil {
			r.Use(rc.RateLimiter.Middleware())
		}
		r.Use(middleware.Timeout(rc.Timeout))

		publicLimit := middleware.PublicRateLimit(rc.PublicRequests, rc.PublicWindow)
		activity := middleware.ActivityLogger(h.db)
		admin := middleware.RequireToken(h.tokens, auth.KindAdmin)
		client := middleware.RequireToken(h.tokens, auth.KindClient)

		r.Route("/admin", func(r chi.Router) {
			h.registerLogin(r, h.AdminLogin, h.AdminSetupPassword, h.AdminRequestReset, h.AdminResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(admin, activity)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdminRoles(auth.RoleSuperAdmin))
					r.Post("/add", h.AddAdmin)
					r.Put("/{id}", h.AdminSetStatus)
					r.Get("/logs", h.ActivityLogs)
					r.Get("/events", h.Events)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdminRoles(auth.RoleSuperAdmin, auth.RoleAdmin))
					r.Get("/", h.ListAdmins)
					r.Get("/getClients", h.ListClients)
				})

				r.Get("/profile", h.Profile)
				r.Get("/qr-scans", h.QRScans)
				r.Post("/add-advertiser", h.AddAdvertiser)
				r.Post("/add-advertisement", h.AddAdvertisement)
				r.Post("/allocate-ad", h.AllocateAd)
				r.Get("/getads", h.ClientAds)
				r.Get("/advertisers", h.ListAdvertisers)
				r.Get("/advertisements", h.ListAdvertisements)
				r.Put("/clients/{id}", h.EditClient)
				r.Get("/clients/{id}", h.ClientDetails)
			})
		})

		r.Route("/client", func(r chi.Router) {
			h.registerLogin(r, h.ClientLogin, h.ClientSetupPassword, h.ClientRequestReset, h.ClientResetPassword)

			r.With(publicLimit).Post("/visitor-data", h.RecordVisitor)

			r.With(admin, activity).Post("/add", h.AddClient)

			r.Group(func(r chi.Router) {
				r.Use(client, activity)
				r.Get("/visitors", h.ListVisitors)
				r.Get("/exhibit-logs", h.ListExhibitLogs)
			})
		})

		r.Route("/exhibit", func(r chi.Router) {
			r.Get("/{clientCode}/{code}", h.ViewExhibit)

			r.Group(func(r chi.Router) {
				r.Use(client, activity)
				r.Post("/add", h.CreateExhibit)
				r.Get("/all", h.ListExhibits)
				r.Put("/approve/{code}", h.ApproveExhibit)
				r.Put("/{code}", h.EditExhibit)
				r.Delete("/{code}", h.DeleteExhibit)
			})
		})

		r.Route("/landing", func(r chi.Router) {
			r.Get("/{id}", h.ViewLanding)

			r.Group(func(r chi.Router) {
				r.Use(client, activity)
				r.Get("/", h.GetLanding)
				r.Post("/setup", h.SetupLanding)
				r.Put("/edit", h.EditLanding)
			})
		})

		r.Route("/redirect", func(r chi.Router) {
			r.With(publicLimit).Get("/{shortUrl}", h.Redirect)
			r.With(client, activity).Post("/update-redirect-url", h.UpdateRedirect)
		})
	})
}

// registerLogin mounts the anonymous account routes shared by admins and
// clients. Login attempts go through the per-IP login limiter.
func (h *Handler) registerLogin(r chi.Router, login, setup, requestReset, reset http.HandlerFunc) {
	if h.login != nil {
		r.With(h.login.Middleware()).Post("/login", login)
	} else {
		r.Post("/login", login)
	}
	r.Post("/setup-password", setup)
	r.Post("/request-password-reset", requestReset)
	r.Post("/verify-reset-code", reset)
}
