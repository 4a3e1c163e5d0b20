// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// ActivityLogger records "METHOD path" in the activity log for every
// authenticated mutating request that succeeded. It must run after
// RequireToken. The entry is written before the response completes.
func ActivityLogger(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			email := GetUserEmail(r)
			if email == "" || ww.Status() >= http.StatusBadRequest {
				return
			}
			if err := queries.CreateActivityLog(r.Context(), store.CreateActivityLogParams{
				Email:     email,
				IpAddress: tracking.ClientIP(r),
				Action:    r.Method + " " + r.URL.Path,
				CreatedAt: time.Now().UTC(),
			}); err != nil {
				slog.Warn("failed to write activity log", "email", email, "path", r.URL.Path, "error", err)
			}
		})
	}
}
