// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/store"
)

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(jsonRequest(t, http.MethodGet, "/health/live", "", nil))
	requireStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"alive"`) {
		t.Errorf("unexpected liveness body %s", w.Body.String())
	}

	w = s.do(jsonRequest(t, http.MethodGet, "/health/ready", "", nil))
	requireStatus(t, w, http.StatusOK)

	w = s.do(jsonRequest(t, http.MethodGet, "/health", "", nil))
	requireStatus(t, w, http.StatusOK)
	var public map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &public); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := public["checks"]; ok {
		t.Error("anonymous health response must not include checks")
	}

	w = s.do(jsonRequest(t, http.MethodGet, "/health", s.adminToken(t, auth.RoleSuperAdmin), nil))
	requireStatus(t, w, http.StatusOK)
	var full HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &full); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if full.Version != "test" {
		t.Errorf("expected version 'test', got %q", full.Version)
	}
	if full.Checks["database"].Status != "healthy" {
		t.Errorf("expected healthy database, got %+v", full.Checks["database"])
	}
	if !strings.Contains(full.Checks["database"].Message, "schema v3") {
		t.Errorf("expected schema version in %q", full.Checks["database"].Message)
	}
	if full.Checks["cache"].Status != "healthy" {
		t.Errorf("expected healthy cache, got %+v", full.Checks["cache"])
	}
	if full.Cache == nil {
		t.Error("expected cache stats for a super admin")
	}

	// An operator only gets the public view.
	w = s.do(jsonRequest(t, http.MethodGet, "/health", s.adminToken(t, auth.RoleOperator), nil))
	if strings.Contains(w.Body.String(), "checks") {
		t.Error("operator health response must not include checks")
	}
}

func TestRouteAuthorization(t *testing.T) {
	s := newTestServer(t)
	_, clientTok := s.clientToken(t, "acme", "en")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"admin list anonymous", http.MethodGet, "/api/admin", "", http.StatusUnauthorized},
		{"admin list with client token", http.MethodGet, "/api/admin", clientTok, http.StatusForbidden},
		{"admin list as operator", http.MethodGet, "/api/admin", s.adminToken(t, auth.RoleOperator), http.StatusForbidden},
		{"admin list as admin", http.MethodGet, "/api/admin", s.adminToken(t, auth.RoleAdmin), http.StatusOK},
		{"logs as admin", http.MethodGet, "/api/admin/logs", s.adminToken(t, auth.RoleAdmin), http.StatusForbidden},
		{"logs as super admin", http.MethodGet, "/api/admin/logs", s.adminToken(t, auth.RoleSuperAdmin), http.StatusOK},
		{"qr scans as operator", http.MethodGet, "/api/admin/qr-scans", s.adminToken(t, auth.RoleOperator), http.StatusOK},
		{"exhibits with admin token", http.MethodGet, "/api/exhibit/all", s.adminToken(t, auth.RoleSuperAdmin), http.StatusForbidden},
		{"exhibits with client token", http.MethodGet, "/api/exhibit/all", clientTok, http.StatusOK},
		{"add client with client token", http.MethodPost, "/api/client/add", clientTok, http.StatusForbidden},
		{"visitors anonymous", http.MethodGet, "/api/client/visitors", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(jsonRequest(t, tt.method, tt.path, tt.token, nil))
			if w.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/admin/login", "", service.LoginInput{
		Email:    store.DefaultAdminEmail,
		Password: testAdminPassword,
	}))
	requireStatus(t, w, http.StatusOK)

	var res service.AdminLoginResult
	decodeData(t, w, &res)
	if res.Token == "" {
		t.Fatal("expected a token")
	}

	w = s.do(jsonRequest(t, http.MethodGet, "/api/admin/profile", res.Token, nil))
	requireStatus(t, w, http.StatusOK)
}

func TestAdminLogin_Lockout(t *testing.T) {
	s := newTestServer(t)
	wrong := service.LoginInput{Email: store.DefaultAdminEmail, Password: "not-the-password"}

	// Distinct client IPs keep the per-IP limiter out of the way.
	ips := []string{"198.51.100.1", "198.51.100.2", "198.51.100.3", "198.51.100.4", "198.51.100.5"}
	for _, ip := range ips {
		req := jsonRequest(t, http.MethodPost, "/api/admin/login", "", wrong)
		req.RemoteAddr = ip + ":1234"
		w := s.do(req)
		requireStatus(t, w, http.StatusUnauthorized)
	}

	req := jsonRequest(t, http.MethodPost, "/api/admin/login", "", service.LoginInput{
		Email:    " Admin@Example.com",
		Password: testAdminPassword,
	})
	req.RemoteAddr = "198.51.100.6:1234"
	w := s.do(req)
	requireStatus(t, w, http.StatusTooManyRequests)
	assertErrorResponse(t, w, "account_locked")
}

func TestMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/client/visitor-data", "", "{not json"))
	requireStatus(t, w, http.StatusBadRequest)
	assertErrorResponse(t, w, "bad_request")
}

func TestAdminSetStatus_Self(t *testing.T) {
	s := newTestServer(t)

	w := s.do(jsonRequest(t, http.MethodPut, "/api/admin/1", s.adminToken(t, auth.RoleSuperAdmin), map[string]int{"status": 0}))
	requireStatus(t, w, http.StatusUnprocessableEntity)
}

func TestExhibitLifecycle(t *testing.T) {
	s := newTestServer(t)
	client, tok := s.clientToken(t, "museum", "en", "hi")

	// Missing title image is a validation error.
	w := s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok, map[string]string{
		"title":       "Bronze Age",
		"description": "Tools and ornaments",
	}))
	requireStatus(t, w, http.StatusUnprocessableEntity)

	w = s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok,
		map[string]string{
			"title":        "Bronze Age",
			"description":  "Tools and ornaments",
			"translations": `{"hi":{"title":"कांस्य युग"}}`,
		},
		upload{field: "titleImage", name: "title.png", data: pngBytes(t)},
		upload{field: "images", name: "a.png", data: pngBytes(t)},
		upload{field: "images", name: "b.png", data: pngBytes(t)},
	))
	requireStatus(t, w, http.StatusCreated)

	var created service.Exhibit
	decodeData(t, w, &created)
	if created.Code == "" || created.TitleImage == "" {
		t.Fatalf("unexpected exhibit %+v", created)
	}
	if len(created.Images) != 2 {
		t.Errorf("expected 2 gallery images, got %d", len(created.Images))
	}
	hi := recordFor(t, created.Translations, "hi")
	if hi.Title != "कांस्य युग" {
		t.Errorf("expected override title, got %q", hi.Title)
	}
	if hi.Description != "hi:Tools and ornaments" {
		t.Errorf("expected machine description, got %q", hi.Description)
	}

	// JSON edit of the description only.
	w = s.do(jsonRequest(t, http.MethodPut, "/api/exhibit/"+created.Code, tok, map[string]any{
		"description": "Tools, weapons and ornaments",
	}))
	requireStatus(t, w, http.StatusOK)
	var edited service.Exhibit
	decodeData(t, w, &edited)
	if edited.Title != "Bronze Age" {
		t.Errorf("title changed unexpectedly to %q", edited.Title)
	}
	if got := recordFor(t, edited.Translations, "hi").Description; got != "hi:Tools, weapons and ornaments" {
		t.Errorf("expected retranslated description, got %q", got)
	}

	w = s.do(jsonRequest(t, http.MethodPut, "/api/exhibit/approve/"+created.Code, tok, nil))
	requireStatus(t, w, http.StatusOK)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/exhibit/all", tok, nil))
	requireStatus(t, w, http.StatusOK)
	var list []service.Exhibit
	meta := decodeData(t, w, &list)
	if len(list) != 1 || meta.Total != 1 {
		t.Fatalf("expected one exhibit, got %d", len(list))
	}
	if list[0].Status != service.ExhibitApproved {
		t.Errorf("expected approved exhibit, got status %d", list[0].Status)
	}

	// Public view records a visit with the mobile from the query string.
	w = s.do(jsonRequest(t, http.MethodGet, "/api/exhibit/museum/"+created.Code+"?mobile=9876543210", "", nil))
	requireStatus(t, w, http.StatusOK)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/client/exhibit-logs", tok, nil))
	requireStatus(t, w, http.StatusOK)
	var logs []store.ExhibitLog
	meta = decodeData(t, w, &logs)
	if len(logs) != 1 || meta.Total != 1 {
		t.Fatalf("expected one exhibit log, got %d", len(logs))
	}
	if logs[0].UserMobile != "9876543210" || logs[0].ClientID != client.ID {
		t.Errorf("unexpected log %+v", logs[0])
	}

	// Another tenant cannot see or delete the exhibit.
	_, otherTok := s.clientToken(t, "gallery", "en")
	w = s.do(jsonRequest(t, http.MethodDelete, "/api/exhibit/"+created.Code, otherTok, nil))
	requireStatus(t, w, http.StatusNotFound)
	w = s.do(jsonRequest(t, http.MethodGet, "/api/exhibit/gallery/"+created.Code, "", nil))
	requireStatus(t, w, http.StatusNotFound)

	w = s.do(jsonRequest(t, http.MethodDelete, "/api/exhibit/"+created.Code, tok, nil))
	requireStatus(t, w, http.StatusNoContent)
	w = s.do(jsonRequest(t, http.MethodGet, "/api/exhibit/museum/"+created.Code, "", nil))
	requireStatus(t, w, http.StatusNotFound)
}

func TestCreateExhibit_UploadErrors(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.clientToken(t, "museum", "en")
	fields := map[string]string{"title": "Coins", "description": "Mughal coins"}

	w := s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok, fields,
		upload{field: "titleImage", name: "title.png", data: []byte("definitely not an image")}))
	requireStatus(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	if _, ok := resp.Error.Details["titleImage"]; !ok {
		t.Errorf("expected titleImage detail, got %v", resp.Error.Details)
	}

	w = s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok, fields,
		upload{field: "titleImage", name: "title.png", data: pngBytes(t)},
		upload{field: "islVideo", name: "sign.exe", data: []byte("MZ")}))
	requireStatus(t, w, http.StatusUnprocessableEntity)

	files := []upload{{field: "titleImage", name: "title.png", data: pngBytes(t)}}
	for i := 0; i <= maxGalleryImages; i++ {
		files = append(files, upload{field: "images", name: "g.png", data: pngBytes(t)})
	}
	w = s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok, fields, files...))
	requireStatus(t, w, http.StatusUnprocessableEntity)

	w = s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", tok,
		map[string]string{"title": "Coins", "description": "Mughal coins", "translations": "{broken"},
		upload{field: "titleImage", name: "title.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusBadRequest)
}

func TestFailedRequestsRemoveUploads(t *testing.T) {
	s := newTestServer(t)
	_, ownerTok := s.clientToken(t, "museum", "en")
	_, otherTok := s.clientToken(t, "gallery", "en")
	fields := map[string]string{"title": "Coins", "description": "Mughal coins"}

	w := s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", ownerTok, fields,
		upload{field: "titleImage", name: "title.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusCreated)
	var created service.Exhibit
	decodeData(t, w, &created)
	if got := s.storedFiles(t); got != 1 {
		t.Fatalf("stored files after create = %d, want 1", got)
	}

	// Another tenant's exhibit code.
	w = s.do(multipartRequest(t, http.MethodPut, "/api/exhibit/"+created.Code, otherTok, nil,
		upload{field: "titleImage", name: "new.png", data: pngBytes(t)},
		upload{field: "images", name: "a.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusNotFound)
	if got := s.storedFiles(t); got != 1 {
		t.Errorf("stored files after rejected edit = %d, want 1", got)
	}

	// The title image is saved before the video is rejected.
	w = s.do(multipartRequest(t, http.MethodPost, "/api/exhibit/add", ownerTok, fields,
		upload{field: "titleImage", name: "title.png", data: pngBytes(t)},
		upload{field: "islVideo", name: "sign.exe", data: []byte("MZ")}))
	requireStatus(t, w, http.StatusUnprocessableEntity)
	if got := s.storedFiles(t); got != 1 {
		t.Errorf("stored files after rejected video = %d, want 1", got)
	}

	w = s.do(multipartRequest(t, http.MethodPost, "/api/landing/setup", ownerTok, fields,
		upload{field: "displayImage", name: "hall.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusCreated)
	w = s.do(multipartRequest(t, http.MethodPost, "/api/landing/setup", ownerTok, fields,
		upload{field: "displayImage", name: "hall.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusConflict)
	if got := s.storedFiles(t); got != 2 {
		t.Errorf("stored files after landing conflict = %d, want 2", got)
	}
}

func TestLandingAndRedirect(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.clientToken(t, "fort", "en", "ta")

	w := s.do(multipartRequest(t, http.MethodPost, "/api/landing/setup", tok,
		map[string]string{"title": "Red Fort", "description": "Built in 1639"},
		upload{field: "displayImage", name: "fort.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusCreated)

	var landing service.Landing
	decodeData(t, w, &landing)
	if landing.UniqueURL != "fort" || !strings.HasPrefix(landing.QRCode, "data:image/png;base64,") {
		t.Errorf("unexpected landing %+v", landing)
	}

	// A second setup conflicts.
	w = s.do(multipartRequest(t, http.MethodPost, "/api/landing/setup", tok,
		map[string]string{"title": "Red Fort", "description": "Built in 1639"},
		upload{field: "displayImage", name: "fort.png", data: pngBytes(t)}))
	requireStatus(t, w, http.StatusConflict)

	w = s.do(multipartRequest(t, http.MethodPut, "/api/landing/edit", tok,
		map[string]string{"title": "The Red Fort"}))
	requireStatus(t, w, http.StatusOK)
	decodeData(t, w, &landing)
	if got := recordFor(t, landing.Translations, "ta").Title; got != "ta:The Red Fort" {
		t.Errorf("expected retranslated title, got %q", got)
	}

	w = s.do(jsonRequest(t, http.MethodGet, "/api/landing", tok, nil))
	requireStatus(t, w, http.StatusOK)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/landing/fort", "", nil))
	requireStatus(t, w, http.StatusOK)
	var view service.LandingView
	decodeData(t, w, &view)
	if view.Title != "The Red Fort" {
		t.Errorf("expected edited title, got %q", view.Title)
	}
	s.content.Wait()

	w = s.do(jsonRequest(t, http.MethodGet, "/api/landing/nowhere", "", nil))
	requireStatus(t, w, http.StatusNotFound)

	// Setup created the QR short link.
	w = s.do(jsonRequest(t, http.MethodGet, "/api/redirect/fort", "", nil))
	requireStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "https://app.example/fort" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	w = s.do(jsonRequest(t, http.MethodPost, "/api/redirect/update-redirect-url", tok, service.UpdateInput{
		ShortURL:    "fort",
		RedirectURL: "https://example.org/fort",
	}))
	requireStatus(t, w, http.StatusOK)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/redirect/fort", "", nil))
	requireStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "https://example.org/fort" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	w = s.do(jsonRequest(t, http.MethodGet, "/api/redirect/unknown", "", nil))
	requireStatus(t, w, http.StatusNotFound)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/admin/qr-scans", s.adminToken(t, auth.RoleOperator), nil))
	requireStatus(t, w, http.StatusOK)
	if meta := decodeData(t, w, nil); meta == nil || meta.Total != 2 {
		t.Errorf("expected two recorded scans, got %+v", meta)
	}
}

func TestRecordVisitor(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.clientToken(t, "zoo", "en")
	in := service.VisitorInput{Name: "Asha", Mobile: "9876543210", ClientLink: "zoo"}

	w := s.do(jsonRequest(t, http.MethodPost, "/api/client/visitor-data", "", in))
	requireStatus(t, w, http.StatusCreated)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/client/visitor-data", "", in))
	requireStatus(t, w, http.StatusOK)

	in.ClientLink = "nowhere"
	w = s.do(jsonRequest(t, http.MethodPost, "/api/client/visitor-data", "", in))
	requireStatus(t, w, http.StatusNotFound)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/client/visitors", tok, nil))
	requireStatus(t, w, http.StatusOK)
	var visitors []store.Visitor
	decodeData(t, w, &visitors)
	if len(visitors) != 1 || visitors[0].Name != "Asha" {
		t.Errorf("unexpected visitors %+v", visitors)
	}
}

func TestActivityLogged(t *testing.T) {
	s := newTestServer(t)
	super := s.adminToken(t, auth.RoleSuperAdmin)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/admin/add-advertiser", super, service.NewAdvertiser{
		Name:   "Chai Co",
		Email:  "ads@chai.example",
		Mobile: "9123456780",
	}))
	requireStatus(t, w, http.StatusCreated)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/admin/logs", super, nil))
	requireStatus(t, w, http.StatusOK)
	var logs []store.ActivityLog
	decodeData(t, w, &logs)

	found := false
	for _, l := range logs {
		if l.Action == "POST /api/admin/add-advertiser" && l.Email == store.DefaultAdminEmail {
			found = true
		}
	}
	if !found {
		t.Errorf("expected activity entry for add-advertiser, got %+v", logs)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := jsonRequest(t, http.MethodOptions, "/api/exhibit/all", "", nil)
	req.Header.Set("Origin", "https://panel.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := s.do(req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://panel.example" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func recordFor(t *testing.T, records []localize.Record, lang string) localize.Record {
	t.Helper()
	for _, r := range records {
		if r.Language == lang {
			return r
		}
	}
	t.Fatalf("no %s record in %+v", lang, records)
	return localize.Record{}
}
