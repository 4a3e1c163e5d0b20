// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
	"github.com/olegiv/exhibit-cms/internal/testutil"
)

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d", expected, w.Code)
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code '%s', got %s", expectedCode, resp.Error.Code)
	}
	return resp
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	WriteJSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %s", ct)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["key"] != "value" {
		t.Errorf("expected key 'value', got %s", resp["key"])
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"name": "test"}
	meta := &Meta{Total: 100, Page: 1, PerPage: 20}
	WriteSuccess(w, data, meta)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Meta == nil {
		t.Fatal("expected meta to be present")
	}
	if resp.Meta.Total != 100 {
		t.Errorf("expected total 100, got %d", resp.Meta.Total)
	}
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"id": "123"}
	WriteCreated(w, data)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "validation_error", "Invalid input", map[string]string{
		"field": "name",
	})

	assertStatusCode(t, w, http.StatusBadRequest)
	resp := assertErrorResponse(t, w, "validation_error")

	if resp.Error.Message != "Invalid input" {
		t.Errorf("expected message 'Invalid input', got %s", resp.Error.Message)
	}
	if resp.Error.Details["field"] != "name" {
		t.Errorf("expected details.field 'name', got %s", resp.Error.Details["field"])
	}
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	WriteBadRequest(w, "Bad input", nil)
	assertStatusCode(t, w, http.StatusBadRequest)
}

func TestWriteNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNotFound(w, "Resource not found")
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestWriteUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	WriteUnauthorized(w, "Not authenticated")
	assertStatusCode(t, w, http.StatusUnauthorized)
}

func TestWriteForbidden(t *testing.T) {
	w := httptest.NewRecorder()
	WriteForbidden(w, "Access denied")
	assertStatusCode(t, w, http.StatusForbidden)
}

func TestWriteInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalError(w, "Something went wrong")
	assertStatusCode(t, w, http.StatusInternalServerError)
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, map[string]string{
		"email": "Invalid email format",
		"name":  "Required field",
	})

	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")

	if len(resp.Error.Details) != 2 {
		t.Errorf("expected 2 error details, got %d", len(resp.Error.Details))
	}
}

func TestWriteConflict(t *testing.T) {
	w := httptest.NewRecorder()
	WriteConflict(w, "Landing page already exists")
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, "conflict")
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, "done")
	assertStatusCode(t, w, http.StatusOK)

	var resp struct {
		Data MessageResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.Message != "done" {
		t.Errorf("expected message 'done', got %q", resp.Data.Message)
	}
}

func TestWriteServiceError(t *testing.T) {
	h := NewHandler(Deps{Logger: testutil.TestLoggerSilent()})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"title": "Title is required"}}, http.StatusUnprocessableEntity, "validation_error"},
		{"wrapped validation", fmt.Errorf("creating: %w", &service.ValidationError{Fields: map[string]string{"x": "y"}}), http.StatusUnprocessableEntity, "validation_error"},
		{"not found", fmt.Errorf("exhibit %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"tenant languages", service.ErrTenantLanguagesNotFound, http.StatusNotFound, "not_found"},
		{"conflict", fmt.Errorf("email %w", service.ErrConflict), http.StatusConflict, "conflict"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"blocked", service.ErrAccountBlocked, http.StatusForbidden, "forbidden"},
		{"inactive", service.ErrAccountInactive, http.StatusForbidden, "forbidden"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/exhibit/all", nil)
			h.writeServiceError(w, r, tt.err, "list exhibits")
			assertStatusCode(t, w, tt.wantStatus)
			resp := assertErrorResponse(t, w, tt.wantCode)
			if tt.wantStatus == http.StatusInternalServerError && resp.Error.Message != "Failed to list exhibits" {
				t.Errorf("unexpected message %q", resp.Error.Message)
			}
		})
	}
}

func TestWriteServiceError_NotFoundMessage(t *testing.T) {
	h := NewHandler(Deps{Logger: testutil.TestLoggerSilent()})
	w := httptest.NewRecorder()
	h.writeServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("exhibit %w", service.ErrNotFound), "load exhibit")

	resp := assertErrorResponse(t, w, "not_found")
	if resp.Error.Message != "Exhibit not found" {
		t.Errorf("expected message 'Exhibit not found', got %q", resp.Error.Message)
	}
}

func TestWriteUploadError(t *testing.T) {
	h := NewHandler(Deps{Logger: testutil.TestLoggerSilent()})
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	w := httptest.NewRecorder()
	h.writeUploadError(w, r, "titleImage", storage.ErrTooLarge)
	assertStatusCode(t, w, http.StatusRequestEntityTooLarge)
	assertErrorResponse(t, w, "file_too_large")

	w = httptest.NewRecorder()
	h.writeUploadError(w, r, "titleImage", fmt.Errorf("%w: bad header", storage.ErrUnsupportedType))
	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	if _, ok := resp.Error.Details["titleImage"]; !ok {
		t.Errorf("expected titleImage detail, got %v", resp.Error.Details)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query       string
		wantNumber  int
		wantPerPage int
	}{
		{"", 1, service.DefaultPerPage},
		{"?page=3&per_page=10", 3, 10},
		{"?page=0&per_page=-1", 1, service.DefaultPerPage},
		{"?page=abc", 1, service.DefaultPerPage},
		{"?per_page=5000", 1, service.MaxPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := parsePage(httptest.NewRequest(http.MethodGet, "/api/admin/logs"+tt.query, nil))
			if page.Number != tt.wantNumber || page.PerPage != tt.wantPerPage {
				t.Errorf("parsePage(%q) = %+v, want number %d per_page %d", tt.query, page, tt.wantNumber, tt.wantPerPage)
			}
		})
	}
}

func TestPageMeta(t *testing.T) {
	meta := pageMeta(service.Page{Number: 2, PerPage: 20}, 41)
	if meta.Total != 41 || meta.Page != 2 || meta.PerPage != 20 || meta.Pages != 3 {
		t.Errorf("unexpected meta %+v", meta)
	}
	if got := pageMeta(service.Page{Number: 1, PerPage: 20}, 0).Pages; got != 0 {
		t.Errorf("expected 0 pages for empty result, got %d", got)
	}
}

func TestCapitalizeFirst(t *testing.T) {
	if got := capitalizeFirst("client not found"); got != "Client not found" {
		t.Errorf("got %q", got)
	}
	if got := capitalizeFirst(""); got != "" {
		t.Errorf("got %q", got)
	}
}
