// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/storage"
)

const (
	// maxMultipartMemory is kept in memory; larger parts spill to disk.
	maxMultipartMemory = 32 << 20
	// maxRequestBody bounds a whole multipart request.
	maxRequestBody = 200 << 20
	// maxGalleryImages bounds the images field of an exhibit.
	maxGalleryImages = 10
)

// form wraps a parsed multipart form.
type form struct {
	*multipart.Form
}

// isMultipart reports whether r carries a multipart body.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseMultipart parses a multipart body. It writes a 400 and returns false
// when the body is not a readable multipart form.
func parseMultipart(w http.ResponseWriter, r *http.Request) (form, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteBadRequest(w, "Failed to parse multipart form", nil)
		return form{}, false
	}
	return form{r.MultipartForm}, true
}

func (f form) value(name string) string {
	if v := f.Value[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// optional returns nil when the field is absent.
func (f form) optional(name string) *string {
	v, ok := f.Value[name]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}

func (f form) intValue(name string) (int64, bool) {
	n, err := strconv.ParseInt(f.value(name), 10, 64)
	return n, err == nil
}

// translations decodes the JSON carried in the "translations" field.
func (f form) translations() (map[string]localize.Override, error) {
	raw := f.value("translations")
	if raw == "" {
		return nil, nil
	}
	var out map[string]localize.Override
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseTranslations decodes the translations field, writing a 400 on bad JSON.
func parseTranslations(w http.ResponseWriter, f form) (map[string]localize.Override, bool) {
	t, err := f.translations()
	if err != nil {
		WriteBadRequest(w, "Invalid translations JSON", map[string]string{"translations": "Must be a JSON object keyed by language"})
		return nil, false
	}
	return t, true
}

// uploadBatch tracks the files stored while handling one request so they can
// be removed again when the request fails.
type uploadBatch struct {
	h     *Handler
	saved []storage.Asset
}

func (h *Handler) newUploadBatch() *uploadBatch {
	return &uploadBatch{h: h}
}

// one stores the first file of field. It returns nil when the field has no
// file, and false when a response was written.
func (b *uploadBatch) one(w http.ResponseWriter, r *http.Request, f form, field, kind string) (*string, bool) {
	files := f.File[field]
	if len(files) == 0 {
		return nil, true
	}
	asset, err := b.h.files.Save(r.Context(), files[0], kind)
	if err != nil {
		b.discard(r)
		b.h.writeUploadError(w, r, field, err)
		return nil, false
	}
	b.saved = append(b.saved, asset)
	return &asset.URL, true
}

// many stores every file of field, up to limit. It returns nil when the field
// has no file, and false when a response was written.
func (b *uploadBatch) many(w http.ResponseWriter, r *http.Request, f form, field, kind string, limit int) ([]string, bool) {
	files := f.File[field]
	if len(files) == 0 {
		return nil, true
	}
	if len(files) > limit {
		b.discard(r)
		WriteValidationError(w, map[string]string{field: "At most " + strconv.Itoa(limit) + " files are allowed"})
		return nil, false
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		asset, err := b.h.files.Save(r.Context(), fh, kind)
		if err != nil {
			b.discard(r)
			b.h.writeUploadError(w, r, field, err)
			return nil, false
		}
		b.saved = append(b.saved, asset)
		urls = append(urls, asset.URL)
	}
	return urls, true
}

// discard removes every file stored so far.
func (b *uploadBatch) discard(r *http.Request) {
	if len(b.saved) == 0 {
		return
	}
	if err := b.h.files.Discard(context.WithoutCancel(r.Context()), b.saved); err != nil {
		b.h.logger.WarnContext(r.Context(), "failed to remove uploaded files",
			"path", r.URL.Path, "count", len(b.saved), "error", err)
	}
	b.saved = nil
}

// TextEdit is the text part of an exhibit or landing page edit sent as JSON.
type TextEdit struct {
	Title        *string                      `json:"title"`
	Description  *string                      `json:"description"`
	Translations map[string]localize.Override `json:"translations"`
}

// readTextEdit reads title, description and translations from either a JSON
// or a multipart body. For multipart bodies the parsed form is returned too.
func readTextEdit(w http.ResponseWriter, r *http.Request) (TextEdit, *form, bool) {
	if !isMultipart(r) {
		var edit TextEdit
		if !decodeJSON(w, r, &edit) {
			return TextEdit{}, nil, false
		}
		return edit, nil, true
	}

	f, ok := parseMultipart(w, r)
	if !ok {
		return TextEdit{}, nil, false
	}
	translations, ok := parseTranslations(w, f)
	if !ok {
		return TextEdit{}, nil, false
	}
	return TextEdit{
		Title:        f.optional("title"),
		Description:  f.optional("description"),
		Translations: translations,
	}, &f, true
}
