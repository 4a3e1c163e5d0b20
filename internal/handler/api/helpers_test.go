// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/captcha"
	"github.com/olegiv/exhibit-cms/internal/imaging"
	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/mail"
	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/resetcode"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/testutil"
)

const (
	testSecret        = "test-Secret-key-32-bytes-long!!!"
	testAdminPassword = "changeme1"
)

// echoProvider translates by prefixing the language code.
type echoProvider struct{}

func (echoProvider) Translate(_ context.Context, text, lang string) (string, bool) {
	return lang + ":" + text, true
}

func (echoProvider) SynthesizeSpeech(_ context.Context, _, lang string) (string, error) {
	return "https://cdn.example/" + lang + ".mp3", nil
}

type testServer struct {
	db         *sql.DB
	tokens     *auth.JWTManager
	content    *service.ContentService
	router     chi.Router
	uploadsDir string
}

// newTestServer wires the full API against a fresh database with the
// default admin seeded.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	if err := store.Seed(context.Background(), db, auth.HashPassword, testAdminPassword); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	tokens, err := auth.NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	uploadsDir := t.TempDir()
	local, err := storage.NewLocalStore(uploadsDir, "http://localhost/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	logger := testutil.TestLoggerSilent()
	urls := service.URLs{
		PanelFrontend: "https://panel.example",
		PWA:           "https://app.example",
		Proxy:         "https://api.example/api/redirect",
	}
	accounts := &service.Accounts{
		Tokens:  tokens,
		Resets:  resetcode.New(mem, resetcode.Options{TTL: time.Minute}),
		Mailer:  mail.LogMailer{Logger: logger},
		Captcha: captcha.New(captcha.Options{Logger: logger}),
		URLs:    urls,
		Logger:  logger,
	}
	languages := service.NewLanguageCache(store.New(db), mem, time.Minute)
	content := service.NewContentService(db, localize.NewMerger(echoProvider{}, 2, logger), languages, urls, logger)
	t.Cleanup(content.Wait)

	login := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(login.Stop)

	h := NewHandler(Deps{
		DB:          db,
		Admins:      service.NewAdminService(db, accounts),
		Clients:     service.NewClientService(db, content, languages, accounts),
		Content:     content,
		Advertisers: service.NewAdvertiserService(db),
		Redirects:   service.NewRedirectService(db, nil, false, logger),
		Events:      service.NewEventService(db, logger),
		Files:       storage.NewFileSaver(local, imaging.NewProcessor(1024)),
		Tokens:      tokens,
		Login:       login,
		Cache:       mem,
		UploadsDir:  uploadsDir,
		Version:     "test",
		Logger:      logger,
	})

	r := chi.NewRouter()
	h.Register(r, RouteConfig{CORSOrigins: []string{"https://panel.example"}})

	return &testServer{db: db, tokens: tokens, content: content, router: r, uploadsDir: uploadsDir}
}

// storedFiles counts the regular files under the uploads directory.
func (s *testServer) storedFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(s.uploadsDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking uploads dir: %v", err)
	}
	return n
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(t *testing.T, id auth.Identity) string {
	t.Helper()
	tok, err := s.tokens.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (s *testServer) adminToken(t *testing.T, role int) string {
	t.Helper()
	return s.token(t, auth.Identity{UserID: 1, Kind: auth.KindAdmin, Role: role, Email: store.DefaultAdminEmail})
}

// clientToken creates a client with the given link and active languages and
// returns it together with a token for its owner.
func (s *testServer) clientToken(t *testing.T, link string, languages ...string) (store.Client, string) {
	t.Helper()
	c := testutil.CreateClient(t, s.db, link, languages...)
	return c, s.token(t, auth.Identity{UserID: 100 + c.ID, Kind: auth.KindClient, ClientID: c.ID, Email: c.Email})
}

func jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// upload is one file part of a multipart request.
type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// pngBytes returns a small valid PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 30), B: uint8(y * 30), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// decodeData unmarshals the data member of a success envelope into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) *Meta {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("failed to unmarshal data: %v", err)
		}
	}
	return env.Meta
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
