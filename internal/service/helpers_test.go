// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/captcha"
	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/mail"
	"github.com/olegiv/exhibit-cms/internal/resetcode"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/testutil"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

// fakeProvider prefixes translations with the language name. Languages in
// failTranslate or failSpeech fail.
type fakeProvider struct {
	mu             sync.Mutex
	failTranslate  map[string]bool
	failSpeech     map[string]bool
	translateCalls map[string]int
	speechCalls    map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		failTranslate:  map[string]bool{},
		failSpeech:     map[string]bool{},
		translateCalls: map[string]int{},
		speechCalls:    map[string]int{},
	}
}

func (f *fakeProvider) Translate(_ context.Context, text, lang string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translateCalls[lang]++
	if f.failTranslate[lang] {
		return "", false
	}
	return lang + ":" + text, true
}

func (f *fakeProvider) SynthesizeSpeech(_ context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speechCalls[lang]++
	if f.failSpeech[lang] {
		return "", errors.New("tts down")
	}
	return fmt.Sprintf("https://cdn.example/%s/%s.mp3", lang, url.PathEscape(text)), nil
}

func (f *fakeProvider) translations(lang string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.translateCalls[lang]
}

// recordingMailer keeps sent messages.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

var codePattern = regexp.MustCompile(`\b[0-9]{6}\b`)

// resetCode extracts the verification code from the last reset mail.
func (m *recordingMailer) resetCode(t *testing.T) string {
	t.Helper()
	code := codePattern.FindString(m.last(t).Text)
	if code == "" {
		t.Fatal("no code in reset mail")
	}
	return code
}

// tempPassword extracts the temporary password from the last setup link.
func (m *recordingMailer) tempPassword(t *testing.T) string {
	t.Helper()
	text := m.last(t).Text
	link := text[strings.Index(text, "http"):]
	link = strings.SplitN(link, "?", 2)[0]
	parts := strings.Split(link, "/")
	pw, err := url.PathUnescape(parts[len(parts)-1])
	if err != nil {
		t.Fatalf("unescaping temp password: %v", err)
	}
	return pw
}

type harness struct {
	db        *sql.DB
	queries   *store.Queries
	provider  *fakeProvider
	mailer    *recordingMailer
	tokens    *auth.JWTManager
	languages *cache.LanguageCache
	content   *ContentService
	clients   *ClientService
	admins    *AdminService
	ads       *AdvertiserService
	redirects *RedirectService
	events    *EventService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	tokens, err := auth.NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	logger := testutil.TestLoggerSilent()
	queries := store.New(db)
	provider := newFakeProvider()
	mailer := &recordingMailer{}
	languages := NewLanguageCache(queries, mem, time.Minute)
	urls := URLs{
		PanelFrontend: "https://panel.example",
		PWA:           "https://app.example",
		Proxy:         "https://api.example/api/redirect",
	}
	accounts := &Accounts{
		Tokens:  tokens,
		Resets:  resetcode.New(mem, resetcode.Options{TTL: time.Minute}),
		Mailer:  mailer,
		Captcha: captcha.New(captcha.Options{Logger: logger}),
		URLs:    urls,
		Logger:  logger,
	}

	content := NewContentService(db, localize.NewMerger(provider, 2, logger), languages, urls, logger)
	return &harness{
		db:        db,
		queries:   queries,
		provider:  provider,
		mailer:    mailer,
		tokens:    tokens,
		languages: languages,
		content:   content,
		clients:   NewClientService(db, content, languages, accounts),
		admins:    NewAdminService(db, accounts),
		ads:       NewAdvertiserService(db),
		redirects: NewRedirectService(db, nil, false, logger),
		events:    NewEventService(db, logger),
	}
}

// client inserts a client with the given active languages.
func (h *harness) client(t *testing.T, link string, languages ...string) store.Client {
	t.Helper()
	return testutil.CreateClient(t, h.db, link, languages...)
}

func (h *harness) enableAudio(t *testing.T, clientID int64) {
	t.Helper()
	if _, err := h.db.Exec(`UPDATE clients SET audio = 1 WHERE id = ?`, clientID); err != nil {
		t.Fatalf("enabling audio: %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func exhibitInput(title, description string) ExhibitInput {
	return ExhibitInput{
		Title:       title,
		Description: description,
		TitleImage:  "https://cdn.example/title.jpg",
	}
}
