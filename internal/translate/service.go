// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate adapts the machine translation and text-to-speech
// providers used to localize exhibit and landing page text.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/olegiv/exhibit-cms/internal/storage"
)

// Translator translates English text into the language with the given code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Synthesizer turns text into speech for a provider-specific language code.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, code string) (Audio, error)
}

// Audio is encoded speech and the file extension for its format.
type Audio struct {
	Data []byte
	Ext  string
}

// DefaultTimeout bounds a single provider call when none is configured.
const DefaultTimeout = 20 * time.Second

const breakerTranslate = "translate"

// Options configures a Service. Nil synthesizers disable their route.
type Options struct {
	Translator     Translator
	TranslatorName string
	Google         Synthesizer
	Sarvam         Synthesizer
	Uploader       storage.Uploader
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Service is the provider adapter used by the localization merger.
type Service struct {
	translator     Translator
	translatorName string
	speech         map[string]Synthesizer
	uploader       storage.Uploader
	breakers       map[string]*gobreaker.CircuitBreaker[any]
	timeout        time.Duration
	logger         *slog.Logger
}

// NewService creates a Service with one circuit breaker per upstream.
func NewService(opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TranslatorName == "" {
		opts.TranslatorName = ServiceGoogle
	}

	s := &Service{
		translator:     opts.Translator,
		translatorName: opts.TranslatorName,
		speech:         map[string]Synthesizer{},
		uploader:       opts.Uploader,
		breakers:       map[string]*gobreaker.CircuitBreaker[any]{},
		timeout:        opts.Timeout,
		logger:         opts.Logger,
	}
	if opts.Google != nil {
		s.speech[ServiceGoogle] = opts.Google
	}
	if opts.Sarvam != nil {
		s.speech[ServiceSarvam] = opts.Sarvam
	}
	for _, name := range []string{breakerTranslate, ServiceGoogle, ServiceSarvam} {
		s.breakers[name] = s.newBreaker(name)
	}
	return s
}

func (s *Service) newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("provider circuit state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// BreakerStates returns the state of every upstream breaker keyed by name.
func (s *Service) BreakerStates() map[string]string {
	out := make(map[string]string, len(s.breakers))
	for name, cb := range s.breakers {
		out[name] = cb.State().String()
	}
	return out
}

// Translate returns the translation of text into the named language. It never
// fails: on any problem it logs and reports false so the caller keeps the
// source text.
func (s *Service) Translate(ctx context.Context, text, lang string) (string, bool) {
	if s.translator == nil || strings.TrimSpace(text) == "" {
		return "", false
	}

	code, err := TranslationCode(lang)
	if err != nil {
		s.logger.Debug("no translation code", "language", lang)
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.breakers[breakerTranslate].Execute(func() (any, error) {
		return s.translator.Translate(ctx, text, code)
	})
	if err != nil {
		s.logger.Warn("translation failed",
			"language", lang, "service", s.translatorName, "error", err)
		return "", false
	}

	translated, _ := out.(string)
	if strings.TrimSpace(translated) == "" {
		return "", false
	}
	return translated, true
}

// SynthesizeSpeech voices text in the named language and returns the public
// URL of the stored audio. The intermediate audio file is removed whether or
// not the upload succeeds.
func (s *Service) SynthesizeSpeech(ctx context.Context, text, lang string) (string, error) {
	route, err := Resolve(lang)
	if err != nil {
		return "", err
	}

	synth, ok := s.speech[route.Service]
	if !ok {
		return "", &UpstreamError{Service: route.Service, Op: "synthesize", Err: errors.New("provider not configured")}
	}
	if s.uploader == nil {
		return "", &UpstreamError{Service: "storage", Op: "upload", Err: errors.New("uploader not configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.breakers[route.Service].Execute(func() (any, error) {
		return synth.Synthesize(callCtx, text, route.Code)
	})
	if err != nil {
		return "", &UpstreamError{Service: route.Service, Op: "synthesize", Err: err}
	}
	audio, _ := out.(Audio)

	tmp, err := storage.WriteTemp(audio.Data, audio.Ext)
	if err != nil {
		return "", &UpstreamError{Service: "storage", Op: "write", Err: err}
	}
	defer func() { _ = os.Remove(tmp) }()

	asset, err := s.uploader.Upload(ctx, tmp)
	if err != nil {
		return "", &UpstreamError{Service: "storage", Op: "upload", Err: err}
	}
	return asset.URL, nil
}
