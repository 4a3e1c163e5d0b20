// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package localize builds the per-language translation list of an exhibit
// or landing page from its canonical English text.
package localize

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/exhibit-cms/internal/language"
	"github.com/olegiv/exhibit-cms/internal/translate"
)

// Provider translates and voices text. Translate reports false when no
// translation is available; SynthesizeSpeech returns the stored audio URL.
type Provider interface {
	Translate(ctx context.Context, text, lang string) (string, bool)
	SynthesizeSpeech(ctx context.Context, text, lang string) (string, error)
}

// Source is the canonical English text of an item after the update applies.
type Source struct {
	Title       string
	Description string
}

// Override replaces machine translation for one language. Nil fields keep
// the existing text.
type Override struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Update describes what changed in an edit.
//
// Title and Description mark canonical fields supplied by the caller; their
// values are already folded into Source. Overrides win over machine
// translation for their language. RegenerateAll treats every field of every
// language as supplied. SkipAudio leaves audio URLs as they were, for
// clients with narration switched off.
type Update struct {
	Title         *string
	Description   *string
	Overrides     map[string]Override
	RegenerateAll bool
	SkipAudio     bool
}

// DefaultConcurrency is the number of languages processed at once.
const DefaultConcurrency = 4

// Merger runs the per-language localization pipeline.
type Merger struct {
	provider    Provider
	concurrency int
	logger      *slog.Logger
}

// NewMerger creates a Merger. concurrency <= 0 uses DefaultConcurrency.
func NewMerger(provider Provider, concurrency int, logger *slog.Logger) *Merger {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{provider: provider, concurrency: concurrency, logger: logger}
}

// Merge returns one record per active language, in registry order. Languages
// missing from active are dropped. Provider failures degrade single fields
// and never fail the merge.
func (m *Merger) Merge(ctx context.Context, existing []Record, active []string, src Source, upd Update) []Record {
	langs := orderActive(active)
	prev := index(existing)
	overrides := make(map[string]Override, len(upd.Overrides))
	for k, v := range upd.Overrides {
		overrides[language.Normalize(k)] = v
	}

	out := make([]Record, len(langs))

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, lang := range langs {
		g.Go(func() error {
			p, hasPrev := prev[lang]
			ov, hasOv := overrides[lang]
			out[i] = m.mergeLanguage(ctx, lang, p, hasPrev, ov, hasOv, src, upd)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (m *Merger) mergeLanguage(ctx context.Context, lang string, prev Record, hasPrev bool,
	ov Override, hasOv bool, src Source, upd Update) Record {

	title := m.text(ctx, lang, field{
		source:     src.Title,
		prev:       prev.Title,
		hasPrev:    hasPrev,
		overridden: hasOv,
		override:   ov.Title,
		supplied:   upd.Title != nil || upd.RegenerateAll,
	})
	description := m.text(ctx, lang, field{
		source:     src.Description,
		prev:       prev.Description,
		hasPrev:    hasPrev,
		overridden: hasOv,
		override:   ov.Description,
		supplied:   upd.Description != nil || upd.RegenerateAll,
	})

	rec := Record{Language: lang, Title: title, Description: description}
	if hasPrev {
		rec.AudioURLs = prev.AudioURLs
	}
	if upd.SkipAudio {
		return rec
	}

	rec.AudioURLs.Title = m.audio(ctx, lang, "title", title, prev.Title, prev.AudioURLs.Title, hasPrev)
	rec.AudioURLs.Description = m.audio(ctx, lang, "description", description, prev.Description, prev.AudioURLs.Description, hasPrev)
	return rec
}

type field struct {
	source     string
	prev       string
	hasPrev    bool
	overridden bool
	override   *string
	supplied   bool
}

// text resolves one field. An override for the language suppresses machine
// translation entirely; fields it leaves out carry over.
func (m *Merger) text(ctx context.Context, lang string, f field) string {
	if f.overridden {
		if f.override != nil {
			return *f.override
		}
		return carry(f.prev, f.hasPrev, f.source)
	}
	if f.supplied || !f.hasPrev {
		if lang == language.English {
			return f.source
		}
		if translated, ok := m.provider.Translate(ctx, f.source, lang); ok {
			return translated
		}
		return f.source
	}
	return f.prev
}

// audio regenerates narration for changed, non-empty text, and for text that
// has never been narrated.
func (m *Merger) audio(ctx context.Context, lang, field, text, prevText, prevURL string, hasPrev bool) string {
	if hasPrev && text == prevText && (prevURL != "" || text == "") {
		return prevURL
	}
	if text == "" {
		return ""
	}

	url, err := m.provider.SynthesizeSpeech(ctx, text, lang)
	if err != nil {
		if errors.Is(err, translate.ErrUnsupportedLanguage) {
			m.logger.Debug("no speech route", "language", lang)
		} else {
			m.logger.Warn("speech synthesis failed",
				"language", lang, "field", field, "error", err)
		}
		if hasPrev {
			return prevURL
		}
		return ""
	}
	return url
}

func carry(prev string, hasPrev bool, source string) string {
	if hasPrev {
		return prev
	}
	return source
}

// orderActive dedupes, drops unknown names and sorts by registry order.
func orderActive(active []string) []string {
	seen := make(map[string]bool, len(active))
	out := make([]string, 0, len(active))
	for _, a := range active {
		n := language.Normalize(a)
		if seen[n] || !language.IsKnown(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return language.Index(out[i]) < language.Index(out[j])
	})
	return out
}
