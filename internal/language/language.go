// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package language holds the fixed registry of languages a client can enable
// and the per-client activation flags built on top of it.
package language

import (
	"fmt"
	"sort"
	"strings"

	xlang "golang.org/x/text/language"
)

// English is the default language and the language of canonical source text.
const English = "english"

// Language is a registry entry. Tag is the zero tag for custom slots that have
// no standard language behind them.
type Language struct {
	Name   string
	Native string
	Tag    xlang.Tag
	Custom bool
}

// Code returns the ISO 639-1 code, or "" for custom slots.
func (l Language) Code() string {
	if l.Custom {
		return ""
	}
	base, conf := l.Tag.Base()
	if conf == xlang.No {
		return ""
	}
	return base.String()
}

// registry order is the order in which translations are emitted.
var registry = []Language{
	{Name: English, Native: "English", Tag: xlang.English},
	{Name: "hindi", Native: "हिन्दी", Tag: xlang.Hindi},
	{Name: "odia", Native: "ଓଡ଼ିଆ", Tag: xlang.MustParse("or")},
	{Name: "bengali", Native: "বাংলা", Tag: xlang.Bengali},
	{Name: "telugu", Native: "తెలుగు", Tag: xlang.Telugu},
	{Name: "tamil", Native: "தமிழ்", Tag: xlang.Tamil},
	{Name: "malayalam", Native: "മലയാളം", Tag: xlang.Malayalam},
	{Name: "kannada", Native: "ಕನ್ನಡ", Tag: xlang.Kannada},
	{Name: "marathi", Native: "मराठी", Tag: xlang.Marathi},
	{Name: "gujarati", Native: "ગુજરાતી", Tag: xlang.Gujarati},
	{Name: "marwadi", Native: "मारवाड़ी", Tag: xlang.MustParse("mwr")},
	{Name: "punjabi", Native: "ਪੰਜਾਬੀ", Tag: xlang.Punjabi},
	{Name: "thai", Native: "ไทย", Tag: xlang.Thai},
	{Name: "l1", Native: "L1", Custom: true},
	{Name: "l2", Native: "L2", Custom: true},
}

var byName = func() map[string]Language {
	m := make(map[string]Language, len(registry))
	for _, l := range registry {
		m[l.Name] = l
	}
	return m
}()

// All returns every registry language in registry order.
func All() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

// Names returns the registry names in order.
func Names() []string {
	out := make([]string, len(registry))
	for i, l := range registry {
		out[i] = l.Name
	}
	return out
}

// Normalize lower-cases and trims a language name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds a language by name, ignoring case and surrounding space.
func Lookup(name string) (Language, bool) {
	l, ok := byName[Normalize(name)]
	return l, ok
}

// IsKnown reports whether name is in the registry.
func IsKnown(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Index returns the registry position of name, or -1.
func Index(name string) int {
	n := Normalize(name)
	for i, l := range registry {
		if l.Name == n {
			return i
		}
	}
	return -1
}

// UnknownLanguageError reports names that are not in the registry.
type UnknownLanguageError struct {
	Names []string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language(s): %s", strings.Join(e.Names, ", "))
}

// Flags maps a language name to 0 or 1. Missing names are inactive, except
// english which defaults to active when the map carries no entry for it.
type Flags map[string]int

// Active returns the enabled language names in registry order.
func (f Flags) Active() []string {
	var out []string
	for _, l := range registry {
		v, ok := f[l.Name]
		if l.Name == English && !ok {
			v = 1
		}
		if v == 1 {
			out = append(out, l.Name)
		}
	}
	return out
}

// IsActive reports whether name is enabled.
func (f Flags) IsActive(name string) bool {
	n := Normalize(name)
	v, ok := f[n]
	if n == English && !ok {
		return true
	}
	return v == 1
}

// Validate rejects unknown names and values other than 0 or 1.
func (f Flags) Validate() error {
	var unknown []string
	for name, v := range f {
		if !IsKnown(name) {
			unknown = append(unknown, name)
			continue
		}
		if v != 0 && v != 1 {
			return fmt.Errorf("language %s: flag must be 0 or 1, got %d", name, v)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownLanguageError{Names: unknown}
	}
	return nil
}

// Merge returns a copy of f with patch applied on top.
func (f Flags) Merge(patch Flags) Flags {
	out := make(Flags, len(f)+len(patch))
	for k, v := range f {
		out[Normalize(k)] = v
	}
	for k, v := range patch {
		out[Normalize(k)] = v
	}
	return out
}

// Complete returns flags with an explicit entry for every registry language.
func (f Flags) Complete() Flags {
	out := make(Flags, len(registry))
	for _, l := range registry {
		if f.IsActive(l.Name) {
			out[l.Name] = 1
		} else {
			out[l.Name] = 0
		}
	}
	return out
}

// FlagsFromSelection builds flags with exactly the selected languages active.
// An empty selection activates english only.
func FlagsFromSelection(selected []string) (Flags, error) {
	f := make(Flags, len(registry))
	for _, l := range registry {
		f[l.Name] = 0
	}

	if len(selected) == 0 {
		f[English] = 1
		return f, nil
	}

	var unknown []string
	for _, name := range selected {
		n := Normalize(name)
		if !IsKnown(n) {
			unknown = append(unknown, name)
			continue
		}
		f[n] = 1
	}
	if len(unknown) > 0 {
		return nil, &UnknownLanguageError{Names: unknown}
	}
	return f, nil
}
