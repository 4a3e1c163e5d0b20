// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/exhibit-cms/internal/language"
	"github.com/olegiv/exhibit-cms/internal/localize"
)

var strictPolicy = bluemonday.StrictPolicy()

// maxCleanPasses bounds how many layers of entity encoding are peeled off.
const maxCleanPasses = 4

// cleanText strips markup from user text and stores it decoded. Entities are
// decoded before stripping so encoded markup is removed too; text that is
// still not stable after maxCleanPasses stays escaped.
func cleanText(s string) string {
	for range maxCleanPasses {
		next := html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(s)))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

func cleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := cleanText(*p)
	return &v
}

// cleanOverrides sanitizes per-language overrides and rejects unknown languages.
func cleanOverrides(in map[string]localize.Override) (map[string]localize.Override, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]localize.Override, len(in))
	var unknown, duplicate []string
	for lang, ov := range in {
		if !language.IsKnown(lang) {
			unknown = append(unknown, lang)
			continue
		}
		key := language.Normalize(lang)
		if _, dup := out[key]; dup {
			duplicate = append(duplicate, key)
			continue
		}
		out[key] = localize.Override{
			Title:       cleanPtr(ov.Title),
			Description: cleanPtr(ov.Description),
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, invalid("translations", "unknown language: "+strings.Join(unknown, ", "))
	}
	if len(duplicate) > 0 {
		sort.Strings(duplicate)
		return nil, invalid("translations", "duplicate language: "+strings.Join(duplicate, ", "))
	}
	return out, nil
}

func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeStrings(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}
