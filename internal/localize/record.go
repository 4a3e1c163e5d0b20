// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localize

import (
	"encoding/json"
	"fmt"

	"github.com/olegiv/exhibit-cms/internal/language"
)

// AudioURLs holds narrated versions of a record's text. Empty means none.
type AudioURLs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Record is one language's rendering of an item.
type Record struct {
	Language    string    `json:"language"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AudioURLs   AudioURLs `json:"audioUrls"`
}

// Decode parses a stored translation list. Empty input is an empty list.
func Decode(s string) ([]Record, error) {
	if s == "" {
		return []Record{}, nil
	}
	var out []Record
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding translations: %w", err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// Encode serializes a translation list for storage.
func Encode(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding translations: %w", err)
	}
	return string(b), nil
}

// Find returns the first record for lang.
func Find(records []Record, lang string) (Record, bool) {
	n := language.Normalize(lang)
	for _, r := range records {
		if language.Normalize(r.Language) == n {
			return r, true
		}
	}
	return Record{}, false
}

func index(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		n := language.Normalize(r.Language)
		if _, dup := m[n]; !dup {
			m[n] = r
		}
	}
	return m
}
