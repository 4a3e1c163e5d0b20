// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"github.com/olegiv/exhibit-cms/internal/language"
)

// Speech services.
const (
	ServiceGoogle = "google"
	ServiceSarvam = "sarvam"
)

// Route names the speech service for a language and the code it expects.
type Route struct {
	Service string
	Code    string
}

// googleSpeechLanguages are synthesized by Google with their ISO 639-1 code.
var googleSpeechLanguages = map[string]bool{
	"hindi":     true,
	"bengali":   true,
	"gujarati":  true,
	"kannada":   true,
	"malayalam": true,
	"tamil":     true,
	"telugu":    true,
	"english":   true,
}

// sarvamCodes is the fallback table for Indian languages Google does not voice.
var sarvamCodes = map[string]string{
	"bengali":   "bn-IN",
	"english":   "en-IN",
	"gujarati":  "gu-IN",
	"hindi":     "hi-IN",
	"kannada":   "kn-IN",
	"malayalam": "ml-IN",
	"marathi":   "mr-IN",
	"odia":      "od-IN",
	"punjabi":   "pa-IN",
	"tamil":     "ta-IN",
	"telugu":    "te-IN",
}

// translationCodes overrides the registry code for machine translation.
// Marwadi has no translation model and falls back to Hindi.
var translationCodes = map[string]string{
	"punjabi": "pa",
	"marwadi": "hi",
	"odia":    "or",
	"bengali": "bn",
}

// Resolve picks the speech service for a language. Google is preferred;
// Sarvam covers the remaining Indian languages.
func Resolve(name string) (Route, error) {
	n := language.Normalize(name)

	if googleSpeechLanguages[n] {
		if l, ok := language.Lookup(n); ok && l.Code() != "" {
			return Route{Service: ServiceGoogle, Code: l.Code()}, nil
		}
	}
	if code, ok := sarvamCodes[n]; ok {
		return Route{Service: ServiceSarvam, Code: code}, nil
	}
	return Route{}, &UnsupportedLanguageError{Language: name}
}

// TranslationCode returns the target code passed to the translation backend.
func TranslationCode(name string) (string, error) {
	n := language.Normalize(name)
	if code, ok := translationCodes[n]; ok {
		return code, nil
	}
	if l, ok := language.Lookup(n); ok && l.Code() != "" {
		return l.Code(), nil
	}
	return "", &UnsupportedLanguageError{Language: name}
}
