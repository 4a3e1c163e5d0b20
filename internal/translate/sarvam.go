// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultSarvamURL = "https://api.sarvam.ai/text-to-speech"

// SarvamSpeech calls the Sarvam text-to-speech API for Indian languages.
type SarvamSpeech struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSarvamSpeech creates a synthesizer. An empty endpoint uses the public API.
func NewSarvamSpeech(apiKey, endpoint string, client *http.Client) *SarvamSpeech {
	if endpoint == "" {
		endpoint = defaultSarvamURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SarvamSpeech{apiKey: apiKey, endpoint: endpoint, client: client}
}

// Synthesize implements Synthesizer.
func (s *SarvamSpeech) Synthesize(ctx context.Context, text, code string) (Audio, error) {
	payload, err := json.Marshal(map[string]string{
		"text":                 text,
		"target_language_code": code,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", s.apiKey)

	var out struct {
		Audios []string `json:"audios"`
	}
	if err := doJSON(s.client, req, &out); err != nil {
		return Audio{}, err
	}
	if len(out.Audios) == 0 {
		return Audio{}, fmt.Errorf("no audio in response")
	}

	data, err := base64.StdEncoding.DecodeString(out.Audios[0])
	if err != nil {
		return Audio{}, fmt.Errorf("decoding audio: %w", err)
	}
	return Audio{Data: data, Ext: ".wav"}, nil
}
