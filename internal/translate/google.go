// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGoogleTranslateURL = "https://translation.googleapis.com/language/translate/v2"
	defaultGoogleSpeechURL    = "https://texttospeech.googleapis.com/v1/text:synthesize"

	maxErrorBody = 512
)

// GoogleTranslator calls the Cloud Translation v2 REST API.
type GoogleTranslator struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleTranslator creates a translator. An empty endpoint uses the public API.
func NewGoogleTranslator(apiKey, endpoint string, client *http.Client) *GoogleTranslator {
	if endpoint == "" {
		endpoint = defaultGoogleTranslateURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleTranslator{apiKey: apiKey, endpoint: endpoint, client: client}
}

type googleTranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate translates English text into the target code.
func (g *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("target", target)
	form.Set("source", "en")
	form.Set("format", "text")
	form.Set("model", "nmt")
	form.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out googleTranslateResponse
	if err := doJSON(g.client, req, &out); err != nil {
		return "", err
	}
	if len(out.Data.Translations) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	return out.Data.Translations[0].TranslatedText, nil
}

// GoogleSpeech calls the Cloud Text-to-Speech REST API and returns MP3 audio.
type GoogleSpeech struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleSpeech creates a synthesizer. An empty endpoint uses the public API.
func NewGoogleSpeech(apiKey, endpoint string, client *http.Client) *GoogleSpeech {
	if endpoint == "" {
		endpoint = defaultGoogleSpeechURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleSpeech{apiKey: apiKey, endpoint: endpoint, client: client}
}

type googleSpeechRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

// Synthesize implements Synthesizer.
func (g *GoogleSpeech) Synthesize(ctx context.Context, text, code string) (Audio, error) {
	var body googleSpeechRequest
	body.Input.Text = text
	body.Voice.LanguageCode = code
	body.Voice.SSMLGender = "NEUTRAL"
	body.AudioConfig.AudioEncoding = "MP3"

	payload, err := json.Marshal(body)
	if err != nil {
		return Audio{}, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := g.endpoint + "?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		AudioContent string `json:"audioContent"`
	}
	if err := doJSON(g.client, req, &out); err != nil {
		return Audio{}, err
	}

	data, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return Audio{}, fmt.Errorf("decoding audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("empty audio content")
	}
	return Audio{Data: data, Ext: ".mp3"}, nil
}

// doJSON sends req and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
