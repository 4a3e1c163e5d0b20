// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package captcha verifies login captcha tokens against reCAPTCHA or hCaptcha.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderReCAPTCHA = "recaptcha"
	ProviderHCaptcha  = "hcaptcha"
)

const (
	recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	hcaptchaVerifyURL  = "https://api.hcaptcha.com/siteverify"
	verifyTimeout      = 10 * time.Second
)

var (
	// ErrMissingToken is returned when the request carried no captcha token.
	ErrMissingToken = errors.New("missing captcha token")
	// ErrFailed is returned when the provider rejected the token.
	ErrFailed = errors.New("failed captcha verification")
)

// verifyResponse covers both providers' siteverify replies.
type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"` // reCAPTCHA v3 only
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Options configures a Verifier.
type Options struct {
	Provider  string
	SecretKey string
	MinScore  float64
	Endpoint  string // overrides the provider's siteverify URL
	Client    *http.Client
	Logger    *slog.Logger
}

// Verifier checks captcha tokens. A Verifier without a secret accepts everything.
type Verifier struct {
	secret   string
	minScore float64
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Verifier.
func New(opts Options) *Verifier {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = recaptchaVerifyURL
		if opts.Provider == ProviderHCaptcha {
			endpoint = hcaptchaVerifyURL
		}
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: verifyTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		secret:   opts.SecretKey,
		minScore: opts.MinScore,
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Enabled reports whether tokens are actually checked.
func (v *Verifier) Enabled() bool {
	return v != nil && v.secret != ""
}

// Verify checks token with the provider.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return ErrMissingToken
	}

	data := url.Values{}
	data.Set("secret", v.secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("building captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse captcha response: %w", err)
	}

	if !result.Success {
		v.logger.Warn("captcha verification failed",
			"error_codes", result.ErrorCodes,
			"remote_ip", remoteIP,
		)
		return ErrFailed
	}
	if result.Score != nil && *result.Score < v.minScore {
		v.logger.Warn("captcha score below threshold",
			"score", *result.Score,
			"min_score", v.minScore,
			"remote_ip", remoteIP,
		)
		return ErrFailed
	}
	return nil
}
