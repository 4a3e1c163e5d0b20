// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXHIBIT_JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/exhibit.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/exhibit.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.TranslationBackend != "google" {
		t.Errorf("TranslationBackend = %q, want google", cfg.TranslationBackend)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.ResetCodeTTL != 15*time.Minute {
		t.Errorf("ResetCodeTTL = %v, want 15m", cfg.ResetCodeTTL)
	}
	if cfg.CaptchaMinScore != 0.5 {
		t.Errorf("CaptchaMinScore = %v, want 0.5", cfg.CaptchaMinScore)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.UseRedisCache() || cfg.CaptchaEnabled() || cfg.GeoIPEnabled() || cfg.SMTPEnabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXHIBIT_JWT_SECRET", testSecret)
	setEnv(t, "EXHIBIT_SERVER_HOST", "0.0.0.0")
	setEnv(t, "EXHIBIT_SERVER_PORT", "3000")
	setEnv(t, "EXHIBIT_TRANSLATION_BACKEND", "openai")
	setEnv(t, "EXHIBIT_PROVIDER_TIMEOUT", "5s")
	setEnv(t, "EXHIBIT_CORS_ORIGINS", "https://a.example,https://b.example")
	setEnv(t, "EXHIBIT_SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.TranslationBackend != "openai" {
		t.Errorf("TranslationBackend = %q, want openai", cfg.TranslationBackend)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v, want 5s", cfg.ProviderTimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
	if !cfg.SMTPEnabled() {
		t.Error("SMTPEnabled() = false, want true")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing EXHIBIT_JWT_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXHIBIT_JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	for _, weak := range knownWeakSecrets {
		os.Clearenv()
		setEnv(t, "EXHIBIT_JWT_SECRET", weak)
		if _, err := Load(); err == nil {
			t.Errorf("expected error for weak secret %q", weak)
		}
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXHIBIT_JWT_SECRET", testSecret)
	setEnv(t, "EXHIBIT_TRANSLATION_BACKEND", "deepl")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown translation backend")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcABC123", true},
		{"abc123!!!", true},
		{"ABCDEF", false},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.in); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
