// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EXHIBIT_DB_PATH" envDefault:"./data/exhibit.db"`
	JWTSecret  string `env:"EXHIBIT_JWT_SECRET,required"`
	ServerHost string `env:"EXHIBIT_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EXHIBIT_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"EXHIBIT_ENV" envDefault:"development"`
	LogLevel   string `env:"EXHIBIT_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"EXHIBIT_UPLOADS_DIR" envDefault:"./uploads"`

	// AdminPassword is the password of the super admin created on an empty
	// database. A random one is generated and logged when unset.
	AdminPassword string `env:"EXHIBIT_ADMIN_PASSWORD"`

	// Public URLs
	PublicBaseURL    string   `env:"EXHIBIT_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"` // Base for uploaded asset URLs
	PanelFrontendURL string   `env:"EXHIBIT_PANEL_FRONTEND_URL" envDefault:"http://localhost:3000"`
	PWAURL           string   `env:"EXHIBIT_PWA_URL" envDefault:"http://localhost:3001"`
	ProxyURL         string   `env:"EXHIBIT_PROXY_URL" envDefault:"http://localhost:8080/api/redirect"` // Target prefix encoded in landing QR codes
	CORSOrigins      []string `env:"EXHIBIT_CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Cache configuration
	RedisURL     string `env:"EXHIBIT_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"EXHIBIT_CACHE_PREFIX" envDefault:"exhibit:"` // Redis key prefix
	CacheTTL     int    `env:"EXHIBIT_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"EXHIBIT_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Captcha configuration
	CaptchaProvider  string  `env:"EXHIBIT_CAPTCHA_PROVIDER" envDefault:"recaptcha"` // recaptcha or hcaptcha
	CaptchaSecretKey string  `env:"EXHIBIT_CAPTCHA_SECRET_KEY"`
	CaptchaMinScore  float64 `env:"EXHIBIT_CAPTCHA_MIN_SCORE" envDefault:"0.5"`

	// Translation and speech providers
	TranslationBackend  string        `env:"EXHIBIT_TRANSLATION_BACKEND" envDefault:"google"` // google or openai
	GoogleAPIKey        string        `env:"EXHIBIT_GOOGLE_API_KEY"`
	SarvamAPIKey        string        `env:"EXHIBIT_SARVAM_API_KEY"`
	OpenAIAPIKey        string        `env:"EXHIBIT_OPENAI_API_KEY"`
	OpenAIModel         string        `env:"EXHIBIT_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ProviderTimeout     time.Duration `env:"EXHIBIT_PROVIDER_TIMEOUT" envDefault:"20s"`
	LocalizeConcurrency int           `env:"EXHIBIT_LOCALIZE_CONCURRENCY" envDefault:"4"`

	// SMTP configuration
	SMTPHost     string `env:"EXHIBIT_SMTP_HOST"`
	SMTPPort     int    `env:"EXHIBIT_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"EXHIBIT_SMTP_USERNAME"`
	SMTPPassword string `env:"EXHIBIT_SMTP_PASSWORD"`
	SMTPFrom     string `env:"EXHIBIT_SMTP_FROM" envDefault:"no-reply@localhost"`

	// GeoIP configuration
	GeoIPDBPath string `env:"EXHIBIT_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Credentials and retention
	TokenTTL              time.Duration `env:"EXHIBIT_TOKEN_TTL" envDefault:"2h"`
	ResetCodeTTL          time.Duration `env:"EXHIBIT_RESET_CODE_TTL" envDefault:"15m"`
	ActivityRetentionDays int           `env:"EXHIBIT_ACTIVITY_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CaptchaEnabled returns true if a captcha secret is configured.
func (c Config) CaptchaEnabled() bool {
	return c.CaptchaSecretKey != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// SMTPEnabled returns true if outgoing mail is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("EXHIBIT_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("EXHIBIT_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("EXHIBIT_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.TranslationBackend {
	case "google", "openai":
	default:
		return nil, fmt.Errorf("EXHIBIT_TRANSLATION_BACKEND must be google or openai, got %q", cfg.TranslationBackend)
	}

	switch cfg.CaptchaProvider {
	case "recaptcha", "hcaptcha":
	default:
		return nil, fmt.Errorf("EXHIBIT_CAPTCHA_PROVIDER must be recaptcha or hcaptcha, got %q", cfg.CaptchaProvider)
	}

	if cfg.LocalizeConcurrency < 1 {
		cfg.LocalizeConcurrency = 1
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
