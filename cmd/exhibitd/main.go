// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/exhibit-cms/internal/auth"
	"github.com/olegiv/exhibit-cms/internal/cache"
	"github.com/olegiv/exhibit-cms/internal/captcha"
	"github.com/olegiv/exhibit-cms/internal/config"
	"github.com/olegiv/exhibit-cms/internal/geoip"
	"github.com/olegiv/exhibit-cms/internal/handler/api"
	"github.com/olegiv/exhibit-cms/internal/imaging"
	"github.com/olegiv/exhibit-cms/internal/localize"
	"github.com/olegiv/exhibit-cms/internal/logging"
	"github.com/olegiv/exhibit-cms/internal/mail"
	"github.com/olegiv/exhibit-cms/internal/middleware"
	"github.com/olegiv/exhibit-cms/internal/resetcode"
	"github.com/olegiv/exhibit-cms/internal/scheduler"
	"github.com/olegiv/exhibit-cms/internal/service"
	"github.com/olegiv/exhibit-cms/internal/storage"
	"github.com/olegiv/exhibit-cms/internal/store"
	"github.com/olegiv/exhibit-cms/internal/translate"
	"github.com/olegiv/exhibit-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// maxImageDimension bounds the longer side of stored images.
const maxImageDimension = 2048

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "exhibitd - multi-tenant exhibit and kiosk CMS\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_JWT_SECRET            Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_DB_PATH               SQLite database path (default: ./data/exhibit.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_UPLOADS_DIR           Uploaded and generated files (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_TRANSLATION_BACKEND   google|openai (default: google)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_GOOGLE_API_KEY        Google Translate and Text-to-Speech key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_SARVAM_API_KEY        Sarvam text-to-speech key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXHIBIT_REDIS_URL             Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	schema, err := store.SchemaVersion(db)
	if err != nil {
		return err
	}
	slog.Info("database ready", "schema_version", schema)

	// Also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := seedAdmin(ctx, db, cfg.AdminPassword); err != nil {
		return err
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	if cfg.CachePrefix != "" {
		cacheCfg.Prefix = cfg.CachePrefix
	}
	if cfg.CacheTTL > 0 {
		cacheCfg.DefaultTTL = time.Duration(cfg.CacheTTL) * time.Second
	}
	if cfg.CacheMaxSize > 0 {
		cacheCfg.MaxSize = cfg.CacheMaxSize
	}
	cacheRes, err := cache.NewWithInfo(cacheCfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheRes.Cache.Close() }()
	switch {
	case cacheRes.IsFallback:
		slog.Warn("cache initialized", "backend", cacheRes.Backend, "note", "Redis unavailable, using fallback", "error", cacheRes.Err)
	case cacheRes.Backend == cache.BackendRedis:
		slog.Info("cache initialized", "backend", cacheRes.Backend, "url", cache.SanitizeRedisURL(cfg.RedisURL))
	default:
		slog.Info("cache initialized", "backend", cacheRes.Backend)
	}

	uploads, err := storage.NewLocalStore(cfg.UploadsDir, strings.TrimRight(cfg.PublicBaseURL, "/")+"/uploads")
	if err != nil {
		return err
	}

	translator := newTranslateService(cfg, uploads, logger)

	var (
		geo         *geoip.Lookup
		geoReloader scheduler.DatabaseReloader
	)
	if cfg.GeoIPEnabled() {
		geo, err = geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("GeoIP database unavailable, scans will have no country", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			defer func() { _ = geo.Close() }()
			geoReloader = geo
			slog.Info("GeoIP lookup enabled", "path", cfg.GeoIPDBPath)
		}
	}

	var mailer mail.Mailer = mail.LogMailer{Logger: logger}
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		slog.Info("SMTP mailer enabled", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		slog.Warn("SMTP not configured, emails will only be logged")
	}

	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("initializing token manager: %w", err)
	}

	urls := service.URLs{
		PanelFrontend: cfg.PanelFrontendURL,
		PWA:           cfg.PWAURL,
		Proxy:         cfg.ProxyURL,
	}
	accounts := &service.Accounts{
		Tokens: tokens,
		Resets: resetcode.New(cacheRes.Cache, resetcode.Options{TTL: cfg.ResetCodeTTL}),
		Mailer: mailer,
		Captcha: captcha.New(captcha.Options{
			Provider:  cfg.CaptchaProvider,
			SecretKey: cfg.CaptchaSecretKey,
			MinScore:  cfg.CaptchaMinScore,
			Logger:    logger,
		}),
		URLs:   urls,
		Logger: logger,
	}
	if !cfg.CaptchaEnabled() {
		slog.Warn("captcha not configured, logins are not challenged")
	}

	languages := service.NewLanguageCache(store.New(db), cacheRes.Cache, time.Duration(cfg.CacheTTL)*time.Second)
	if cacheRes.Backend == cache.BackendRedis {
		// Redis outlives the process; language sets may predate a restore or migration.
		if err := languages.Reset(ctx); err != nil {
			slog.Warn("failed to reset cached language sets", "error", err)
		}
	}
	merger := localize.NewMerger(translator, cfg.LocalizeConcurrency, logger)
	content := service.NewContentService(db, merger, languages, urls, logger)
	clients := service.NewClientService(db, content, languages, accounts)
	events := service.NewEventService(db, logger)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	apiRateLimiter := middleware.NewGlobalRateLimiter(20, 40)

	apiHandler := api.NewHandler(api.Deps{
		DB:          db,
		Admins:      service.NewAdminService(db, accounts),
		Clients:     clients,
		Content:     content,
		Advertisers: service.NewAdvertiserService(db),
		Redirects:   service.NewRedirectService(db, geo, cfg.IsDevelopment(), logger),
		Events:      events,
		Files:       storage.NewFileSaver(uploads, imaging.NewProcessor(maxImageDimension)),
		Tokens:      tokens,
		Login:       loginProtection,
		Translate:   translator,
		Cache:       cacheRes.Cache,
		UploadsDir:  uploads.Root(),
		Version:     info.Version,
		Logger:      logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead) // HEAD for uptime monitoring

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	securityConfig.ExcludePaths = []string{"/uploads/"}
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(middleware.RequestPath)

	apiHandler.Register(r, api.RouteConfig{
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: apiRateLimiter,
	})
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadsHandler(uploads.Root())))

	jobs := scheduler.New(logger)
	for _, job := range scheduler.MaintenanceJobs(scheduler.MaintenanceConfig{
		Clients:   clients,
		Audit:     events,
		Retention: time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour,
		Limiter:   apiRateLimiter,
		GeoIP:     geoReloader,
		Logger:    logger,
	}) {
		if err := jobs.Add(job); err != nil {
			return fmt.Errorf("registering job: %w", err)
		}
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       2 * time.Minute, // multipart video uploads
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	content.Wait()

	slog.Info("server stopped")
	return nil
}

// seedAdmin creates the default super admin on an empty database.
func seedAdmin(ctx context.Context, db *sql.DB, password string) error {
	generated := password == ""
	if generated {
		var err error
		if password, err = auth.TempPassword(); err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
	}

	count, err := store.New(db).CountAdminUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if err := store.Seed(ctx, db, auth.HashPassword, password); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if count == 0 && generated {
		slog.Info("generated password for the default admin, change it after the first login",
			"email", store.DefaultAdminEmail, "password", password)
	}
	return nil
}

// newTranslateService builds the provider adapter from the configured keys.
// Missing keys leave the matching route disabled, which keeps source text.
func newTranslateService(cfg *config.Config, uploads storage.Uploader, logger *slog.Logger) *translate.Service {
	client := &http.Client{Timeout: cfg.ProviderTimeout}
	opts := translate.Options{
		Uploader:       uploads,
		Timeout:        cfg.ProviderTimeout,
		Logger:         logger,
		TranslatorName: cfg.TranslationBackend,
	}

	switch cfg.TranslationBackend {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			opts.Translator = translate.NewOpenAITranslator(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
		}
	default:
		if cfg.GoogleAPIKey != "" {
			opts.Translator = translate.NewGoogleTranslator(cfg.GoogleAPIKey, "", client)
		}
	}
	if opts.Translator == nil {
		slog.Warn("no translation provider configured, content stays in English", "backend", cfg.TranslationBackend)
	}

	if cfg.GoogleAPIKey != "" {
		opts.Google = translate.NewGoogleSpeech(cfg.GoogleAPIKey, "", client)
	}
	if cfg.SarvamAPIKey != "" {
		opts.Sarvam = translate.NewSarvamSpeech(cfg.SarvamAPIKey, "", client)
	}

	slog.Info("translation service initialized",
		"backend", cfg.TranslationBackend,
		"google_speech", opts.Google != nil,
		"sarvam_speech", opts.Sarvam != nil,
	)
	return translate.NewService(opts)
}

// uploadsHandler serves stored files without directory listings.
func uploadsHandler(root string) http.Handler {
	fileServer := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=2592000")
		fileServer.ServeHTTP(w, r)
	})
}
