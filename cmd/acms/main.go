// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/acmeinc/acms/internal/cache"
	"github.com/acmeinc/acms/internal/config"
	"github.com/acmeinc/acms/internal/handler"
	"github.com/acmeinc/acms/internal/middleware"
	"github.com/acmeinc/acms/internal/render"
	"github.com/acmeinc/acms/internal/service"
	"github.com/acmeinc/acms/internal/session"
	"github.com/acmeinc/acms/internal/store"
	"github.com/acmeinc/acms/internal/version"
	"github.com/acmeinc/acms/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "acms - Acme Inc website and admin dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_DB_PATH           SQLite database path (default: ./data/acms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_ADMIN_EMAIL       Designated admin account (default: admin@acmeinc.com)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACMS_REDIS_URL         Redis URL for the shared content cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("acms %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

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
	slog.Info("database ready")

	ctx := context.Background()

	// Seed default website content
	if err := store.SeedContent(ctx, db); err != nil {
		return fmt.Errorf("seeding website content: %w", err)
	}
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.AdminEmail); err != nil {
			return fmt.Errorf("seeding admin account: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize content cache (Redis when configured, in-process otherwise)
	cacheConfig := cache.DefaultConfig()
	cacheConfig.RedisURL = cfg.RedisURL
	cacheConfig.Prefix = cfg.CachePrefix
	cacheConfig.DefaultTTL = time.Duration(cfg.CacheTTL) * time.Second
	cacher, err := cache.New(cacheConfig)
	if err != nil {
		slog.Warn("cache backend unavailable, using in-process cache", "error", err)
		cacher = cache.NewSimpleMemoryCache(cacheConfig.DefaultTTL)
	}
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "prefix", cfg.CachePrefix)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Initialize domain services
	authService := service.NewAuthService(db, sessionManager, cfg.AdminEmail)
	contentService := service.NewContentService(db, cacher)
	if err := contentService.Load(ctx); err != nil {
		slog.Warn("loading website content failed, serving built-in defaults", "error", err)
	}
	inboxService := service.NewInboxService(db)
	if err := inboxService.Refresh(ctx); err != nil {
		slog.Warn("loading contact messages failed, inbox starts empty", "error", err)
	}

	authService.Subscribe(func(change service.Change) {
		slog.Debug("session change", "type", change.Type, "user_id", change.UserID)
	})

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Login protection: per-IP rate limit plus account lockout
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Lighter per-IP limiter for the public contact form
	contactRateLimiter := middleware.NewIPRateLimiter(1.0, 5)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, renderer, sessionManager, loginProtection)
	frontendHandler := handler.NewFrontendHandler(contentService, inboxService, renderer)
	dashboardHandler := handler.NewDashboardHandler(contentService, inboxService, renderer)
	messagesHandler := handler.NewMessagesHandler(inboxService, renderer)
	healthHandler := handler.NewHealthHandler(db)

	// Create router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Health check
	r.Get(handler.RouteHealth, healthHandler.Health)

	// Public frontend
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.With(contactRateLimiter.Middleware()).Post(handler.RouteContact, frontendHandler.ContactSubmit)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin dashboard (session + admin guard)
	r.Route(handler.RouteDashboard, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin(sessionManager, authService))

		r.Get("/", dashboardHandler.Dashboard)
		r.Get(handler.RoutePages, dashboardHandler.Pages)
		r.Get(handler.RouteContentSection, dashboardHandler.ContentForm)
		r.Post(handler.RouteContentSection, dashboardHandler.ContentUpdate)
		r.Get(handler.RouteMessages, messagesHandler.List)
		r.Post(handler.RouteMessageRead, messagesHandler.ToggleRead)
		r.Post(handler.RouteMessageDelete, messagesHandler.Delete)
	})

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// 404 for everything else
	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
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

	// Let in-flight admin re-resolutions finish before the DB closes.
	authService.Wait()

	slog.Info("server stopped")
	return nil
}
