package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safebox/gallery/internal/auth"
	"github.com/safebox/gallery/internal/handler"
	"github.com/safebox/gallery/internal/infra"
	"github.com/safebox/gallery/internal/provider"
	"github.com/safebox/gallery/internal/repository"
	"github.com/safebox/gallery/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	sessionExpiry, err := time.ParseDuration(cfg.SessionExpiry)
	if err != nil {
		return fmt.Errorf("parse session expiry: %w", err)
	}

	// Connect to Postgres and apply migrations
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Event publisher (no-op unless enabled)
	events := infra.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaEnabled, logger)
	defer events.Close()

	// Repositories
	adminRepo := repository.NewPgAdminRepository()
	videoRepo := repository.NewPgVideoRepository()

	// Services
	sessions := auth.NewSessionManager(cfg.SessionSecret, sessionExpiry)
	authSvc := service.NewAuthService(pool, adminRepo, sessions, logger)
	catalogSvc := service.NewCatalogService(pool, videoRepo, events, logger)

	// Bootstrap: create the default admin if absent (idempotent)
	if err := authSvc.EnsureDefaultAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword, cfg.DefaultAdminName); err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}

	// External providers
	metadataFetcher := provider.NewMetadataFetcher(logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, sessions)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	publicHandler := handler.NewPublicHandler(catalogSvc)
	metadataHandler := handler.NewMetadataHandler(metadataFetcher)
	uploadHandler, err := handler.NewUploadHandler(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("init upload dir: %w", err)
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(cfg.CORSAllowedOrigins))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Uploaded files (no auth, no JSON content-type)
	r.Get("/api/uploads/{filename}", uploadHandler.Serve)

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Auth routes (no session required)
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/check", authHandler.Check)

			// Session-protected account routes
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate(sessions, authSvc))
				r.Get("/me", authHandler.Me)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Put("/password", authHandler.ChangePassword)
			})
		})

		// Public read view
		r.Get("/api/videos", publicHandler.List)
		r.Get("/api/videos/{id}", publicHandler.Get)

		// Link metadata helper
		r.Post("/api/utils/metadata", metadataHandler.Fetch)

		// Admin-authenticated catalog mutation routes
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(auth.Authenticate(sessions, authSvc))

			r.Route("/videos", func(r chi.Router) {
				r.Post("/", catalogHandler.Create)
				r.Get("/", catalogHandler.List)
				r.Get("/{id}", catalogHandler.Get)
				r.Put("/{id}", catalogHandler.Update)
				r.Delete("/{id}", catalogHandler.Delete)
			})

			r.Post("/upload", uploadHandler.Upload)
		})
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
