// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myblog/internal/blog"
	"myblog/internal/cache"
	"myblog/internal/config"
	"myblog/internal/database"
	"myblog/internal/email"
	"myblog/internal/handlers"
	"myblog/internal/middleware"
	"myblog/internal/render"
	"myblog/internal/router"
	"myblog/internal/session"
	"myblog/internal/storage"
	"myblog/internal/store"
	"myblog/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"base_url", cfg.BaseURL,
	)

	// Connect to PostgreSQL and bring the schema up to date.
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.Connect(startCtx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected", "host", cfg.DBHost, "name", cfg.DBName)

	if err := database.Migrate(startCtx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, rate limits, similar-posts cache).
	valkeyClient, err := cache.ConnectValkey(startCtx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	slog.Info("valkey connected", "host", cfg.ValkeyHost, "port", cfg.ValkeyPort)

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Image storage: S3 when configured, the local media directory otherwise.
	var (
		backend     storage.Backend
		mediaDir    string
		extraImgSrc []string
	)
	if cfg.HasS3() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		backend = s3
		extraImgSrc = append(extraImgSrc, origin(s3.URL("")))
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		disk, err := storage.NewDisk(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			slog.Error("failed to initialize media directory", "error", err)
			os.Exit(1)
		}
		backend = disk
		mediaDir = disk.Root()
		slog.Info("storing images on disk", "root", disk.Root())
	}
	images := storage.NewImages(backend)

	renderer, err := render.New(images)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailer.IsConfigured() {
		slog.Warn("smtp not configured, sharing by e-mail disabled")
	}

	// Initialize data stores and the blog service.
	userStore := store.NewUserStore(db)
	svc := blog.New(blog.Deps{
		Posts:      store.NewPostStore(db),
		Points:     store.NewPointStore(db),
		Comments:   store.NewCommentStore(db),
		Tags:       store.NewTagStore(db),
		Favourites: store.NewFavouriteStore(db),
		Similar:    cache.NewSimilarCache(valkeyClient, cache.DefaultSimilarTTL),
		Mailer:     mailer,
		PerPage:    cfg.PostsPerPage,
		BaseURL:    cfg.BaseURL,
	})

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Public:        handlers.NewPublic(renderer, svc),
		Account:       handlers.NewAccount(renderer, sessionStore, userStore),
		Dashboard:     handlers.NewDashboard(renderer, svc, images),
		LoginLimit:    middleware.NewRateLimiter(valkeyClient, "login", 10, time.Minute),
		SignUpLimit:   middleware.NewRateLimiter(valkeyClient, "sign-up", 5, time.Hour),
		Static:        static,
		Media:         mediaDir,
		SecureCookies: secureCookies,
		ExtraImgSrc:   extraImgSrc,
	})

	// Create the HTTP server with sensible timeouts. Uploads need a longer
	// read timeout than plain form posts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// origin returns the scheme://host part of u for the image CSP.
func origin(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
