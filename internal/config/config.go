// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultPostsPerPage matches the listing page size of the public blog.
const DefaultPostsPerPage = 3

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string
	Port    string
	Env     string // "development", "production", "testing"
	BaseURL string // absolute site URL used in shared links

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Local image storage, used when S3 is not configured.
	MediaRoot string
	MediaURL  string

	// S3-compatible object storage (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Outgoing mail for post sharing (optional)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	PostsPerPage int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host:    envOrDefault("APP_HOST", "0.0.0.0"),
		Port:    envOrDefault("APP_PORT", "8080"),
		Env:     envOrDefault("APP_ENV", "development"),
		BaseURL: strings.TrimRight(envOrDefault("APP_BASE_URL", "http://localhost:8080"), "/"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "myblog"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "myblog"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		MediaRoot: envOrDefault("MEDIA_ROOT", "media"),
		MediaURL:  strings.TrimRight(envOrDefault("MEDIA_URL", "/media"), "/"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "myblog-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envOrDefault("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     envOrDefault("SMTP_FROM", "admin@myblog.com"),
		SMTPFromName: os.Getenv("SMTP_FROM_NAME"),

		PostsPerPage: DefaultPostsPerPage,
	}

	if v := os.Getenv("POSTS_PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("POSTS_PER_PAGE must be a positive integer, got %q", v)
		}
		cfg.PostsPerPage = n
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasS3 reports whether object storage credentials are configured.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
