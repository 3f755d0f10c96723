// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"myblog/internal/database"
	"myblog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching the development setup.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "myblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "myblog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// unique returns a short random suffix so parallel runs against the same
// database do not collide on usernames, slugs or tags.
func unique() string {
	return uuid.NewString()[:8]
}

// newTestUser creates a throwaway author. Deleting the user at cleanup
// cascades to everything they authored.
func newTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), models.SignUpInput{
		Username: "test-" + unique(),
		Email:    "author@store-test.local",
		Password: "testpass123",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// newTestPost inserts a post with a slug derived from title.
func newTestPost(t *testing.T, db *sql.DB, author *models.User, title string, status models.PostStatus, publish time.Time) *models.Post {
	t.Helper()
	p, err := NewPostStore(db).Create(context.Background(), &models.Post{
		Title:            title,
		Slug:             "slug-" + unique(),
		AuthorID:         author.ID,
		ShortDescription: "description of " + title,
		Image:            "product_images/test.jpg",
		Publish:          publish,
		Status:           status,
	}, nil)
	if err != nil {
		t.Fatalf("create test post %q: %v", title, err)
	}
	return p
}

// cleanTags removes test tags by slug. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, sl := range slugs {
		db.Exec("DELETE FROM tags WHERE slug = $1", sl)
	}
}
