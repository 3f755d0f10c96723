// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"myblog/internal/slug"
)

type seedPost struct {
	title       string
	description string
	tags        []string
	points      [][2]string // header, text
}

var seedPosts = []seedPost{
	{
		title:       "Борщ",
		description: "Beetroot soup the way grandmother made it.",
		tags:        []string{"soup", "beetroot"},
		points: [][2]string{
			{"Broth", "Simmer the beef for two hours, skimming the foam."},
			{"Beets", "Grate the beets and stew them with a spoon of vinegar."},
			{"Serve", "Serve with **sour cream** and rye bread."},
		},
	},
	{
		title:       "Солянка",
		description: "Sour and salty soup with three kinds of meat.",
		tags:        []string{"soup"},
		points: [][2]string{
			{"Meat", "Dice the smoked meats and fry them lightly."},
			{"Pickles", "Add pickles, olives and a splash of brine."},
		},
	},
	{
		title:       "Оливье",
		description: "The New Year salad.",
		tags:        []string{"salad"},
		points: [][2]string{
			{"Boil", "Boil potatoes, carrots and eggs."},
			{"Mix", "Dice everything, add peas and dress with mayonnaise."},
		},
	},
}

// Seed populates the database with initial development data: a demo
// author and a few published posts. It does nothing if any user exists.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var authorID string
	err = tx.QueryRow(`
		INSERT INTO users (username, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "demo", "demo@myblog.local", "Demo", "Author", string(hash)).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	publish := time.Now().UTC()
	for i, sp := range seedPosts {
		// One minute apart so the listing order is stable.
		at := publish.Add(-time.Duration(i) * time.Minute)
		if err := seedOne(tx, authorID, at, sp); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo author",
		"username", "demo",
		"password", "demo-password",
		"posts", len(seedPosts),
	)
	return nil
}

func seedOne(tx *sql.Tx, authorID string, at time.Time, sp seedPost) error {
	postSlug := slug.Generate(sp.title)

	var postID string
	err := tx.QueryRow(`
		INSERT INTO posts (title, slug, author_id, short_description, image, publish, publish_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'published')
		RETURNING id
	`, sp.title, postSlug, authorID, sp.description,
		"product_images/"+postSlug+".jpg", at, at.Format(time.DateOnly),
	).Scan(&postID)
	if err != nil {
		return fmt.Errorf("seed insert post %q: %w", sp.title, err)
	}

	for _, name := range sp.tags {
		var tagID string
		err := tx.QueryRow(`
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, slug.Generate(name)).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID); err != nil {
			return fmt.Errorf("seed tag post %q: %w", sp.title, err)
		}
	}

	for i, pt := range sp.points {
		_, err := tx.Exec(`
			INSERT INTO post_points (post_id, position, header, text)
			VALUES ($1, $2, $3, $4)
		`, postID, i+1, pt[0], pt[1])
		if err != nil {
			return fmt.Errorf("seed insert point: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO comments (post_id, name, email, body)
		VALUES ($1, $2, $3, $4)
	`, postID, "Ivan", "ivan@example.com", "Made it last weekend, delicious.")
	if err != nil {
		return fmt.Errorf("seed insert comment: %w", err)
	}
	return nil
}
