// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"myblog/internal/models"
)

// FavouriteStore is the user × post bookmark set.
type FavouriteStore struct {
	db *sql.DB
}

// NewFavouriteStore returns a new FavouriteStore.
func NewFavouriteStore(db *sql.DB) *FavouriteStore {
	return &FavouriteStore{db: db}
}

// Add bookmarks a post for a user. Adding twice is a no-op.
func (s *FavouriteStore) Add(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favourites (user_id, post_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, postID)
	if err != nil {
		return fmt.Errorf("add favourite: %w", err)
	}
	return nil
}

// Remove deletes the bookmark if present.
func (s *FavouriteStore) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favourites WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("remove favourite: %w", err)
	}
	return nil
}

// IsFavourite reports whether the user bookmarked the post.
func (s *FavouriteStore) IsFavourite(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM favourites WHERE user_id = $1 AND post_id = $2)
	`, userID, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favourite: %w", err)
	}
	return exists, nil
}

// ListByUser returns the user's bookmarked posts, most recently added first.
func (s *FavouriteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+postFrom+`
		JOIN favourites f ON f.post_id = p.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	return collectPosts(rows, "list favourites")
}
