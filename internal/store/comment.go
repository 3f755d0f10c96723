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

// CommentStore persists comments. Comments are hidden, never deleted.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, name, email, body, active, created_at, updated_at`

func scanComment(row scanner) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(
		&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts an active comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	created, err := scanComment(s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, name, email, body, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING `+commentColumns,
		c.PostID, c.Name, c.Email, c.Body,
	))
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// FindByID retrieves a comment regardless of its active flag.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundIfNoRows(err, "find comment by id")
	}
	return c, nil
}

// ListActive returns a post's visible comments, oldest first.
func (s *CommentStore) ListActive(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.list(ctx, `WHERE post_id = $1 AND active`, postID)
}

// ListAll returns every comment of a post including hidden ones, oldest first.
func (s *CommentStore) ListAll(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.list(ctx, `WHERE post_id = $1`, postID)
}

func (s *CommentStore) list(ctx context.Context, where string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// SetActive flips the moderation flag.
func (s *CommentStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set comment active: %w", err)
	}
	return requireAffected(res, "set comment active")
}
