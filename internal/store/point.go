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

// PointStore handles post point (step) persistence.
type PointStore struct {
	db *sql.DB
}

// NewPointStore returns a new PointStore.
func NewPointStore(db *sql.DB) *PointStore {
	return &PointStore{db: db}
}

const pointColumns = `id, post_id, position, header, text, image, created_at, updated_at`

func scanPoint(row scanner) (*models.PostPoint, error) {
	pt := &models.PostPoint{}
	err := row.Scan(
		&pt.ID, &pt.PostID, &pt.Position, &pt.Header, &pt.Text,
		&pt.Image, &pt.CreatedAt, &pt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pt, nil
}

// Create appends a point after the post's current last point.
func (s *PointStore) Create(ctx context.Context, pt *models.PostPoint) (*models.PostPoint, error) {
	created, err := scanPoint(s.db.QueryRowContext(ctx, `
		INSERT INTO post_points (post_id, position, header, text, image)
		VALUES ($1,
		        (SELECT COALESCE(MAX(position), 0) + 1 FROM post_points WHERE post_id = $1),
		        $2, $3, $4)
		RETURNING `+pointColumns,
		pt.PostID, pt.Header, pt.Text, pt.Image,
	))
	if err != nil {
		return nil, fmt.Errorf("create point: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single point.
func (s *PointStore) FindByID(ctx context.Context, id uuid.UUID) (*models.PostPoint, error) {
	pt, err := scanPoint(s.db.QueryRowContext(ctx,
		`SELECT `+pointColumns+` FROM post_points WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundIfNoRows(err, "find point by id")
	}
	return pt, nil
}

// ListByPost returns a post's points in display order.
func (s *PointStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.PostPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pointColumns+` FROM post_points WHERE post_id = $1 ORDER BY position, created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()

	var points []models.PostPoint
	for rows.Next() {
		pt, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, *pt)
	}
	return points, rows.Err()
}

// Update writes header, text and image. Position is left untouched.
func (s *PointStore) Update(ctx context.Context, pt *models.PostPoint) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE post_points SET header = $1, text = $2, image = $3, updated_at = NOW()
		WHERE id = $4
	`, pt.Header, pt.Text, pt.Image, pt.ID)
	if err != nil {
		return fmt.Errorf("update point: %w", err)
	}
	return requireAffected(res, "update point")
}

// Delete removes a point.
func (s *PointStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM post_points WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return requireAffected(res, "delete point")
}
