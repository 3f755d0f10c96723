// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"myblog/internal/models"
	"myblog/internal/store"
)

// AddPoint appends a point to a post the actor authored. A missing post
// is ErrNotFound.
func (s *Service) AddPoint(ctx context.Context, actor Actor, postID uuid.UUID, in models.PointInput) (*models.PostPoint, error) {
	if _, err := s.OwnPost(ctx, actor, postID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	pt := &models.PostPoint{PostID: postID}
	applyPointInput(pt, in)
	return s.points.Create(ctx, pt)
}

// GetPoint returns a point of a post the actor authored.
func (s *Service) GetPoint(ctx context.Context, actor Actor, pointID uuid.UUID) (*models.PostPoint, error) {
	pt, err := s.points.FindByID(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if _, err := s.OwnPost(ctx, actor, pt.PostID); err != nil {
		return nil, err
	}
	return pt, nil
}

// UpdatePoint rewrites a point's header, text and image.
func (s *Service) UpdatePoint(ctx context.Context, actor Actor, pointID uuid.UUID, in models.PointInput) (*models.PostPoint, error) {
	pt, err := s.GetPoint(ctx, actor, pointID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	applyPointInput(pt, in)
	if err := s.points.Update(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// DeletePoint removes a point. A point that is already gone counts as
// deleted. The returned post id is uuid.Nil in that case.
func (s *Service) DeletePoint(ctx context.Context, actor Actor, pointID uuid.UUID) (uuid.UUID, error) {
	pt, err := s.GetPoint(ctx, actor, pointID)
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.points.Delete(ctx, pointID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, err
	}
	return pt.PostID, nil
}

// ListPoints returns a post's points in display order.
func (s *Service) ListPoints(ctx context.Context, postID uuid.UUID) ([]models.PostPoint, error) {
	return s.points.ListByPost(ctx, postID)
}

func applyPointInput(pt *models.PostPoint, in models.PointInput) {
	pt.Header = strings.TrimSpace(in.Header)
	if pt.Header == "" {
		pt.Header = models.DefaultPointHeader
	}
	pt.Text = in.Text
	if in.Image != nil {
		pt.Image = in.Image
	}
}
