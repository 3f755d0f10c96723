// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"

	"github.com/google/uuid"

	"myblog/internal/models"
)

// AddFavourite bookmarks a published post for the actor. Repeated calls
// are no-ops. Drafts are ErrNotFound, as on the detail page.
func (s *Service) AddFavourite(ctx context.Context, actor Actor, postID uuid.UUID) error {
	if actor.IsAnonymous() {
		return ErrPermissionDenied
	}
	if _, err := s.GetPublishedPost(ctx, postID); err != nil {
		return err
	}
	return s.favourites.Add(ctx, actor.UserID, postID)
}

// RemoveFavourite drops the bookmark if present.
func (s *Service) RemoveFavourite(ctx context.Context, actor Actor, postID uuid.UUID) error {
	if actor.IsAnonymous() {
		return ErrPermissionDenied
	}
	return s.favourites.Remove(ctx, actor.UserID, postID)
}

// IsFavourite reports whether the actor bookmarked the post. Always false
// for anonymous visitors.
func (s *Service) IsFavourite(ctx context.Context, actor Actor, postID uuid.UUID) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}
	return s.favourites.IsFavourite(ctx, actor.UserID, postID)
}

// Favourites lists the actor's bookmarked posts with their tags.
func (s *Service) Favourites(ctx context.Context, actor Actor) ([]models.Post, error) {
	if actor.IsAnonymous() {
		return nil, ErrPermissionDenied
	}
	posts, err := s.favourites.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, posts)
}
