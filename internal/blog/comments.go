// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"myblog/internal/models"
)

// AddComment stores an active comment on a published post.
func (s *Service) AddComment(ctx context.Context, postID uuid.UUID, in models.CommentInput) (*models.Comment, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() {
		return nil, ErrNotPublished
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(ctx, &models.Comment{
		PostID: postID,
		Name:   in.Name,
		Email:  in.Email,
		Body:   in.Body,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("comment added", "post_id", postID, "comment_id", c.ID)
	return c, nil
}

// ListComments returns the active comments of a post, oldest first.
func (s *Service) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.comments.ListActive(ctx, postID)
}

// CommentsFor returns what actor may see under p: every comment for the
// author, active ones for everyone else.
func (s *Service) CommentsFor(ctx context.Context, actor Actor, p *models.Post) ([]models.Comment, error) {
	if p.IsOwnedBy(actor.UserID) {
		return s.comments.ListAll(ctx, p.ID)
	}
	return s.comments.ListActive(ctx, p.ID)
}

// SetCommentActive hides or shows a comment. Only the post's author may
// moderate. Returns the post the comment belongs to.
func (s *Service) SetCommentActive(ctx context.Context, actor Actor, commentID uuid.UUID, active bool) (*models.Post, error) {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	p, err := s.OwnPost(ctx, actor, c.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.comments.SetActive(ctx, commentID, active); err != nil {
		return nil, err
	}
	slog.Info("comment moderated", "comment_id", commentID, "active", active, "author", actor.Username)
	return p, nil
}
