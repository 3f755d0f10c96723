// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"myblog/internal/email"
	"myblog/internal/models"
)

// SharePost e-mails a link to a published post. Delivery runs in the
// background; failures are logged, not returned.
func (s *Service) SharePost(ctx context.Context, postID uuid.UUID, in models.ShareInput) (*models.Post, error) {
	p, err := s.GetPublishedPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return p, err
	}
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return p, ErrMailUnavailable
	}

	msg := email.Share{
		Name:    in.Name,
		Email:   in.Email,
		To:      in.To,
		Comment: in.Comment,
		Title:   p.Title,
		URL:     s.baseURL + p.URL(),
	}
	go func() {
		if err := s.mailer.SendShare(msg); err != nil {
			slog.Error("share email failed", "post_id", postID, "error", err)
			return
		}
		slog.Info("post shared", "post_id", postID)
	}()
	return p, nil
}
