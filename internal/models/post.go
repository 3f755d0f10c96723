// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog entry: title, short description, cover image and an
// ordered list of points. Slug is unique within the post's publish date.
type Post struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	AuthorID         uuid.UUID  `json:"author_id"`
	AuthorName       string     `json:"author_name"` // username, joined on read
	ShortDescription string     `json:"short_description"`
	Image            string     `json:"image"`
	Publish          time.Time  `json:"publish"`
	Status           PostStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.AuthorID == userID
}

// PublishDate is the UTC calendar day the slug is scoped to.
func (p *Post) PublishDate() time.Time {
	return PublishDate(p.Publish)
}

// URL returns the canonical detail path /{year}/{month}/{day}/{slug}/{id}.
func (p *Post) URL() string {
	d := p.Publish.UTC()
	return fmt.Sprintf("/%d/%d/%d/%s/%s", d.Year(), int(d.Month()), d.Day(), p.Slug, p.ID)
}

// PublishDate truncates t to midnight UTC.
func PublishDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SimilarPost is a ranking candidate: a published post and the number of
// tags it shares with the reference post.
type SimilarPost struct {
	Post     Post
	SameTags int
}
