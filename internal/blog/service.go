// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog holds the publishing rules of the blog: who may change a
// post, when a post is visible, how slugs stay unique within a day, and
// how related posts are ranked. Handlers call it with an explicit Actor;
// persistence sits behind the repository interfaces below.
package blog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"myblog/internal/email"
	"myblog/internal/models"
	"myblog/internal/store"
)

// PostRepository is implemented by *store.PostStore.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Post, error)
	// Create and Update write the post row and its tag set atomically.
	Create(ctx context.Context, p *models.Post, tags []string) (*models.Post, error)
	Update(ctx context.Context, p *models.Post, tags []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugsOnDate(ctx context.Context, date time.Time, exclude uuid.UUID) ([]string, error)
	CountPublished(ctx context.Context, f store.PostFilter) (int, error)
	ListPublished(ctx context.Context, f store.PostFilter) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, status models.PostStatus) ([]models.Post, error)
	SimilarCandidates(ctx context.Context, postID uuid.UUID) ([]models.SimilarPost, error)
}

// PointRepository is implemented by *store.PointStore.
type PointRepository interface {
	Create(ctx context.Context, pt *models.PostPoint) (*models.PostPoint, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PostPoint, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.PostPoint, error)
	Update(ctx context.Context, pt *models.PostPoint) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentRepository is implemented by *store.CommentStore.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListActive(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	ListAll(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TagRepository is implemented by *store.TagStore.
type TagRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error)
	ListForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error)
	ListPosts(ctx context.Context, slug string) ([]models.Post, error)
}

// FavouriteRepository is implemented by *store.FavouriteStore.
type FavouriteRepository interface {
	Add(ctx context.Context, userID, postID uuid.UUID) error
	Remove(ctx context.Context, userID, postID uuid.UUID) error
	IsFavourite(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
}

// SimilarCache is implemented by *cache.SimilarCache.
type SimilarCache interface {
	Get(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, bool)
	Set(ctx context.Context, postID uuid.UUID, ids []uuid.UUID)
	InvalidateAll(ctx context.Context)
}

// Mailer is implemented by *email.Service.
type Mailer interface {
	IsConfigured() bool
	SendShare(m email.Share) error
}

// Deps wires a Service. Similar and Mailer may be nil.
type Deps struct {
	Posts      PostRepository
	Points     PointRepository
	Comments   CommentRepository
	Tags       TagRepository
	Favourites FavouriteRepository
	Similar    SimilarCache
	Mailer     Mailer

	PerPage int    // listing page size
	BaseURL string // absolute site root for shared links
}

// Service implements the blog's operations.
type Service struct {
	posts      PostRepository
	points     PointRepository
	comments   CommentRepository
	tags       TagRepository
	favourites FavouriteRepository
	similar    SimilarCache
	mailer     Mailer

	perPage int
	baseURL string
	now     func() time.Time
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	perPage := d.PerPage
	if perPage < 1 {
		perPage = 3
	}
	return &Service{
		posts:      d.Posts,
		points:     d.Points,
		comments:   d.Comments,
		tags:       d.Tags,
		favourites: d.Favourites,
		similar:    d.Similar,
		mailer:     d.Mailer,
		perPage:    perPage,
		baseURL:    d.BaseURL,
		now:        time.Now,
	}
}
