// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"myblog/internal/models"
	"myblog/internal/paginate"
	"myblog/internal/slug"
	"myblog/internal/store"
)

// fallbackSlug is used for titles with nothing to transliterate.
const fallbackSlug = "post"

// slugAttempts bounds retries when a concurrent save takes the slug
// between the lookup and the insert.
const slugAttempts = 3

// ListOptions selects a page of the published listing.
type ListOptions struct {
	Query   string // title substring
	TagSlug string
	Page    string // raw ?page= value
}

// Listing is one page of published posts.
type Listing struct {
	Posts []models.Post
	Page  paginate.Page
	Tag   *models.Tag // set when filtered by tag
	Query string
}

// Dashboard is an author's own posts split by status.
type Dashboard struct {
	Published []models.Post
	Drafts    []models.Post
}

// CreatePost saves a new post authored by actor. Status defaults to draft
// and publish to now.
func (s *Service) CreatePost(ctx context.Context, actor Actor, in models.PostInput) (*models.Post, error) {
	if actor.IsAnonymous() {
		return nil, ErrPermissionDenied
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	p := &models.Post{
		AuthorID: actor.UserID,
		Status:   models.PostStatusDraft,
		Publish:  s.now(),
	}
	applyPostInput(p, in)

	created, err := s.insertWithSlug(ctx, p, in.Tags)
	if err != nil {
		return nil, err
	}
	s.invalidateSimilar(ctx)

	slog.Info("post created", "post_id", created.ID, "author", actor.Username, "status", created.Status)
	return s.loadPost(ctx, created.ID)
}

// UpdatePost rewrites a post's fields and tags. The slug is recomputed from
// the title on every update.
func (s *Service) UpdatePost(ctx context.Context, actor Actor, id uuid.UUID, in models.PostInput) (*models.Post, error) {
	p, err := s.OwnPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	applyPostInput(p, in)

	for attempt := 1; ; attempt++ {
		if err := s.assignSlug(ctx, p); err != nil {
			return nil, err
		}
		err := s.posts.Update(ctx, p, in.Tags)
		if err == nil {
			break
		}
		if !store.IsUniqueViolation(err) || attempt == slugAttempts {
			return nil, err
		}
	}
	s.invalidateSimilar(ctx)

	slog.Info("post updated", "post_id", p.ID, "author", actor.Username, "status", p.Status)
	return s.loadPost(ctx, p.ID)
}

// DeletePost removes a post with its points, comments, tag links and
// favourites. A post that is already gone counts as deleted.
func (s *Service) DeletePost(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(actor.UserID) {
		return ErrPermissionDenied
	}

	if err := s.posts.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	s.invalidateSimilar(ctx)

	slog.Info("post deleted", "post_id", id, "author", actor.Username)
	return nil
}

// OwnPost returns the post if actor authored it.
func (s *Service) OwnPost(ctx context.Context, actor Actor, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(actor.UserID) {
		return nil, ErrPermissionDenied
	}
	p.Tags, err = s.tags.ListForPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPublishedPost returns a published post with its tags. Drafts are
// reported as not found.
func (s *Service) GetPublishedPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() {
		return nil, store.ErrNotFound
	}
	return p, nil
}

// ListPublished returns one page of published posts, optionally narrowed
// by a title query or a tag. An unknown tag is ErrNotFound.
func (s *Service) ListPublished(ctx context.Context, opts ListOptions) (*Listing, error) {
	listing := &Listing{Query: opts.Query}
	f := store.PostFilter{Query: opts.Query}

	if opts.TagSlug != "" {
		tag, err := s.tags.FindBySlug(ctx, opts.TagSlug)
		if err != nil {
			return nil, err
		}
		listing.Tag = tag
		f.TagSlug = tag.Slug
	}

	total, err := s.posts.CountPublished(ctx, f)
	if err != nil {
		return nil, err
	}
	listing.Page = paginate.New(total, s.perPage, opts.Page)
	f.Limit, f.Offset = listing.Page.PerPage, listing.Page.Offset()

	posts, err := s.posts.ListPublished(ctx, f)
	if err != nil {
		return nil, err
	}
	listing.Posts, err = s.withTags(ctx, posts)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// ListByTag returns every published post carrying the tag.
func (s *Service) ListByTag(ctx context.Context, tagSlug string) ([]models.Post, error) {
	posts, err := s.tags.ListPosts(ctx, tagSlug)
	if err != nil {
		return nil, err
	}
	return lo.Filter(posts, func(p models.Post, _ int) bool { return p.IsPublished() }), nil
}

// Dashboard returns the actor's own posts.
func (s *Service) Dashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	if actor.IsAnonymous() {
		return nil, ErrPermissionDenied
	}
	published, err := s.posts.ListByAuthor(ctx, actor.UserID, models.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	drafts, err := s.posts.ListByAuthor(ctx, actor.UserID, models.PostStatusDraft)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Published: published, Drafts: drafts}, nil
}

// Similar returns up to SimilarLimit published posts sharing tags with p.
func (s *Service) Similar(ctx context.Context, p *models.Post) ([]models.Post, error) {
	if s.similar != nil {
		if ids, ok := s.similar.Get(ctx, p.ID); ok {
			return s.posts.FindByIDs(ctx, ids)
		}
	}

	cands, err := s.posts.SimilarCandidates(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ranked := RankSimilar(cands, SimilarLimit)

	if s.similar != nil {
		s.similar.Set(ctx, p.ID, lo.Map(ranked, func(r models.Post, _ int) uuid.UUID { return r.ID }))
	}
	return ranked, nil
}

func applyPostInput(p *models.Post, in models.PostInput) {
	p.Title = in.Title
	p.ShortDescription = in.ShortDescription
	p.Image = in.Image
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.Publish != nil {
		p.Publish = *in.Publish
	}
}

// assignSlug derives p.Slug from the title, suffixing it when another post
// on the same publish date already uses it.
func (s *Service) assignSlug(ctx context.Context, p *models.Post) error {
	base := slug.Generate(p.Title)
	if base == "" {
		base = fallbackSlug
	}
	taken, err := s.posts.SlugsOnDate(ctx, p.Publish, p.ID)
	if err != nil {
		return err
	}
	p.Slug = slug.Unique(base, taken)
	return nil
}

func (s *Service) insertWithSlug(ctx context.Context, p *models.Post, tags []string) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		if err := s.assignSlug(ctx, p); err != nil {
			return nil, err
		}
		created, err := s.posts.Create(ctx, p, tags)
		if err == nil {
			return created, nil
		}
		if !store.IsUniqueViolation(err) || attempt == slugAttempts {
			return nil, err
		}
		slog.Warn("slug taken concurrently, retrying", "slug", p.Slug, "attempt", attempt)
	}
}

func (s *Service) loadPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tags, err = s.tags.ListForPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) withTags(ctx context.Context, posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}
	byPost, err := s.tags.ListForPosts(ctx, lo.Map(posts, func(p models.Post, _ int) uuid.UUID { return p.ID }))
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return posts, nil
}

func (s *Service) invalidateSimilar(ctx context.Context) {
	if s.similar != nil {
		s.similar.InvalidateAll(ctx)
	}
}
