// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"

	"myblog/internal/email"
	"myblog/internal/models"
	"myblog/internal/store"
)

// memDB is an in-memory stand-in for the PostgreSQL stores. It implements
// every repository interface the Service needs and mirrors the schema's
// cascades and unique (publish_date, slug) index.
type memDB struct {
	mu sync.Mutex

	posts      map[uuid.UUID]*models.Post
	points     map[uuid.UUID]*models.PostPoint
	comments   map[uuid.UUID]*models.Comment
	tags       map[string]models.Tag                 // by slug
	postTags   map[uuid.UUID][]string                // post id -> tag slugs
	favourites map[uuid.UUID]map[uuid.UUID]time.Time // user -> post -> added

	clock time.Time // advanced on every write to keep created_at ordered

	// failSlugOnce makes the next Create report a unique violation.
	failSlugOnce bool
	// tagErr, when set, fails every post write at the tag step. The post
	// row is rolled back with it, as in the PostgreSQL store.
	tagErr error
}

func newMemDB() *memDB {
	return &memDB{
		posts:      map[uuid.UUID]*models.Post{},
		points:     map[uuid.UUID]*models.PostPoint{},
		comments:   map[uuid.UUID]*models.Comment{},
		tags:       map[string]models.Tag{},
		postTags:   map[uuid.UUID][]string{},
		favourites: map[uuid.UUID]map[uuid.UUID]time.Time{},
		clock:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// posts

type memPosts struct{ *memDB }

func (m memPosts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	cp.Tags = nil
	return &cp, nil
}

func (m memPosts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Post, error) {
	var out []models.Post
	for _, id := range ids {
		if p, err := m.FindByID(ctx, id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m memPosts) Create(_ context.Context, p *models.Post, tags []string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSlugOnce {
		m.failSlugOnce = false
		return nil, &pgconn.PgError{Code: "23505"}
	}
	if m.slugTaken(p.PublishDate(), p.Slug, uuid.Nil) {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	if m.tagErr != nil {
		return nil, m.tagErr
	}
	cp := *p
	cp.ID = uuid.New()
	cp.CreatedAt = m.tick()
	cp.UpdatedAt = cp.CreatedAt
	m.posts[cp.ID] = &cp
	m.setPostTags(cp.ID, tags)
	out := cp
	return &out, nil
}

func (m memPosts) Update(_ context.Context, p *models.Post, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return store.ErrNotFound
	}
	if m.slugTaken(p.PublishDate(), p.Slug, p.ID) {
		return &pgconn.PgError{Code: "23505"}
	}
	if m.tagErr != nil {
		return m.tagErr
	}
	cp := *p
	cp.UpdatedAt = m.tick()
	m.posts[p.ID] = &cp
	m.setPostTags(p.ID, tags)
	return nil
}

func (m memPosts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	delete(m.postTags, id)
	for pid, pt := range m.points {
		if pt.PostID == id {
			delete(m.points, pid)
		}
	}
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	for _, favs := range m.favourites {
		delete(favs, id)
	}
	return nil
}

func (m *memDB) slugTaken(date time.Time, sl string, exclude uuid.UUID) bool {
	for _, p := range m.posts {
		if p.ID != exclude && p.Slug == sl && p.PublishDate().Equal(date) {
			return true
		}
	}
	return false
}

func (m memPosts) SlugsOnDate(_ context.Context, date time.Time, exclude uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := models.PublishDate(date)
	var out []string
	for _, p := range m.posts {
		if p.ID != exclude && p.PublishDate().Equal(day) {
			out = append(out, p.Slug)
		}
	}
	return out, nil
}

func (m memPosts) published(f store.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range m.posts {
		if !p.IsPublished() {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) {
			continue
		}
		if f.TagSlug != "" && !lo.Contains(m.postTags[p.ID], f.TagSlug) {
			continue
		}
		out = append(out, *p)
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(posts []models.Post) {
	for i := 1; i < len(posts); i++ {
		for j := i; j > 0 && posts[j].Publish.After(posts[j-1].Publish); j-- {
			posts[j], posts[j-1] = posts[j-1], posts[j]
		}
	}
}

func (m memPosts) CountPublished(_ context.Context, f store.PostFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published(f)), nil
}

func (m memPosts) ListPublished(_ context.Context, f store.PostFilter) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.published(f)
	if f.Limit > 0 {
		out = lo.Subset(out, f.Offset, uint(f.Limit))
	}
	return out, nil
}

func (m memPosts) ListByAuthor(_ context.Context, authorID uuid.UUID, status models.PostStatus) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.posts {
		if p.AuthorID == authorID && p.Status == status {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m memPosts) SimilarCandidates(_ context.Context, postID uuid.UUID) ([]models.SimilarPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mine := m.postTags[postID]
	var out []models.SimilarPost
	for id, p := range m.posts {
		if id == postID || !p.IsPublished() {
			continue
		}
		same := len(lo.Intersect(mine, m.postTags[id]))
		if same > 0 {
			out = append(out, models.SimilarPost{Post: *p, SameTags: same})
		}
	}
	return out, nil
}

// points

type memPoints struct{ *memDB }

func (m memPoints) Create(_ context.Context, pt *models.PostPoint) (*models.PostPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[pt.PostID]; !ok {
		return nil, store.ErrNotFound
	}
	pos := 0
	for _, other := range m.points {
		if other.PostID == pt.PostID && other.Position > pos {
			pos = other.Position
		}
	}
	cp := *pt
	cp.ID = uuid.New()
	cp.Position = pos + 1
	cp.CreatedAt = m.tick()
	m.points[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m memPoints) FindByID(_ context.Context, id uuid.UUID) (*models.PostPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pt, ok := m.points[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *pt
	return &cp, nil
}

func (m memPoints) ListByPost(_ context.Context, postID uuid.UUID) ([]models.PostPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PostPoint
	for _, pt := range m.points {
		if pt.PostID == postID {
			out = append(out, *pt)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position < out[j-1].Position; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m memPoints) Update(_ context.Context, pt *models.PostPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.points[pt.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *pt
	m.points[pt.ID] = &cp
	return nil
}

func (m memPoints) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.points[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.points, id)
	return nil
}

// comments

type memComments struct{ *memDB }

func (m memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.ID = uuid.New()
	cp.Active = true
	cp.CreatedAt = m.tick()
	m.comments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m memComments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memComments) list(postID uuid.UUID, activeOnly bool) []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID && (c.Active || !activeOnly) {
			out = append(out, *c)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (m memComments) ListActive(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return m.list(postID, true), nil
}

func (m memComments) ListAll(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return m.list(postID, false), nil
}

func (m memComments) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Active = active
	return nil
}

// tags

type memTags struct{ *memDB }

// setPostTags expects m.mu to be held.
func (m *memDB) setPostTags(postID uuid.UUID, names []string) {
	var slugs []string
	for _, name := range names {
		sl := models.TagSlug(name)
		if sl == "" {
			continue
		}
		if _, ok := m.tags[sl]; !ok {
			m.tags[sl] = models.Tag{ID: uuid.New(), Name: name, Slug: sl}
		}
		slugs = append(slugs, sl)
	}
	m.postTags[postID] = lo.Uniq(slugs)
}

func (m memTags) FindBySlug(_ context.Context, sl string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[sl]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (m memTags) ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error) {
	byPost, _ := m.ListForPosts(ctx, []uuid.UUID{postID})
	return byPost[postID], nil
}

func (m memTags) ListForPosts(_ context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID][]models.Tag{}
	for _, id := range postIDs {
		for _, sl := range m.postTags[id] {
			out[id] = append(out[id], m.tags[sl])
		}
	}
	return out, nil
}

func (m memTags) ListPosts(_ context.Context, sl string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for id, slugs := range m.postTags {
		if lo.Contains(slugs, sl) {
			out = append(out, *m.posts[id])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// favourites

type memFavourites struct{ *memDB }

func (m memFavourites) Add(_ context.Context, userID, postID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favourites[userID] == nil {
		m.favourites[userID] = map[uuid.UUID]time.Time{}
	}
	if _, ok := m.favourites[userID][postID]; !ok {
		m.favourites[userID][postID] = m.tick()
	}
	return nil
}

func (m memFavourites) Remove(_ context.Context, userID, postID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favourites[userID], postID)
	return nil
}

func (m memFavourites) IsFavourite(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favourites[userID][postID]
	return ok, nil
}

func (m memFavourites) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for postID := range m.favourites[userID] {
		out = append(out, *m.posts[postID])
	}
	return out, nil
}

// memCache records similar-cache traffic.
type memCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]uuid.UUID
	hits        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: map[uuid.UUID][]uuid.UUID{}}
}

func (c *memCache) Get(_ context.Context, postID uuid.UUID) ([]uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.entries[postID]
	if ok {
		c.hits++
	}
	return ids, ok
}

func (c *memCache) Set(_ context.Context, postID uuid.UUID, ids []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[postID] = ids
}

func (c *memCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uuid.UUID][]uuid.UUID{}
	c.invalidated++
}

// chanMailer hands every share message to a channel.
type chanMailer struct {
	configured bool
	sent       chan email.Share
	err        error
}

func (m *chanMailer) IsConfigured() bool { return m.configured }

func (m *chanMailer) SendShare(s email.Share) error {
	m.sent <- s
	return m.err
}

// testEnv bundles a Service over a fresh memDB.
type testEnv struct {
	svc    *Service
	db     *memDB
	cache  *memCache
	mailer *chanMailer
	now    time.Time
}

func newTestEnv() *testEnv {
	db := newMemDB()
	c := newMemCache()
	mailer := &chanMailer{configured: true, sent: make(chan email.Share, 1)}
	svc := New(Deps{
		Posts:      memPosts{db},
		Points:     memPoints{db},
		Comments:   memComments{db},
		Tags:       memTags{db},
		Favourites: memFavourites{db},
		Similar:    c,
		Mailer:     mailer,
		PerPage:    3,
		BaseURL:    "http://blog.test",
	})
	env := &testEnv{
		svc: svc, db: db, cache: c, mailer: mailer,
		now: time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return env.now }
	return env
}
