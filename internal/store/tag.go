// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"myblog/internal/models"
)

// TagStore reads tags and the post_tags join table. Tag links are
// written together with their post by PostStore.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// getOrCreate finds the tag by slug, creating it with name if absent.
// Names that produce an empty slug return a nil tag.
func getOrCreate(ctx context.Context, q execer, name string) (*models.Tag, error) {
	sl := models.TagSlug(name)
	if sl == "" {
		return nil, nil
	}

	t := &models.Tag{}
	// The no-op update makes RETURNING yield the existing row on conflict.
	err := q.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name, slug
	`, name, sl).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return nil, fmt.Errorf("get or create tag %q: %w", name, err)
	}
	return t, nil
}

// replacePostTags makes names the post's complete tag set. PostStore runs
// it inside the transaction that writes the post row.
func replacePostTags(ctx context.Context, q execer, postID uuid.UUID, names []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, name := range names {
		t, err := getOrCreate(ctx, q, name)
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, t.ID)
		if err != nil {
			return fmt.Errorf("tag post: %w", err)
		}
	}
	return nil
}

// FindBySlug retrieves a tag by slug.
func (s *TagStore) FindBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM tags WHERE slug = $1`, tagSlug).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return nil, notFoundIfNoRows(err, "find tag by slug")
	}
	return t, nil
}

// ListForPost returns a post's tags ordered by name.
func (s *TagStore) ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error) {
	byPost, err := s.ListForPosts(ctx, []uuid.UUID{postID})
	if err != nil {
		return nil, err
	}
	return byPost[postID], nil
}

// ListForPosts returns the tags of several posts keyed by post id.
func (s *TagStore) ListForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	out := make(map[uuid.UUID][]models.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	strIDs := lo.Map(postIDs, func(id uuid.UUID, _ int) string { return id.String() })

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, strIDs)
	if err != nil {
		return nil, fmt.Errorf("list tags for posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out[postID] = append(out[postID], t)
	}
	return out, rows.Err()
}

// ListPosts returns every post carrying the tag, newest first, whatever
// its status. Callers filter to published.
func (s *TagStore) ListPosts(ctx context.Context, tagSlug string) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+postFrom+`
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.slug = $1
		ORDER BY p.publish DESC`, tagSlug)
	if err != nil {
		return nil, fmt.Errorf("list posts by tag: %w", err)
	}
	return collectPosts(rows, "list posts by tag")
}
