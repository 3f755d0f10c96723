// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"myblog/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows the published listing. Zero values mean "no filter";
// Limit 0 returns every row.
type PostFilter struct {
	Query   string // case-insensitive title substring
	TagSlug string
	Limit   int
	Offset  int
}

const postColumns = `p.id, p.title, p.slug, p.author_id, u.username, p.short_description,
	p.image, p.publish, p.status, p.created_at, p.updated_at`

const postFrom = ` FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row scanner, extra ...any) (*models.Post, error) {
	p := &models.Post{}
	dest := append([]any{
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.AuthorName, &p.ShortDescription,
		&p.Image, &p.Publish, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}

func collectPosts(rows *sql.Rows, op string) ([]models.Post, error) {
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// FindByID retrieves a post by its UUID regardless of status.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFoundIfNoRows(err, "find post by id")
	}
	return p, nil
}

// FindByIDs returns the posts with the given ids in the order of ids.
// Missing ids are skipped.
func (s *PostStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strIDs := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.id = ANY($1::uuid[])`, strIDs)
	if err != nil {
		return nil, fmt.Errorf("find posts by ids: %w", err)
	}
	posts, err := collectPosts(rows, "find posts by ids")
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(posts, func(p models.Post) uuid.UUID { return p.ID })
	return lo.FilterMap(ids, func(id uuid.UUID, _ int) (models.Post, bool) {
		p, ok := byID[id]
		return p, ok
	}), nil
}

// Create inserts a new post and links its tags in one transaction, so a
// failed tag leaves no post behind. The caller supplies the slug; a clash
// on the same publish date surfaces as a unique violation.
func (s *PostStore) Create(ctx context.Context, p *models.Post, tags []string) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, author_id, short_description, image,
		                   publish, publish_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Slug, p.AuthorID, p.ShortDescription, p.Image,
		p.Publish, p.PublishDate(), p.Status,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if err := replacePostTags(ctx, tx, id, tags); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update writes every editable column of p and replaces its tags, all or
// nothing.
func (s *PostStore) Update(ctx context.Context, p *models.Post, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, short_description = $3, image = $4,
			publish = $5, publish_date = $6, status = $7, updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Slug, p.ShortDescription, p.Image,
		p.Publish, p.PublishDate(), p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := requireAffected(res, "update post"); err != nil {
		return err
	}
	if err := replacePostTags(ctx, tx, p.ID, tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post: %w", err)
	}
	return nil
}

// Delete removes a post. Points, comments, tag links and favourites are
// removed by ON DELETE CASCADE.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res, "delete post")
}

// SlugsOnDate lists the slugs used on the given publish date, ignoring the
// post identified by exclude (pass uuid.Nil on create).
func (s *PostStore) SlugsOnDate(ctx context.Context, date time.Time, exclude uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug FROM posts WHERE publish_date = $1 AND id <> $2
	`, models.PublishDate(date), exclude)
	if err != nil {
		return nil, fmt.Errorf("list slugs on date: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var sl string
		if err := rows.Scan(&sl); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, sl)
	}
	return slugs, rows.Err()
}

// publishedWhere builds the WHERE clause shared by the listing and its count.
func publishedWhere(f PostFilter) (string, []any) {
	clauses := []string{"p.status = 'published'"}
	var args []any

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		clauses = append(clauses, "p.title ILIKE $"+strconv.Itoa(len(args)))
	}
	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = $`+strconv.Itoa(len(args))+`)`)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountPublished returns how many published posts match f.
func (s *PostStore) CountPublished(ctx context.Context, f PostFilter) (int, error) {
	where, args := publishedWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return n, nil
}

// ListPublished returns published posts matching f, newest first.
func (s *PostStore) ListPublished(ctx context.Context, f PostFilter) ([]models.Post, error) {
	where, args := publishedWhere(f)
	query := `SELECT ` + postColumns + postFrom + where + ` ORDER BY p.publish DESC, p.id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return collectPosts(rows, "list published posts")
}

// ListByAuthor returns an author's posts with the given status, newest first.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID uuid.UUID, status models.PostStatus) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+postFrom+`
		WHERE p.author_id = $1 AND p.status = $2
		ORDER BY p.publish DESC`, authorID, status)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows, "list posts by author")
}

// SimilarCandidates returns every published post other than postID that
// shares at least one tag with it, together with the shared tag count.
// Ordering is left to the caller.
func (s *PostStore) SimilarCandidates(ctx context.Context, postID uuid.UUID) ([]models.SimilarPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`, COUNT(pt.tag_id) AS same_tags
		FROM post_tags pt
		JOIN posts p ON p.id = pt.post_id
		JOIN users u ON u.id = p.author_id
		WHERE pt.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = $1)
		  AND p.id <> $1
		  AND p.status = 'published'
		GROUP BY p.id, u.username
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("similar candidates: %w", err)
	}
	defer rows.Close()

	var out []models.SimilarPost
	for rows.Next() {
		var same int
		p, err := scanPost(rows, &same)
		if err != nil {
			return nil, fmt.Errorf("scan similar candidate: %w", err)
		}
		out = append(out, models.SimilarPost{Post: *p, SameTags: same})
	}
	return out, rows.Err()
}
