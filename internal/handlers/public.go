// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"myblog/internal/blog"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/render"
)

// Public groups handlers for the pages every visitor sees: the post
// listing, post detail with comments, sharing and favouriting.
type Public struct {
	renderer *render.Renderer
	blog     *blog.Service
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, svc *blog.Service) *Public {
	return &Public{renderer: renderer, blog: svc}
}

// List renders the paginated published posts, narrowed by ?query=.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	p.list(w, r, "")
}

// Tag renders the published posts carrying one tag.
func (p *Public) Tag(w http.ResponseWriter, r *http.Request) {
	p.list(w, r, chi.URLParam(r, "tag"))
}

func (p *Public) list(w http.ResponseWriter, r *http.Request, tagSlug string) {
	q := r.URL.Query()
	listing, err := p.blog.ListPublished(r.Context(), blog.ListOptions{
		Query:   q.Get("query"),
		TagSlug: tagSlug,
		Page:    q.Get("page"),
	})
	if err != nil {
		serviceError(p.renderer, w, r, err, "list posts")
		return
	}

	title := "Posts"
	if listing.Tag != nil {
		title = "Posts tagged " + listing.Tag.Name
	}
	p.renderer.Page(w, r, "list", &render.PageData{
		Title: title,
		Data:  map[string]any{"Listing": listing},
	})
}

// Detail renders a published post with its points, comments and similar
// posts.
func (p *Public) Detail(w http.ResponseWriter, r *http.Request) {
	post, ok := p.findByURL(w, r)
	if !ok {
		return
	}
	p.renderDetail(w, r, http.StatusOK, post, models.CommentInput{}, nil)
}

// AddComment handles the comment form under a post.
func (p *Public) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := p.findByURL(w, r)
	if !ok {
		return
	}

	in := parseCommentForm(r)
	_, err := p.blog.AddComment(r.Context(), post.ID, in)
	if fe, ok := fieldErrors(err); ok {
		p.renderDetail(w, r, http.StatusUnprocessableEntity, post, in, fe)
		return
	}
	if err != nil {
		serviceError(p.renderer, w, r, err, "add comment")
		return
	}

	render.SetFlash(w, "success", "Your comment has been added.")
	redirect(w, r, post.URL())
}

// findByURL loads the published post addressed by the detail route. The
// date and slug segments must match the post, not just its id.
func (p *Public) findByURL(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return nil, false
	}
	post, err := p.blog.GetPublishedPost(r.Context(), id)
	if err != nil {
		serviceError(p.renderer, w, r, err, "find post")
		return nil, false
	}
	if !matchesURL(post, r) {
		p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return nil, false
	}
	return post, true
}

func matchesURL(post *models.Post, r *http.Request) bool {
	d := post.Publish.UTC()
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
	day, err3 := strconv.Atoi(chi.URLParam(r, "day"))
	if err := errors.Join(err1, err2, err3); err != nil {
		return false
	}
	return year == d.Year() && month == int(d.Month()) && day == d.Day() &&
		chi.URLParam(r, "slug") == post.Slug
}

func (p *Public) renderDetail(w http.ResponseWriter, r *http.Request, status int, post *models.Post, form models.CommentInput, errs models.FieldErrors) {
	ctx := r.Context()
	actor := actorFrom(r)

	points, err := p.blog.ListPoints(ctx, post.ID)
	if err != nil {
		serviceError(p.renderer, w, r, err, "list points")
		return
	}
	comments, err := p.blog.CommentsFor(ctx, actor, post)
	if err != nil {
		serviceError(p.renderer, w, r, err, "list comments")
		return
	}
	similar, err := p.blog.Similar(ctx, post)
	if err != nil {
		// The page is still useful without the sidebar.
		slog.Warn("similar posts failed", "post_id", post.ID, "error", err)
	}
	favourite := false
	if !actor.IsAnonymous() {
		if favourite, err = p.blog.IsFavourite(ctx, actor, post.ID); err != nil {
			slog.Warn("favourite lookup failed", "post_id", post.ID, "error", err)
		}
	}

	p.renderer.PageStatus(w, r, status, "detail", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":        post,
			"Points":      points,
			"Comments":    comments,
			"Similar":     similar,
			"IsFavourite": favourite,
			"IsAuthor":    post.IsOwnedBy(actor.UserID),
			"Form":        form,
		},
		Errors: errs,
	})
}

// ShareForm renders the recommend-by-email form.
func (p *Public) ShareForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}
	post, err := p.blog.GetPublishedPost(r.Context(), id)
	if err != nil {
		serviceError(p.renderer, w, r, err, "find post")
		return
	}

	form := models.ShareInput{}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		form.Name = sess.DisplayName
	}
	p.renderShare(w, r, http.StatusOK, post, form, nil)
}

// Share sends the recommendation e-mail.
func (p *Public) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}

	in := parseShareForm(r)
	post, err := p.blog.SharePost(r.Context(), id, in)
	if fe, ok := fieldErrors(err); ok {
		p.renderShare(w, r, http.StatusUnprocessableEntity, post, in, fe)
		return
	}
	if errors.Is(err, blog.ErrMailUnavailable) {
		p.renderer.Error(w, r, http.StatusServiceUnavailable, "Sharing by e-mail is not available right now.")
		return
	}
	if err != nil {
		serviceError(p.renderer, w, r, err, "share post")
		return
	}

	render.SetFlash(w, "success", fmt.Sprintf("%q was successfully sent to %s.", post.Title, in.To))
	redirect(w, r, post.URL())
}

func (p *Public) renderShare(w http.ResponseWriter, r *http.Request, status int, post *models.Post, form models.ShareInput, errs models.FieldErrors) {
	p.renderer.PageStatus(w, r, status, "share", &render.PageData{
		Title:  "Share " + post.Title,
		Data:   map[string]any{"Post": post, "Form": form},
		Errors: errs,
	})
}

// Favourite adds a post to the signed-in user's favourites.
func (p *Public) Favourite(w http.ResponseWriter, r *http.Request) {
	p.toggleFavourite(w, r, true)
}

// Unfavourite removes a post from the signed-in user's favourites.
func (p *Public) Unfavourite(w http.ResponseWriter, r *http.Request) {
	p.toggleFavourite(w, r, false)
}

func (p *Public) toggleFavourite(w http.ResponseWriter, r *http.Request, add bool) {
	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}

	actor := actorFrom(r)
	var err error
	if add {
		err = p.blog.AddFavourite(r.Context(), actor, id)
	} else {
		err = p.blog.RemoveFavourite(r.Context(), actor, id)
	}
	if err != nil {
		serviceError(p.renderer, w, r, err, "toggle favourite")
		return
	}

	redirect(w, r, middleware.SafeNext(r.FormValue("next"), "/account/favourites"))
}
