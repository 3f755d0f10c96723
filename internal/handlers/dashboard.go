// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"myblog/internal/blog"
	"myblog/internal/models"
	"myblog/internal/render"
)

// dashboardSection is one titled list of the author's posts.
type dashboardSection struct {
	Name  string
	Posts []models.Post
}

// Dashboard groups the signed-in author's handlers: their posts, the
// points of each post, comment moderation and favourites.
type Dashboard struct {
	renderer *render.Renderer
	blog     *blog.Service
	images   ImageStore
}

// NewDashboard creates a new Dashboard handler group.
func NewDashboard(renderer *render.Renderer, svc *blog.Service, images ImageStore) *Dashboard {
	return &Dashboard{renderer: renderer, blog: svc, images: images}
}

// Index renders the author's published posts and drafts.
func (d *Dashboard) Index(w http.ResponseWriter, r *http.Request) {
	dash, err := d.blog.Dashboard(r.Context(), actorFrom(r))
	if err != nil {
		serviceError(d.renderer, w, r, err, "dashboard")
		return
	}

	d.renderer.Page(w, r, "dashboard", &render.PageData{
		Title: "Dashboard",
		Data: map[string]any{"Sections": []dashboardSection{
			{Name: "Published", Posts: dash.Published},
			{Name: "Drafts", Posts: dash.Drafts},
		}},
	})
}

// --- Favourites ---

// Favourites renders the posts the user favourited.
func (d *Dashboard) Favourites(w http.ResponseWriter, r *http.Request) {
	posts, err := d.blog.Favourites(r.Context(), actorFrom(r))
	if err != nil {
		serviceError(d.renderer, w, r, err, "list favourites")
		return
	}
	d.renderer.Page(w, r, "favourites", &render.PageData{
		Title: "Favourites",
		Data:  map[string]any{"Posts": posts},
	})
}

// RemoveFavourite drops a post from the favourites page.
func (d *Dashboard) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}
	if err := d.blog.RemoveFavourite(r.Context(), actorFrom(r), id); err != nil {
		serviceError(d.renderer, w, r, err, "remove favourite")
		return
	}
	redirect(w, r, "/account/favourites")
}

// --- Posts ---

// PostNew renders an empty post form.
func (d *Dashboard) PostNew(w http.ResponseWriter, r *http.Request) {
	d.renderPostForm(w, r, http.StatusOK, nil, postForm{Status: string(models.PostStatusDraft)}, nil)
}

// PostCreate handles the new post form submission.
func (d *Dashboard) PostCreate(w http.ResponseWriter, r *http.Request) {
	form, uploaded, errs := d.parsePostSubmission(w, r, "")
	in, inErrs := form.input()
	errs = mergeErrors(errs, inErrs)
	if errs != nil {
		d.rejectPost(w, r, nil, form, uploaded, errs)
		return
	}

	post, err := d.blog.CreatePost(r.Context(), actorFrom(r), in)
	if fe, ok := fieldErrors(err); ok {
		d.rejectPost(w, r, nil, form, uploaded, fe)
		return
	}
	if err != nil {
		d.discardImage(r.Context(), uploaded)
		serviceError(d.renderer, w, r, err, "create post")
		return
	}

	render.SetFlash(w, "success", "Post created. Now add its points.")
	redirect(w, r, pointsPath(post.ID))
}

// PostEdit renders the edit form of one of the author's posts.
func (d *Dashboard) PostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := d.ownPost(w, r)
	if !ok {
		return
	}
	d.renderPostForm(w, r, http.StatusOK, post, postFormFrom(post), nil)
}

// PostUpdate saves the edit form.
func (d *Dashboard) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := d.ownPost(w, r)
	if !ok {
		return
	}

	form, uploaded, errs := d.parsePostSubmission(w, r, post.Image)
	in, inErrs := form.input()
	errs = mergeErrors(errs, inErrs)
	if errs != nil {
		d.rejectPost(w, r, post, form, uploaded, errs)
		return
	}

	updated, err := d.blog.UpdatePost(r.Context(), actorFrom(r), post.ID, in)
	if fe, ok := fieldErrors(err); ok {
		d.rejectPost(w, r, post, form, uploaded, fe)
		return
	}
	if err != nil {
		d.discardImage(r.Context(), uploaded)
		serviceError(d.renderer, w, r, err, "update post")
		return
	}
	if uploaded != "" && post.Image != updated.Image {
		d.discardImage(r.Context(), post.Image)
	}

	render.SetFlash(w, "success", "Post updated.")
	if updated.IsPublished() {
		redirect(w, r, updated.URL())
		return
	}
	redirect(w, r, dashboardPath)
}

// PostDelete removes one of the author's posts.
func (d *Dashboard) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}
	ctx := r.Context()
	actor := actorFrom(r)

	images := d.postImages(ctx, actor, id)
	if err := d.blog.DeletePost(ctx, actor, id); err != nil {
		serviceError(d.renderer, w, r, err, "delete post")
		return
	}
	for _, key := range images {
		d.discardImage(ctx, key)
	}
	render.SetFlash(w, "success", "Post deleted.")
	redirect(w, r, dashboardPath)
}

// postImages lists the image keys of a post the actor owns: its own
// image and those of its points. Nil if the post cannot be read.
func (d *Dashboard) postImages(ctx context.Context, actor blog.Actor, id uuid.UUID) []string {
	post, err := d.blog.OwnPost(ctx, actor, id)
	if err != nil {
		return nil
	}
	keys := []string{post.Image}
	points, err := d.blog.ListPoints(ctx, id)
	if err != nil {
		slog.Warn("list point images", "post_id", id, "error", err)
		return keys
	}
	for _, pt := range points {
		if pt.Image != nil {
			keys = append(keys, *pt.Image)
		}
	}
	return keys
}

// parsePostSubmission reads the form with current as the image. Text
// fields are checked before an upload is stored; a stored upload replaces
// the image and its key is returned as uploaded.
func (d *Dashboard) parsePostSubmission(w http.ResponseWriter, r *http.Request, current string) (form postForm, uploaded string, errs models.FieldErrors) {
	data, filename, err := readUpload(w, r, "image_file")
	form = parsePostForm(r, current)
	if err != nil {
		return form, "", models.FieldErrors{"image": uploadMessage(err)}
	}
	if len(data) == 0 {
		return form, "", nil
	}

	pending := form
	pending.Image = "pending"
	if _, fe := pending.input(); fe != nil {
		return form, "", nil
	}

	key, err := d.images.SavePostImage(r.Context(), filename, data)
	if err != nil {
		slog.Warn("post image rejected", "filename", filename, "error", err)
		return form, "", models.FieldErrors{"image": uploadMessage(err)}
	}
	form.Image = key
	return form, key, nil
}

// rejectPost drops a fresh upload and shows the form again with errs.
func (d *Dashboard) rejectPost(w http.ResponseWriter, r *http.Request, post *models.Post, form postForm, uploaded string, errs models.FieldErrors) {
	if uploaded != "" {
		d.discardImage(r.Context(), uploaded)
		form.Image = ""
		if post != nil {
			form.Image = post.Image
		}
	}
	d.renderPostForm(w, r, http.StatusUnprocessableEntity, post, form, errs)
}

// discardImage deletes a stored image that no row refers to. Failures
// are logged only.
func (d *Dashboard) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := d.images.Delete(ctx, key); err != nil {
		slog.Warn("image cleanup failed", "key", key, "error", err)
	}
}

func (d *Dashboard) renderPostForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, form postForm, errs models.FieldErrors) {
	title, action := "New post", "/account/posts/new"
	if post != nil {
		title, action = "Edit post", "/account/posts/"+post.ID.String()+"/edit"
	}
	d.renderer.PageStatus(w, r, status, "post_form", &render.PageData{
		Title:  title,
		Data:   map[string]any{"Post": post, "Form": form, "Action": action},
		Errors: errs,
	})
}

// ownPost loads the post in the {id} route parameter if the signed-in
// user authored it.
func (d *Dashboard) ownPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return nil, false
	}
	post, err := d.blog.OwnPost(r.Context(), actorFrom(r), id)
	if err != nil {
		serviceError(d.renderer, w, r, err, "find post")
		return nil, false
	}
	return post, true
}

// --- Points ---

func pointsPath(postID uuid.UUID) string {
	return "/account/posts/" + postID.String() + "/points"
}

// Points lists the points of one of the author's posts.
func (d *Dashboard) Points(w http.ResponseWriter, r *http.Request) {
	post, ok := d.ownPost(w, r)
	if !ok {
		return
	}
	points, err := d.blog.ListPoints(r.Context(), post.ID)
	if err != nil {
		serviceError(d.renderer, w, r, err, "list points")
		return
	}
	d.renderer.Page(w, r, "points", &render.PageData{
		Title: "Points",
		Data:  map[string]any{"Post": post, "Points": points},
	})
}

// PointNew renders an empty point form.
func (d *Dashboard) PointNew(w http.ResponseWriter, r *http.Request) {
	post, ok := d.ownPost(w, r)
	if !ok {
		return
	}
	d.renderPointForm(w, r, http.StatusOK, post, nil, pointForm{}, nil)
}

// PointCreate appends a point to the post.
func (d *Dashboard) PointCreate(w http.ResponseWriter, r *http.Request) {
	post, ok := d.ownPost(w, r)
	if !ok {
		return
	}

	form, uploaded, errs := d.parsePointSubmission(w, r, post.ID, nil)
	if errs != nil {
		d.renderPointForm(w, r, http.StatusUnprocessableEntity, post, nil, form, errs)
		return
	}

	_, err := d.blog.AddPoint(r.Context(), actorFrom(r), post.ID, form.input())
	if err != nil {
		d.discardImage(r.Context(), uploaded)
		form.Image = nil
	}
	if fe, ok := fieldErrors(err); ok {
		d.renderPointForm(w, r, http.StatusUnprocessableEntity, post, nil, form, fe)
		return
	}
	if err != nil {
		serviceError(d.renderer, w, r, err, "add point")
		return
	}

	render.SetFlash(w, "success", "Point added.")
	redirect(w, r, pointsPath(post.ID))
}

// PointEdit renders the edit form of a point.
func (d *Dashboard) PointEdit(w http.ResponseWriter, r *http.Request) {
	post, pt, ok := d.ownPoint(w, r)
	if !ok {
		return
	}
	d.renderPointForm(w, r, http.StatusOK, post, pt, pointFormFrom(pt), nil)
}

// PointUpdate saves the point form. Without a new upload the current image
// is kept.
func (d *Dashboard) PointUpdate(w http.ResponseWriter, r *http.Request) {
	post, pt, ok := d.ownPoint(w, r)
	if !ok {
		return
	}

	form, uploaded, errs := d.parsePointSubmission(w, r, post.ID, pt.Image)
	if errs != nil {
		d.renderPointForm(w, r, http.StatusUnprocessableEntity, post, pt, form, errs)
		return
	}

	_, err := d.blog.UpdatePoint(r.Context(), actorFrom(r), pt.ID, form.input())
	if err != nil {
		d.discardImage(r.Context(), uploaded)
		form.Image = pt.Image
	}
	if fe, ok := fieldErrors(err); ok {
		d.renderPointForm(w, r, http.StatusUnprocessableEntity, post, pt, form, fe)
		return
	}
	if err != nil {
		serviceError(d.renderer, w, r, err, "update point")
		return
	}
	if uploaded != "" && pt.Image != nil && *pt.Image != uploaded {
		d.discardImage(r.Context(), *pt.Image)
	}

	render.SetFlash(w, "success", "Point updated.")
	redirect(w, r, pointsPath(post.ID))
}

// PointDelete removes a point and returns to its post's point list.
func (d *Dashboard) PointDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}
	ctx := r.Context()
	actor := actorFrom(r)

	var image string
	if pt, err := d.blog.GetPoint(ctx, actor, id); err == nil && pt.Image != nil {
		image = *pt.Image
	}
	postID, err := d.blog.DeletePoint(ctx, actor, id)
	if err != nil {
		serviceError(d.renderer, w, r, err, "delete point")
		return
	}
	d.discardImage(ctx, image)
	if postID == uuid.Nil {
		redirect(w, r, dashboardPath)
		return
	}
	render.SetFlash(w, "success", "Point deleted.")
	redirect(w, r, pointsPath(postID))
}

func (d *Dashboard) ownPoint(w http.ResponseWriter, r *http.Request) (*models.Post, *models.PostPoint, bool) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return nil, nil, false
	}
	ctx := r.Context()
	actor := actorFrom(r)

	pt, err := d.blog.GetPoint(ctx, actor, id)
	if err != nil {
		serviceError(d.renderer, w, r, err, "find point")
		return nil, nil, false
	}
	post, err := d.blog.OwnPost(ctx, actor, pt.PostID)
	if err != nil {
		serviceError(d.renderer, w, r, err, "find post")
		return nil, nil, false
	}
	return post, pt, true
}

// parsePointSubmission reads the point form with current as the image.
// The text fields are validated before an upload is stored; a stored
// upload replaces the image and its key is returned as uploaded.
func (d *Dashboard) parsePointSubmission(w http.ResponseWriter, r *http.Request, postID uuid.UUID, current *string) (form pointForm, uploaded string, errs models.FieldErrors) {
	data, filename, err := readUpload(w, r, "image_file")
	form = parsePointForm(r)
	form.Image = current
	if err != nil {
		return form, "", models.FieldErrors{"image": uploadMessage(err)}
	}
	if fe := form.input().Validate(); fe != nil {
		return form, "", fe
	}
	if len(data) == 0 {
		return form, "", nil
	}

	key, err := d.images.SavePointImage(r.Context(), postID, filename, data)
	if err != nil {
		slog.Warn("point image rejected", "post_id", postID, "filename", filename, "error", err)
		return form, "", models.FieldErrors{"image": uploadMessage(err)}
	}
	form.Image = &key
	return form, key, nil
}

func (d *Dashboard) renderPointForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, pt *models.PostPoint, form pointForm, errs models.FieldErrors) {
	title, action := "New point", pointsPath(post.ID)+"/new"
	if pt != nil {
		title, action = "Edit point", "/account/points/"+pt.ID.String()+"/edit"
	}
	d.renderer.PageStatus(w, r, status, "point_form", &render.PageData{
		Title:  title,
		Data:   map[string]any{"Post": post, "Point": pt, "Form": form, "Action": action},
		Errors: errs,
	})
}

// --- Comments ---

// CommentHide hides a comment under one of the author's posts.
func (d *Dashboard) CommentHide(w http.ResponseWriter, r *http.Request) {
	d.moderate(w, r, false)
}

// CommentShow makes a hidden comment public again.
func (d *Dashboard) CommentShow(w http.ResponseWriter, r *http.Request) {
	d.moderate(w, r, true)
}

func (d *Dashboard) moderate(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := parseID(r, "id")
	if !ok {
		d.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return
	}
	post, err := d.blog.SetCommentActive(r.Context(), actorFrom(r), id, active)
	if err != nil {
		serviceError(d.renderer, w, r, err, "moderate comment")
		return
	}
	if post.IsPublished() {
		redirect(w, r, post.URL())
		return
	}
	redirect(w, r, dashboardPath)
}

// mergeErrors combines two sets of field errors; the first wins on
// conflicts. Returns nil when both are empty.
func mergeErrors(a, b models.FieldErrors) models.FieldErrors {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := models.FieldErrors{}
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}
