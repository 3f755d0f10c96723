// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the blog. Handlers are
// grouped by concern (public, account, dashboard) and receive their
// dependencies through the handler struct.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"myblog/internal/blog"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/render"
	"myblog/internal/store"
)

// actorFrom returns the identity of the signed-in user, or the anonymous
// actor when there is no session.
func actorFrom(r *http.Request) blog.Actor {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return blog.Anonymous()
	}
	return blog.Actor{UserID: sess.UserID, Username: sess.Username}
}

// parseID reads a UUID route parameter.
func parseID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

// fieldErrors extracts validation errors from err.
func fieldErrors(err error) (models.FieldErrors, bool) {
	var fe models.FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// serviceError renders the error page matching a failed blog or store call.
// Validation errors are expected to be handled by the caller.
func serviceError(rn *render.Renderer, w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		rn.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	case errors.Is(err, blog.ErrPermissionDenied):
		rn.Error(w, r, http.StatusForbidden, "You are not allowed to do that.")
	case errors.Is(err, blog.ErrNotPublished):
		rn.Error(w, r, http.StatusBadRequest, "This post is not published.")
	default:
		if _, ok := fieldErrors(err); ok {
			rn.Error(w, r, http.StatusBadRequest, "The submitted form is invalid.")
			return
		}
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		rn.Error(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// redirect sends a 303 so the browser follows with a GET.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
