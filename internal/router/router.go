// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog. It organizes routes into public and account groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"myblog/internal/handlers"
	"myblog/internal/middleware"
	"myblog/internal/session"
)

// maxRequestBody caps every request body, uploads included.
const maxRequestBody = 12 << 20

// Deps holds everything the route table needs.
type Deps struct {
	Sessions  *session.Store
	Public    *handlers.Public
	Account   *handlers.Account
	Dashboard *handlers.Dashboard

	// LoginLimit and SignUpLimit throttle credential forms. Either may be nil.
	LoginLimit  *middleware.RateLimiter
	SignUpLimit *middleware.RateLimiter

	Static fs.FS  // served at /static/
	Media  string // local image directory served at /media/, "" when images live in S3

	SecureCookies bool
	ExtraImgSrc   []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.SecureCookies, d.ExtraImgSrc...))

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}
	if d.Media != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(noListing{http.Dir(d.Media)})))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.RequestSize(maxRequestBody))
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions))

		// Public blog.
		r.Get("/", d.Public.List)
		r.Get("/tag/{tag}", d.Public.Tag)
		r.Get("/{year}/{month}/{day}/{slug}/{id}", d.Public.Detail)
		r.Post("/{year}/{month}/{day}/{slug}/{id}", d.Public.AddComment)
		r.Get("/share/{id}", d.Public.ShareForm)
		r.Post("/share/{id}", d.Public.Share)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/favourite/{id}", d.Public.Favourite)
			r.Post("/unfavourite/{id}", d.Public.Unfavourite)
		})

		r.Route("/account", func(r chi.Router) {
			// Credential forms, accessible without a session.
			r.Get("/login", d.Account.LoginPage)
			r.With(limit(d.LoginLimit)).Post("/login", d.Account.LoginSubmit)
			r.Post("/logout", d.Account.Logout)
			r.Get("/sign-up", d.Account.SignUpPage)
			r.With(limit(d.SignUpLimit)).Post("/sign-up", d.Account.SignUpSubmit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)

				r.Get("/profile", d.Account.ProfilePage)
				r.Post("/profile", d.Account.ProfileSubmit)

				r.Get("/dashboard", d.Dashboard.Index)

				r.Get("/favourites", d.Dashboard.Favourites)
				r.Post("/favourites/{id}/remove", d.Dashboard.RemoveFavourite)

				// Posts
				r.Route("/posts", func(r chi.Router) {
					r.Get("/new", d.Dashboard.PostNew)
					r.Post("/new", d.Dashboard.PostCreate)
					r.Get("/{id}/edit", d.Dashboard.PostEdit)
					r.Post("/{id}/edit", d.Dashboard.PostUpdate)
					r.Post("/{id}/delete", d.Dashboard.PostDelete)

					r.Get("/{id}/points", d.Dashboard.Points)
					r.Get("/{id}/points/new", d.Dashboard.PointNew)
					r.Post("/{id}/points/new", d.Dashboard.PointCreate)
				})

				// Points
				r.Get("/points/{id}/edit", d.Dashboard.PointEdit)
				r.Post("/points/{id}/edit", d.Dashboard.PointUpdate)
				r.Post("/points/{id}/delete", d.Dashboard.PointDelete)

				// Comment moderation
				r.Post("/comments/{id}/hide", d.Dashboard.CommentHide)
				r.Post("/comments/{id}/show", d.Dashboard.CommentShow)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// noListing hides directory indexes of the media directory.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
