// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/render"
	"myblog/internal/session"
	"myblog/internal/store"
)

const dashboardPath = "/account/dashboard"

// Account groups the sign up, login, logout and profile handlers.
type Account struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAccount creates a new Account handler group.
func NewAccount(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Account {
	return &Account{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Account) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.SessionFromCtx(r.Context()) != nil {
		redirect(w, r, middleware.SafeNext(next, dashboardPath))
		return
	}
	a.renderLogin(w, r, http.StatusOK, models.LoginInput{}, next, "", nil)
}

// LoginSubmit processes the login form.
func (a *Account) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	in := parseLoginForm(r)
	next := r.FormValue("next")

	if errs := in.Validate(); errs != nil {
		a.renderLogin(w, r, http.StatusUnprocessableEntity, in, next, "", errs)
		return
	}

	user, err := a.userStore.FindByUsername(r.Context(), in.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("login lookup failed", "error", err)
		a.renderLogin(w, r, http.StatusInternalServerError, in, next, "An unexpected error occurred.", nil)
		return
	}
	if user == nil || !user.IsActive || !a.userStore.CheckPassword(user, in.Password) {
		slog.Info("login rejected", "username", in.Username)
		a.renderLogin(w, r, http.StatusUnauthorized, in, next,
			"Please enter a correct username and password.", nil)
		return
	}

	if !a.startSession(w, r, user) {
		return
	}
	slog.Info("user logged in", "username", user.Username)
	redirect(w, r, middleware.SafeNext(next, dashboardPath))
}

func (a *Account) renderLogin(w http.ResponseWriter, r *http.Request, status int, form models.LoginInput, next, message string, errs models.FieldErrors) {
	form.Password = ""
	a.renderer.PageStatus(w, r, status, "login", &render.PageData{
		Title:  "Log in",
		Data:   map[string]any{"Form": form, "Next": next, "Error": message},
		Errors: errs,
	})
}

// Logout destroys the session and returns to the post listing.
func (a *Account) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	redirect(w, r, "/")
}

// SignUpPage renders the registration form.
func (a *Account) SignUpPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		redirect(w, r, dashboardPath)
		return
	}
	a.renderSignUp(w, r, http.StatusOK, models.SignUpInput{}, nil)
}

// SignUpSubmit creates the account and signs the new user in.
func (a *Account) SignUpSubmit(w http.ResponseWriter, r *http.Request) {
	in := parseSignUpForm(r)
	if errs := in.Validate(); errs != nil {
		a.renderSignUp(w, r, http.StatusUnprocessableEntity, in, errs)
		return
	}

	user, err := a.userStore.Create(r.Context(), in)
	if store.IsUniqueViolation(err) {
		a.renderSignUp(w, r, http.StatusUnprocessableEntity, in, models.FieldErrors{
			"username": "A user with that username already exists.",
		})
		return
	}
	if err != nil {
		serviceError(a.renderer, w, r, err, "create user")
		return
	}

	if !a.startSession(w, r, user) {
		return
	}
	slog.Info("user signed up", "username", user.Username)
	render.SetFlash(w, "success", "Welcome, "+user.FullName()+"! Your account has been created.")
	redirect(w, r, dashboardPath)
}

func (a *Account) renderSignUp(w http.ResponseWriter, r *http.Request, status int, form models.SignUpInput, errs models.FieldErrors) {
	form.Password, form.Password2 = "", ""
	a.renderer.PageStatus(w, r, status, "sign_up", &render.PageData{
		Title:  "Sign up",
		Data:   map[string]any{"Form": form},
		Errors: errs,
	})
}

// ProfilePage renders the profile form of the signed-in user.
func (a *Account) ProfilePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		serviceError(a.renderer, w, r, err, "find user")
		return
	}
	a.renderProfile(w, r, http.StatusOK, user, models.ProfileInput{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil)
}

// ProfileSubmit saves the profile form.
func (a *Account) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	in := parseProfileForm(r)

	if errs := in.Validate(); errs != nil {
		user, err := a.userStore.FindByID(ctx, sess.UserID)
		if err != nil {
			serviceError(a.renderer, w, r, err, "find user")
			return
		}
		a.renderProfile(w, r, http.StatusUnprocessableEntity, user, in, errs)
		return
	}

	user, err := a.userStore.UpdateProfile(ctx, sess.UserID, in)
	if err != nil {
		serviceError(a.renderer, w, r, err, "update profile")
		return
	}

	sess.DisplayName = user.FullName()
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Warn("session update failed", "error", err)
	}
	render.SetFlash(w, "success", "Profile updated successfully.")
	redirect(w, r, "/account/profile")
}

func (a *Account) renderProfile(w http.ResponseWriter, r *http.Request, status int, user *models.User, form models.ProfileInput, errs models.FieldErrors) {
	a.renderer.PageStatus(w, r, status, "profile", &render.PageData{
		Title:  "Profile",
		Data:   map[string]any{"User": user, "Form": form},
		Errors: errs,
	})
}

// startSession signs user in. On failure it has already written a 500.
func (a *Account) startSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	_, err := a.sessions.Renew(r.Context(), w, r, &session.Data{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.FullName(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError, "Could not sign you in. Please try again.")
		return false
	}
	return true
}
