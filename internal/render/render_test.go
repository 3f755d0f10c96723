// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/paginate"
	"myblog/internal/session"
)

type fakeImages struct{}

func (fakeImages) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New(fakeImages{})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return rn
}

// helperRequestWithContext builds a request whose context carries a session
// the way LoadSession would.
func helperRequestWithContext(method, target string, sess *session.Data) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, sess))
	}
	return req
}

func samplePost() *models.Post {
	return &models.Post{
		ID:               uuid.New(),
		Title:            "Борщ",
		Slug:             "borshch",
		AuthorName:       "anna",
		ShortDescription: "Beetroot soup",
		Image:            "product_images/borshch.jpg",
		Publish:          time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Status:           models.PostStatusPublished,
		Tags:             []models.Tag{{Name: "soup", Slug: "soup"}},
	}
}

func TestNew(t *testing.T) {
	rn := newRenderer(t)

	for _, name := range []string{
		"list", "detail", "share", "login", "sign_up", "profile", "dashboard",
		"post_form", "points", "point_form", "favourites", "error",
	} {
		if _, ok := rn.templates[name]; !ok {
			t.Errorf("template %q not loaded", name)
		}
	}
	if _, ok := rn.templates["base"]; ok {
		t.Error("base layout should not be registered as a page")
	}
}

func TestPageRendering(t *testing.T) {
	rn := newRenderer(t)
	p := samplePost()

	tests := []struct {
		name     string
		template string
		data     map[string]any
		want     []string
	}{
		{
			name:     "list",
			template: "list",
			data: map[string]any{"Listing": struct {
				Posts []models.Post
				Page  paginate.Page
				Tag   *models.Tag
				Query string
			}{Posts: []models.Post{*p}, Page: paginate.New(1, 3, "1")}},
			want: []string{"Latest posts", "Борщ", p.URL(), "/tag/soup", "/media/product_images/borshch.jpg"},
		},
		{
			name:     "detail",
			template: "detail",
			data: map[string]any{
				"Post":     p,
				"Points":   []models.PostPoint{{Header: "Step one", Text: "Boil **beets**"}},
				"Comments": []models.Comment{{Name: "Ivan", Body: "Tasty", Active: true}},
				"Form":     models.CommentInput{},
			},
			want: []string{"Step one", "<strong>beets</strong>", "1 comment", "Ivan", "Add a new comment"},
		},
		{
			name:     "error",
			template: "error",
			data:     map[string]any{"Status": 404, "Message": "No such post"},
			want:     []string{"404", "No such post"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := helperRequestWithContext(http.MethodGet, "/", nil)

			rn.Page(rec, req, tt.template, &PageData{Title: "Test", Data: tt.data})

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "<!DOCTYPE html>") {
				t.Error("page should be wrapped in the base layout")
			}
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
		})
	}
}

func TestPointTextIsNotRawHTML(t *testing.T) {
	rn := newRenderer(t)
	rec := httptest.NewRecorder()
	req := helperRequestWithContext(http.MethodGet, "/", nil)

	rn.Page(rec, req, "detail", &PageData{Data: map[string]any{
		"Post":     samplePost(),
		"Points":   []models.PostPoint{{Header: "x", Text: "<script>alert(1)</script>"}},
		"Comments": []models.Comment{},
		"Form":     models.CommentInput{},
	}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("raw HTML in point text must not reach the page")
	}
}

func TestMissingTemplate(t *testing.T) {
	rn := newRenderer(t)
	rec := httptest.NewRecorder()
	req := helperRequestWithContext(http.MethodGet, "/", nil)

	rn.Page(rec, req, "nonexistent", &PageData{})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nonexistent") {
		t.Error("error body should name the missing template")
	}
}

func TestPageStatus(t *testing.T) {
	rn := newRenderer(t)
	rec := httptest.NewRecorder()
	req := helperRequestWithContext(http.MethodPost, "/account/login", nil)

	rn.PageStatus(rec, req, http.StatusUnprocessableEntity, "login", &PageData{
		Data:   map[string]any{"Form": models.LoginInput{Username: "anna"}, "Next": ""},
		Errors: models.FieldErrors{"password": "This field is required."},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="anna"`) {
		t.Error("form value should be re-displayed")
	}
	if !strings.Contains(body, "This field is required.") {
		t.Error("field error should be rendered")
	}
}

func TestPageDataCSRFInjection(t *testing.T) {
	rn := newRenderer(t)
	var token string

	h := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = middleware.CSRFTokenFromCtx(r.Context())
		rn.Page(w, r, "login", &PageData{Data: map[string]any{"Form": models.LoginInput{}, "Next": ""}})
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/login", nil))

	if token == "" {
		t.Fatal("CSRF middleware should expose a token")
	}
	if !strings.Contains(rec.Body.String(), `name="csrf_token" value="`+token+`"`) {
		t.Error("rendered form should carry the CSRF token")
	}
}

func TestSessionInjectionFromContext(t *testing.T) {
	rn := newRenderer(t)

	t.Run("signed in", func(t *testing.T) {
		sess := &session.Data{UserID: uuid.New(), Username: "anna", DisplayName: "Anna K"}
		rec := httptest.NewRecorder()
		rn.Page(rec, helperRequestWithContext(http.MethodGet, "/", sess), "error", &PageData{
			Data: map[string]any{"Status": 404, "Message": "x"},
		})
		body := rec.Body.String()
		if !strings.Contains(body, "Anna K") {
			t.Error("nav should show the display name")
		}
		if !strings.Contains(body, "/account/logout") {
			t.Error("nav should offer logout")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rn.Page(rec, helperRequestWithContext(http.MethodGet, "/", nil), "error", &PageData{
			Data: map[string]any{"Status": 404, "Message": "x"},
		})
		body := rec.Body.String()
		if !strings.Contains(body, "/account/login") || strings.Contains(body, "/account/logout") {
			t.Error("anonymous nav should offer login only")
		}
	})
}

func TestFlashRoundTrip(t *testing.T) {
	rn := newRenderer(t)

	set := httptest.NewRecorder()
	SetFlash(set, "success", "Post saved.")
	cookies := set.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("SetFlash set %d cookies, want 1", len(cookies))
	}

	req := helperRequestWithContext(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	rn.Error(rec, req, http.StatusNotFound, "gone")

	if !strings.Contains(rec.Body.String(), "Post saved.") {
		t.Error("queued flash should be rendered")
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("flash cookie should be cleared once shown")
	}
}

func TestPopFlashesIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%not-base64"})

	if got := PopFlashes(httptest.NewRecorder(), req); got != nil {
		t.Errorf("PopFlashes = %v, want nil", got)
	}
}

func TestError(t *testing.T) {
	rn := newRenderer(t)
	rec := httptest.NewRecorder()

	rn.Error(rec, helperRequestWithContext(http.MethodGet, "/x", nil), http.StatusForbidden, "Not your post.")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Forbidden") || !strings.Contains(body, "Not your post.") {
		t.Errorf("unexpected error page: %s", body)
	}
}

func TestTruncate(t *testing.T) {
	rn := newRenderer(t)
	truncate := rn.funcMap["truncate"].(func(int, string) string)

	if got := truncate(10, "short"); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate(4, "Солянка"); got != "Соля…" {
		t.Errorf("truncate(Солянка) = %q, want %q", got, "Соля…")
	}
}
