// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the blog's public
// and account pages. Every page template is paired with the base layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"myblog/internal/markdown"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string             // Page title for <title> tag
	Session   *session.Data      // Current user session (nil if anonymous)
	CSRFToken string             // CSRF token for forms
	Data      map[string]any     // Page-specific data
	Errors    models.FieldErrors // Form errors for re-display
	Flashes   []Flash            // One-time notification messages
}

// ImageURLs maps stored image keys to public URLs.
type ImageURLs interface {
	URL(key string) string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses all page templates from the embedded filesystem.
func New(images ImageURLs) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"imageURL": images.URL,
			"markdown": markdown.Render,
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			"datetime": func(t time.Time) string {
				return t.Format("January 2, 2006, 15:04")
			},
			"inputTime": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.UTC().Format("2006-01-02T15:04")
			},
			"fieldError": func(errs models.FieldErrors, field string) string {
				return errs[field]
			},
			"joinTags": models.JoinTags,
			"truncate": func(n int, s string) string {
				runes := []rune(s)
				if len(runes) <= n {
					return s
				}
				return strings.TrimSpace(string(runes[:n])) + "…"
			},
		},
	}

	pages, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templatesFS, "templates/base.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page with the given status. The page is
// executed into a buffer first so a template error becomes a clean 500.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &PageData{}
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	data.Flashes = append(PopFlashes(w, r), data.Flashes...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execute failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error page with a short message.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.PageStatus(w, r, status, "error", &PageData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status, "Message": message},
	})
}
