// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable; Valkey is
// replaced by an in-process miniredis.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"myblog/internal/blog"
	"myblog/internal/cache"
	"myblog/internal/database"
	"myblog/internal/email"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/render"
	"myblog/internal/session"
	"myblog/internal/storage"
	"myblog/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "myblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "myblog")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Renderer  *render.Renderer
	Sessions  *session.Store
	UserStore *store.UserStore
	Blog      *blog.Service
	MediaRoot string
	Mail      *recordingMailer
	Public    *Public
	Account   *Account
	Dashboard *Dashboard

	// Router mounts the handlers behind LoadSession and RequireAuth.
	// CSRF is left out so tests can post forms directly.
	Router http.Handler
}

// recordingMailer captures share mails instead of sending them.
type recordingMailer struct {
	configured bool
	sent       chan string
}

func (m *recordingMailer) IsConfigured() bool { return m.configured }

func (m *recordingMailer) SendShare(s email.Share) error {
	m.sent <- s.Subject()
	return nil
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	mr := miniredis.RunT(t)
	vk := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { vk.Close() })

	mediaRoot := t.TempDir()
	disk, err := storage.NewDisk(mediaRoot, "/media")
	if err != nil {
		t.Fatalf("storage.NewDisk: %v", err)
	}
	images := storage.NewImages(disk)

	renderer, err := render.New(images)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	mail := &recordingMailer{configured: true, sent: make(chan string, 4)}
	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	svc := blog.New(blog.Deps{
		Posts:      store.NewPostStore(db),
		Points:     store.NewPointStore(db),
		Comments:   store.NewCommentStore(db),
		Tags:       store.NewTagStore(db),
		Favourites: store.NewFavouriteStore(db),
		Similar:    cache.NewSimilarCache(vk, time.Minute),
		Mailer:     mail,
		PerPage:    3,
		BaseURL:    "http://blog.test",
	})

	env := &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		UserStore: userStore,
		Blog:      svc,
		MediaRoot: mediaRoot,
		Mail:      mail,
		Public:    NewPublic(renderer, svc),
		Account:   NewAccount(renderer, sessions, userStore),
		Dashboard: NewDashboard(renderer, svc, images),
	}
	env.Router = env.routes()
	return env
}

func (env *testEnv) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LoadSession(env.Sessions))

	r.Get("/", env.Public.List)
	r.Get("/tag/{tag}", env.Public.Tag)
	r.Get("/{year}/{month}/{day}/{slug}/{id}", env.Public.Detail)
	r.Post("/{year}/{month}/{day}/{slug}/{id}", env.Public.AddComment)
	r.Get("/share/{id}", env.Public.ShareForm)
	r.Post("/share/{id}", env.Public.Share)
	r.With(middleware.RequireAuth).Post("/favourite/{id}", env.Public.Favourite)
	r.With(middleware.RequireAuth).Post("/unfavourite/{id}", env.Public.Unfavourite)

	r.Route("/account", func(r chi.Router) {
		r.Get("/login", env.Account.LoginPage)
		r.Post("/login", env.Account.LoginSubmit)
		r.Post("/logout", env.Account.Logout)
		r.Get("/sign-up", env.Account.SignUpPage)
		r.Post("/sign-up", env.Account.SignUpSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/profile", env.Account.ProfilePage)
			r.Post("/profile", env.Account.ProfileSubmit)
			r.Get("/dashboard", env.Dashboard.Index)
			r.Get("/favourites", env.Dashboard.Favourites)
			r.Post("/favourites/{id}/remove", env.Dashboard.RemoveFavourite)
			r.Get("/posts/new", env.Dashboard.PostNew)
			r.Post("/posts/new", env.Dashboard.PostCreate)
			r.Get("/posts/{id}/edit", env.Dashboard.PostEdit)
			r.Post("/posts/{id}/edit", env.Dashboard.PostUpdate)
			r.Post("/posts/{id}/delete", env.Dashboard.PostDelete)
			r.Get("/posts/{id}/points", env.Dashboard.Points)
			r.Get("/posts/{id}/points/new", env.Dashboard.PointNew)
			r.Post("/posts/{id}/points/new", env.Dashboard.PointCreate)
			r.Get("/points/{id}/edit", env.Dashboard.PointEdit)
			r.Post("/points/{id}/edit", env.Dashboard.PointUpdate)
			r.Post("/points/{id}/delete", env.Dashboard.PointDelete)
			r.Post("/comments/{id}/hide", env.Dashboard.CommentHide)
			r.Post("/comments/{id}/show", env.Dashboard.CommentShow)
		})
	})
	return r
}

// testUser is a signed-up account with a live session cookie.
type testUser struct {
	*models.User
	Cookie *http.Cookie
}

func (u testUser) actor() blog.Actor {
	return blog.Actor{UserID: u.ID, Username: u.Username}
}

// createUser signs up a uniquely named user and opens a session for it.
func (env *testEnv) createUser(t *testing.T, prefix string) testUser {
	t.Helper()
	ctx := context.Background()

	u, err := env.UserStore.Create(ctx, models.SignUpInput{
		Username:  prefix + "_" + uuid.NewString()[:8],
		FirstName: "Test",
		LastName:  strings.ToUpper(prefix[:1]) + prefix[1:],
		Email:     prefix + "@example.com",
		Password:  "correct-horse",
		Password2: "correct-horse",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })

	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(ctx, rec, &session.Data{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.FullName(),
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return testUser{User: u, Cookie: sessionCookie(t, rec)}
}

// createPost saves a post through the service.
func (env *testEnv) createPost(t *testing.T, author testUser, title string, status models.PostStatus, tags ...string) *models.Post {
	t.Helper()
	p, err := env.Blog.CreatePost(context.Background(), author.actor(), models.PostInput{
		Title:            title,
		ShortDescription: "About " + title,
		Image:            "product_images/test.jpg",
		Tags:             tags,
		Status:           status,
	})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// do sends a request through the test router.
func (env *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (env *testEnv) postForm(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req, cookie)
}

// postMultipart posts fields plus an optional image_file upload.
func (env *testEnv) postMultipart(t *testing.T, path string, values url.Values, filename string, file []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vals := range values {
		for _, v := range vals {
			mw.WriteField(k, v)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image_file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return env.do(req, cookie)
}

// testPNG returns a small valid PNG.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d; body: %.300s", rec.Code, want, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	assertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}
}
