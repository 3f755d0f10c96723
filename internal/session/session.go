// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in users in Valkey. The browser only holds
// an opaque id; the payload lives under session:<id> and expires after a
// period of inactivity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "myblog_session"

	// DefaultTTL is the idle timeout. Every successful Get pushes it back.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"
	idBytes   = 32
)

// ErrNoSession is returned by Update when the request carries no live
// session.
var ErrNoSession = errors.New("no session")

// Data is who is signed in.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore returns a store on client. secure sets the cookie's Secure flag.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

func key(id string) string { return keyPrefix + id }

// idFrom returns the session id carried by r, or "".
func idFrom(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Store) setCookie(w http.ResponseWriter, id string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Create stores data under a fresh id and sets the cookie.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	data.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	s.setCookie(w, id, int(s.ttl.Seconds()))
	return id, nil
}

// Renew drops whatever session r carries and starts a new one. Sign-in
// goes through here so an id issued before login never becomes
// authenticated.
func (s *Store) Renew(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) (string, error) {
	if old := idFrom(r); old != "" {
		if err := s.client.Del(ctx, key(old)).Err(); err != nil {
			return "", fmt.Errorf("drop old session: %w", err)
		}
	}
	return s.Create(ctx, w, data)
}

// Get loads the session for r and extends its lifetime. A missing cookie
// or an expired session is (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id := idFrom(r)
	if id == "" {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Update rewrites the payload of r's session in place. It never
// resurrects a session that has already expired.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id := idFrom(r)
	if id == "" {
		return ErrNoSession
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	err = s.client.SetArgs(ctx, key(id), payload, redis.SetArgs{Mode: "XX", TTL: s.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNoSession
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Destroy deletes r's session and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := idFrom(r)
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.setCookie(w, "", -1)
	return nil
}
