// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testClient starts an in-process Redis and returns a client for it.
func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestConnectValkey(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectValkey(context.Background(), mr.Host(), mr.Port(), "")
	if err != nil {
		t.Fatalf("ConnectValkey: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyWrongPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	if _, err := ConnectValkey(context.Background(), mr.Host(), mr.Port(), "wrong"); err == nil {
		t.Error("expected an auth error")
	}
	client, err := ConnectValkey(context.Background(), mr.Host(), mr.Port(), "s3cret")
	if err != nil {
		t.Fatalf("ConnectValkey with password: %v", err)
	}
	client.Close()
}

func TestConnectValkeyUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	if _, err := ConnectValkey(context.Background(), host, port, ""); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestSimilarCacheSetAndGet(t *testing.T) {
	client, _ := testClient(t)
	c := NewSimilarCache(client, time.Minute)
	ctx := context.Background()

	post := uuid.New()
	if _, ok := c.Get(ctx, post); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := []uuid.UUID{uuid.New(), uuid.New()}
	c.Set(ctx, post, want)

	got, ok := c.Get(ctx, post)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSimilarCacheStoresEmptyRanking(t *testing.T) {
	client, _ := testClient(t)
	c := NewSimilarCache(client, time.Minute)
	ctx := context.Background()

	post := uuid.New()
	c.Set(ctx, post, nil)

	got, ok := c.Get(ctx, post)
	if !ok {
		t.Fatal("an empty ranking should still be a hit")
	}
	if len(got) != 0 {
		t.Errorf("expected empty ranking, got %v", got)
	}
}

func TestSimilarCacheTTL(t *testing.T) {
	client, mr := testClient(t)
	c := NewSimilarCache(client, 30*time.Second)
	ctx := context.Background()

	post := uuid.New()
	c.Set(ctx, post, []uuid.UUID{uuid.New()})

	mr.FastForward(31 * time.Second)
	if _, ok := c.Get(ctx, post); ok {
		t.Error("entry should expire after the TTL")
	}
}

func TestSimilarCacheDefaultTTL(t *testing.T) {
	c := NewSimilarCache(nil, 0)
	if c.ttl != DefaultSimilarTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultSimilarTTL)
	}
}

func TestSimilarCacheInvalidateAll(t *testing.T) {
	client, mr := testClient(t)
	c := NewSimilarCache(client, time.Minute)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	c.Set(ctx, a, []uuid.UUID{b})
	c.Set(ctx, b, []uuid.UUID{a})
	mr.Set("session:keep-me", "x")

	c.InvalidateAll(ctx)
	for _, id := range []uuid.UUID{a, b} {
		if _, ok := c.Get(ctx, id); ok {
			t.Errorf("%s should be gone after InvalidateAll", id)
		}
	}
	if !mr.Exists("session:keep-me") {
		t.Error("InvalidateAll must not touch keys outside its prefix")
	}
}

func TestSimilarCacheCorruptEntryIsMiss(t *testing.T) {
	client, mr := testClient(t)
	c := NewSimilarCache(client, time.Minute)

	post := uuid.New()
	mr.Set(similarKey(post), "not json")

	if _, ok := c.Get(context.Background(), post); ok {
		t.Error("undecodable entry should be reported as a miss")
	}
}
