package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })

	return mr
}

type payload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestGetSetJSONRoundtrip(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	found, err := GetJSON(ctx, "user:1", &payload{})
	if err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := SetJSON(ctx, "user:1", payload{ID: 1, Name: "Mika"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	found, err = GetJSON(ctx, "user:1", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if got.Name != "Mika" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestAsidePopulatesOnMiss(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			fetches++
			*dest = payload{ID: 2, Name: "Rafael"}
			return nil
		}
	}

	var first payload
	if err := Aside(ctx, UserKey(2), &first, UserTTL, fetch(&first)); err != nil {
		t.Fatalf("aside miss: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected one fetch, got %d", fetches)
	}

	// Second read is served from the cache.
	var second payload
	if err := Aside(ctx, UserKey(2), &second, UserTTL, fetch(&second)); err != nil {
		t.Fatalf("aside hit: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected no extra fetch, got %d", fetches)
	}
	if second.Name != "Rafael" {
		t.Fatalf("unexpected cached payload: %+v", second)
	}

	// Invalidation forces a re-fetch.
	InvalidateUser(ctx, 2)
	if mr.Exists(UserKey(2)) {
		t.Fatal("expected key to be gone after invalidation")
	}
}

func TestAsideFetchErrorPropagates(t *testing.T) {
	setupMiniredis(t)

	wantErr := errors.New("store down")
	var dest payload
	err := Aside(context.Background(), "user:3", &dest, time.Minute, func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestAsideDegradesWithoutRedis(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var dest payload
	for i := 0; i < 2; i++ {
		if err := Aside(context.Background(), "user:4", &dest, time.Minute, func() error {
			fetches++
			dest = payload{ID: 4}
			return nil
		}); err != nil {
			t.Fatalf("aside without redis: %v", err)
		}
	}
	// Every call fetches; nothing is cached.
	if fetches != 2 {
		t.Fatalf("expected 2 fetches, got %d", fetches)
	}
}
