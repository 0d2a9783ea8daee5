package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s := NewRedisStore(RedisConfig{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_MissThenSetThenHit(t *testing.T) {
	s, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "ns__missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() on empty store should report a miss")
	}

	if err := s.Set(ctx, "ns__key", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := s.Get(ctx, "ns__key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() after Set() should report a hit")
	}
	if string(value) != "value" {
		t.Errorf("Get() = %q, want %q", value, "value")
	}
}

func TestRedisStore_EmptyValueIsHit(t *testing.T) {
	s, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	if err := s.Set(ctx, "ns__empty", []byte{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, found, err := s.Get(ctx, "ns__empty")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Error("Get() for empty value should report a hit, not a miss")
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := s.Set(ctx, "ns__key", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, found, err := s.Get(ctx, "ns__key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("entry should have expired")
	}
}

func TestRedisStore_Ping(t *testing.T) {
	s, mr := newTestRedisStore(t, 0)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	mr.Close()
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() should fail after server shutdown")
	}
}

func TestRedisStore_GetError(t *testing.T) {
	s, mr := newTestRedisStore(t, 0)
	ctx := context.Background()

	mr.Close()
	if _, _, err := s.Get(ctx, "ns__key"); err == nil {
		t.Error("Get() should surface transport errors")
	}
}
