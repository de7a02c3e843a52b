package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_GetMissAndRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Fatalf("want ErrMiss, got %v", err)
	}

	if err := m.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := m.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(61 * time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("want ErrMiss after expiry, got %v", err)
	}
}

func TestMemory_IncrStartsFromZero(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	n, err := m.Incr(ctx, "counter")
	if err != nil || n != 1 {
		t.Fatalf("first Incr = %d, %v", n, err)
	}
	n, err = m.Incr(ctx, "counter")
	if err != nil || n != 2 {
		t.Fatalf("second Incr = %d, %v", n, err)
	}

	v, err := m.Get(ctx, "counter")
	if err != nil || v != "2" {
		t.Fatalf("counter value = %q, %v", v, err)
	}
}

func TestMemory_Del(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Set(ctx, "k", "v", 0)
	if err := m.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("want ErrMiss after delete, got %v", err)
	}
}

func TestMemory_ZIncr(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.ZIncr(ctx, "views", "42"); err != nil {
			t.Fatalf("ZIncr: %v", err)
		}
	}
	_ = m.ZIncr(ctx, "views", "7")

	if got := m.Score("views", "42"); got != 3 {
		t.Fatalf("score(42) = %v", got)
	}
	if got := m.Score("views", "7"); got != 1 {
		t.Fatalf("score(7) = %v", got)
	}
	if got := m.Score("views", "absent"); got != 0 {
		t.Fatalf("score(absent) = %v", got)
	}
}
