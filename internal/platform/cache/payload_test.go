package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryPayloads_CopiesValues(t *testing.T) {
	t.Parallel()

	payloads := NewMemoryPayloads()
	raw := []byte(`{"data":[]}`)
	if err := payloads.SetBytes(context.Background(), "teams:1", raw, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw[0] = 'x'

	got, ok, err := payloads.GetBytes(context.Background(), "teams:1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got) != `{"data":[]}` {
		t.Fatalf("cached payload was mutated: %s", got)
	}
	got[0] = 'y'
	again, _, _ := payloads.GetBytes(context.Background(), "teams:1")
	if string(again) != `{"data":[]}` {
		t.Fatalf("returned slice aliases the cache: %s", again)
	}
}

func TestMemoryPayloads_Expires(t *testing.T) {
	t.Parallel()

	payloads := NewMemoryPayloads()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	payloads.now = func() time.Time { return now }

	ctx := context.Background()
	_ = payloads.SetBytes(ctx, "forever", []byte("a"), 0)
	_ = payloads.SetBytes(ctx, "short", []byte("b"), time.Second)
	now = now.Add(2 * time.Second)

	if _, ok, _ := payloads.GetBytes(ctx, "short"); ok {
		t.Fatalf("expected short entry to expire")
	}
	if v, ok, _ := payloads.GetBytes(ctx, "forever"); !ok || string(v) != "a" {
		t.Fatalf("expected entry without ttl to survive, got=%q ok=%v", v, ok)
	}
}

func TestNopPayloads(t *testing.T) {
	t.Parallel()

	var payloads PayloadCache = NopPayloads{}
	_ = payloads.SetBytes(context.Background(), "k", []byte("v"), time.Minute)
	if _, ok, _ := payloads.GetBytes(context.Background(), "k"); ok {
		t.Fatalf("nop cache should never hit")
	}
}
