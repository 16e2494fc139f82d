package bigcache

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{LifeWindow: time.Minute, Shards: 16, MaxEntriesInWindow: 1000, MaxEntrySize: 256})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRejectsZeroLifeWindow(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero LifeWindow")
	}
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if _, ok, err := p.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if b, ok, err := p.Get(ctx, "k"); err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get: b=%q ok=%v err=%v", b, ok, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of missing key should be nil, got %v", err)
	}
}

func TestDelPrefix(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	keys := []string{"demo:1", "demo:2", "demo:3", "demo:4", "xxx:1", "xdemo:1"}
	for _, k := range keys {
		if _, err := p.Set(ctx, k, []byte(k), 1, 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := p.DelPrefix(ctx, "demo"); err != nil {
		t.Fatalf("DelPrefix: %v", err)
	}
	for _, k := range keys[:4] {
		if _, ok, _ := p.Get(ctx, k); ok {
			t.Fatalf("%s should be removed", k)
		}
	}
	for _, k := range keys[4:] {
		if _, ok, _ := p.Get(ctx, k); !ok {
			t.Fatalf("%s should remain", k)
		}
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 entries left, got %d", p.Len())
	}
}

func TestShortTTLReportedOnce(t *testing.T) {
	ctx := context.Background()
	var calls []time.Duration
	p, err := New(Config{
		LifeWindow:   time.Minute,
		Shards:       16,
		OnTTLIgnored: func(ttl, window time.Duration) {
			if window != time.Minute {
				t.Errorf("window = %v", window)
			}
			calls = append(calls, ttl)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	// no TTL and TTLs covered by the window are fine
	for _, ttl := range []time.Duration{0, time.Minute, time.Hour} {
		if _, err := p.Set(ctx, "k", []byte("v"), 1, ttl); err != nil {
			t.Fatalf("Set ttl=%v: %v", ttl, err)
		}
	}
	if len(calls) != 0 {
		t.Fatalf("unexpected notice: %v", calls)
	}

	for _, ttl := range []time.Duration{time.Second, 2 * time.Second} {
		if _, err := p.Set(ctx, "k", []byte("v"), 1, ttl); err != nil {
			t.Fatalf("Set ttl=%v: %v", ttl, err)
		}
	}
	if len(calls) != 1 || calls[0] != time.Second {
		t.Fatalf("notice calls = %v, want [1s]", calls)
	}
}
