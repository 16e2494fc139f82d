package memcache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestExpiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		name string
		ttl  time.Duration
		want int32
	}{
		{"zero_never", 0, 0},
		{"negative_never", -time.Second, 0},
		{"sub_second_rounds_up", 10 * time.Millisecond, 1},
		{"fraction_rounds_up", 1500 * time.Millisecond, 2},
		{"whole_seconds", 50 * time.Second, 50},
		{"thirty_days_relative", maxRelativeExpiry, int32(maxRelativeExpiry / time.Second)},
		{"beyond_thirty_days_absolute", 31 * 24 * time.Hour, int32(now.Add(31 * 24 * time.Hour).Unix())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := expiration(tc.ttl, now); got != tc.want {
				t.Fatalf("expiration(%v) = %d want %d", tc.ttl, got, tc.want)
			}
		})
	}
}

func TestNewRequiresClientOrServers(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
	p, err := New(Config{Servers: []string{"127.0.0.1:1"}, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.mc.Timeout != 50*time.Millisecond {
		t.Fatalf("timeout not applied: %v", p.mc.Timeout)
	}
}

func TestIndexedIsLiteralPrefix(t *testing.T) {
	p, err := New(Config{Servers: []string{"127.0.0.1:1"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"demo:1", "demo:2", "xdemo:1", "xxx:1"} {
		p.keys[k] = time.Time{}
	}
	got := p.indexed("demo")
	if len(got) != 2 {
		t.Fatalf("expected 2 indexed matches, got %v", got)
	}
	p.forget("demo:1")
	if got := p.indexed("demo"); len(got) != 1 || got[0] != "demo:2" {
		t.Fatalf("after forget: %v", got)
	}
	if err := p.DelPrefix(context.Background(), "nothing-here"); err != nil {
		t.Fatalf("DelPrefix with no indexed matches should not touch the server: %v", err)
	}
}

func TestIndexPrunesExpiredKeys(t *testing.T) {
	p, err := New(Config{Servers: []string{"127.0.0.1:1"}})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	p.keys["demo:short"] = now.Add(time.Second)
	p.keys["demo:long"] = now.Add(time.Hour)
	p.keys["demo:forever"] = time.Time{}

	if got := p.indexed("demo"); len(got) != 3 {
		t.Fatalf("before expiry: %v", got)
	}

	now = now.Add(time.Minute)
	got := p.indexed("demo")
	if len(got) != 2 {
		t.Fatalf("after expiry: %v", got)
	}
	for _, k := range got {
		if k == "demo:short" {
			t.Fatalf("expired key still matched: %v", got)
		}
	}
	if _, ok := p.keys["demo:short"]; ok {
		t.Fatalf("expired key should be dropped from the index")
	}
	if len(p.keys) != 2 {
		t.Fatalf("index size = %d want 2", len(p.keys))
	}
}

func TestPruneBoundsIndex(t *testing.T) {
	p, err := New(Config{Servers: []string{"127.0.0.1:1"}})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	for i := 0; i < minSweep; i++ {
		p.keys[fmt.Sprintf("k:%d", i)] = now.Add(-time.Second)
	}
	p.keys["live"] = now.Add(time.Hour)

	p.pruneLocked(now)
	if len(p.keys) != 1 {
		t.Fatalf("prune left %d keys, want 1", len(p.keys))
	}
	if _, ok := p.keys["live"]; !ok {
		t.Fatalf("live key pruned")
	}
}
