package asynchook

import (
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/hybridcache"
)

type countHooks struct {
	hybridcache.NopHooks
	mu    sync.Mutex
	gate  chan struct{}
	hits  int
	loads int
}

func (c *countHooks) Hit(hybridcache.TierKind, string) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *countHooks) Loaded(string, time.Duration, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
}

func TestDeliversAndDrainsOnClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 100)

	for i := 0; i < 50; i++ {
		h.Hit(hybridcache.LocalKey, "k")
	}
	h.Loaded("k", time.Millisecond, nil)
	h.Close()

	if inner.hits != 50 || inner.loads != 1 {
		t.Fatalf("hits=%d loads=%d", inner.hits, inner.loads)
	}
	if h.Dropped() != 0 {
		t.Fatalf("nothing should be dropped, got %d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{gate: make(chan struct{})}
	h := New(inner, 1, 1)

	// the worker blocks on the first event, the second fills the queue
	for i := 0; i < 5; i++ {
		h.Hit(hybridcache.LocalKey, "k")
	}
	close(inner.gate)
	h.Close()

	if h.Dropped() == 0 {
		t.Fatalf("expected drops on a full queue")
	}
	if got := uint64(inner.hits) + h.Dropped(); got != 5 {
		t.Fatalf("delivered+dropped = %d, want 5", got)
	}

	h.Miss("after-close")
	if h.Dropped() == 0 {
		t.Fatalf("events after Close are dropped")
	}
}
