package bus

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Hub is an in-process fan-out: every Bus returned by Join receives what the
// others publish. Useful for several caches in one process and for tests.
type Hub struct {
	mu  sync.RWMutex
	eps map[*endpoint]struct{}
}

func NewHub() *Hub {
	return &Hub{eps: make(map[*endpoint]struct{})}
}

// Join attaches a new endpoint with the given delivery buffer (0 => 64).
func (h *Hub) Join(buffer int) Bus {
	if buffer <= 0 {
		buffer = 64
	}
	ep := &endpoint{
		hub:    h,
		origin: uuid.NewString(),
		out:    make(chan Message, buffer),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.eps[ep] = struct{}{}
	h.mu.Unlock()
	return ep
}

type endpoint struct {
	hub    *Hub
	origin string
	out    chan Message
	done   chan struct{}
	once   sync.Once
}

// Publish blocks until every other endpoint accepted the message, ctx ends,
// or a receiver is closed.
func (e *endpoint) Publish(ctx context.Context, m Message) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	m.Origin = e.origin

	e.hub.mu.RLock()
	defer e.hub.mu.RUnlock()
	for ep := range e.hub.eps {
		if ep == e {
			continue
		}
		select {
		case ep.out <- m:
		case <-ep.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *endpoint) Messages() <-chan Message { return e.out }

func (e *endpoint) Close() error {
	e.once.Do(func() {
		close(e.done)
		e.hub.mu.Lock()
		delete(e.hub.eps, e)
		e.hub.mu.Unlock()
		close(e.out)
	})
	return nil
}
