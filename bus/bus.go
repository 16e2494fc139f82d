// Package bus carries local-tier invalidations between processes that share a
// distributed tier. A process that writes or removes a key publishes a message;
// every other process drops its local copy and re-reads the shared tier next time.
//
// Delivery is best effort (Redis pub/sub semantics). Local entries still expire
// by TTL, so a lost message only widens the staleness window.
package bus

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("bus: closed")

// Op is the kind of invalidation.
type Op uint8

const (
	OpRemove       Op = iota + 1 // drop one key
	OpRemovePrefix               // drop every key with the literal prefix
)

func (o Op) String() string {
	switch o {
	case OpRemove:
		return "remove"
	case OpRemovePrefix:
		return "remove_prefix"
	default:
		return "unknown"
	}
}

// Message is one invalidation. Origin is stamped by the bus on Publish.
type Message struct {
	Origin string `msgpack:"o"`
	Op     Op     `msgpack:"op"`
	Key    string `msgpack:"k"`
}

// Bus publishes invalidations and delivers the ones published by others.
// Messages published through a Bus are never delivered back to it.
type Bus interface {
	Publish(ctx context.Context, m Message) error
	// Messages is closed by Close.
	Messages() <-chan Message
	Close() error
}
