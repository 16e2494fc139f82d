package hybridcache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A read was served by tier.
	Hit(tier TierKind, key string)

	// Both tiers missed.
	Miss(key string)

	// The retriever ran for key (err is the retriever's error, if any).
	Loaded(key string, took time.Duration, err error)

	// Writing a distributed hit back into the local tier failed. The read still succeeded.
	BackfillFailed(key string, err error)

	// A write or remove failed on one tier. op ∈ {"set", "refresh", "load", "remove", "remove_prefix"}
	WriteFailed(op, key string, tier TierKind, err error)

	// Publishing to or handling a message from the invalidation bus failed.
	BusError(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(TierKind, string)                        {}
func (NopHooks) Miss(string)                                 {}
func (NopHooks) Loaded(string, time.Duration, error)         {}
func (NopHooks) BackfillFailed(string, error)                {}
func (NopHooks) WriteFailed(string, string, TierKind, error) {}
func (NopHooks) BusError(string, error)                      {}

// Fanout calls every hook in order.
func Fanout(hooks ...Hooks) Hooks {
	out := make(fanout, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

type fanout []Hooks

func (f fanout) Hit(t TierKind, k string) {
	for _, h := range f {
		h.Hit(t, k)
	}
}

func (f fanout) Miss(k string) {
	for _, h := range f {
		h.Miss(k)
	}
}

func (f fanout) Loaded(k string, took time.Duration, err error) {
	for _, h := range f {
		h.Loaded(k, took, err)
	}
}

func (f fanout) BackfillFailed(k string, err error) {
	for _, h := range f {
		h.BackfillFailed(k, err)
	}
}

func (f fanout) WriteFailed(op, k string, t TierKind, err error) {
	for _, h := range f {
		h.WriteFailed(op, k, t, err)
	}
}

func (f fanout) BusError(op string, err error) {
	for _, h := range f {
		h.BusError(op, err)
	}
}
