// Package sketch tracks retriever latency quantiles with DDSketch.
package sketch

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/unkn0wn-root/hybridcache"
)

// Hooks records Loaded durations in milliseconds, split by outcome
// ("ok" or "error"). Other events are ignored.
type Hooks struct {
	hybridcache.NopHooks

	mu               sync.Mutex
	sketches         map[string]*ddsketch.DDSketch
	relativeAccuracy float64
}

var _ hybridcache.Hooks = (*Hooks)(nil)

// New creates a tracker; relativeAccuracy of 0.01 means quantiles within 1%.
// It must lie in (0, 1).
func New(relativeAccuracy float64) (*Hooks, error) {
	if _, err := ddsketch.LogUnboundedDenseDDSketch(relativeAccuracy); err != nil {
		return nil, fmt.Errorf("sketch: relative accuracy %v: %w", relativeAccuracy, err)
	}
	return &Hooks{
		sketches:         make(map[string]*ddsketch.DDSketch),
		relativeAccuracy: relativeAccuracy,
	}, nil
}

func (h *Hooks) Loaded(_ string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sketches[outcome]
	if !ok {
		// accuracy was validated by New
		s, _ = ddsketch.LogUnboundedDenseDDSketch(h.relativeAccuracy)
		h.sketches[outcome] = s
	}
	_ = s.Add(float64(took.Microseconds()) / 1000.0)
}

type Stats struct {
	Outcome string
	Count   int64
	P50     float64
	P90     float64
	P99     float64
	Max     float64
}

func (s Stats) String() string {
	if s.Count == 0 {
		return fmt.Sprintf("load %s: no data", s.Outcome)
	}
	return fmt.Sprintf("load %s (n=%d): p50=%.2fms p90=%.2fms p99=%.2fms max=%.2fms",
		s.Outcome, s.Count, s.P50, s.P90, s.P99, s.Max)
}

// Stats returns the quantiles for outcome, or an error when nothing was recorded.
func (h *Hooks) Stats(outcome string) (Stats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sketches[outcome]
	if !ok {
		return Stats{}, fmt.Errorf("sketch: no data for %q", outcome)
	}
	out := Stats{Outcome: outcome, Count: int64(s.GetCount())}
	if out.Count == 0 {
		return out, nil
	}
	out.P50, _ = s.GetValueAtQuantile(0.50)
	out.P90, _ = s.GetValueAtQuantile(0.90)
	out.P99, _ = s.GetValueAtQuantile(0.99)
	out.Max, _ = s.GetMaxValue()
	return out, nil
}
