package sketch

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestQuantiles(t *testing.T) {
	h, err := New(0.01)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 1; i <= 100; i++ {
		h.Loaded("k", time.Duration(i)*time.Millisecond, nil)
	}
	h.Loaded("k", 5*time.Millisecond, errors.New("db"))

	st, err := h.Stats("ok")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Count != 100 {
		t.Fatalf("count = %d", st.Count)
	}
	if math.Abs(st.P50-50) > 1.5 || math.Abs(st.Max-100) > 1.5 {
		t.Fatalf("p50=%v max=%v", st.P50, st.Max)
	}
	if !strings.Contains(st.String(), "n=100") {
		t.Fatalf("String() = %q", st.String())
	}

	errSt, err := h.Stats("error")
	if err != nil || errSt.Count != 1 {
		t.Fatalf("error stats: %+v err=%v", errSt, err)
	}
	if _, err := h.Stats("nothing"); err == nil {
		t.Fatalf("expected error for unknown outcome")
	}
}

func TestNewRejectsInvalidAccuracy(t *testing.T) {
	for _, acc := range []float64{0, -0.5, 1, 2} {
		h, err := New(acc)
		if err == nil || h != nil {
			t.Fatalf("New(%v): expected error, got h=%v err=%v", acc, h, err)
		}
	}
}
