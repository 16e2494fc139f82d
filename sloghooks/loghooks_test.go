package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/hybridcache"
)

func newBuf(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestKeysAreRedacted(t *testing.T) {
	h, buf := newBuf(Options{})
	h.WriteFailed("set", "user:secret@example.com", hybridcache.DistributedKey, errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "secret@example.com") {
		t.Fatalf("raw key leaked: %s", out)
	}
	if !strings.Contains(out, "hybridcache.write_failed") || !strings.Contains(out, "tier=distributed") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newBuf(Options{Redact: func(k string) string { return "<" + k + ">" }})
	h.BackfillFailed("k1", errors.New("full"))
	if !strings.Contains(buf.String(), "key=<k1>") {
		t.Fatalf("custom redactor not used: %s", buf.String())
	}
}

func TestLoadSampling(t *testing.T) {
	h, buf := newBuf(Options{LoadEvery: 3})
	for i := 0; i < 6; i++ {
		h.Loaded("k", time.Millisecond, nil)
	}
	if n := strings.Count(buf.String(), "hybridcache.loaded"); n != 2 {
		t.Fatalf("expected 2 sampled lines, got %d", n)
	}

	buf.Reset()
	h.Loaded("k", time.Millisecond, errors.New("db down"))
	if !strings.Contains(buf.String(), "hybridcache.load_failed") {
		t.Fatalf("failures are never sampled: %s", buf.String())
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.Loaded("k", 0, errors.New("x"))
	h.BackfillFailed("k", errors.New("x"))
	h.WriteFailed("set", "k", hybridcache.LocalKey, errors.New("x"))
	h.BusError("publish", errors.New("x"))
}
