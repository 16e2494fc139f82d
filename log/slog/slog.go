// Package slog adapts a log/slog logger to hybridcache.Logger.
package slog

import (
	"context"
	"io"
	stdslog "log/slog"
	"strings"

	"github.com/unkn0wn-root/hybridcache"
)

var _ hybridcache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New builds a slog logger writing to w with a JSON or text handler.
func New(w io.Writer, level, format string) Logger {
	opts := &stdslog.HandlerOptions{Level: parseLevel(level)}
	var h stdslog.Handler
	if format == "json" {
		h = stdslog.NewJSONHandler(w, opts)
	} else {
		h = stdslog.NewTextHandler(w, opts)
	}
	return Logger{L: stdslog.New(h).With("component", "hybridcache")}
}

func (s Logger) Debug(msg string, f hybridcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelDebug, msg, attrs(f)...)
}
func (s Logger) Info(msg string, f hybridcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelInfo, msg, attrs(f)...)
}
func (s Logger) Warn(msg string, f hybridcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelWarn, msg, attrs(f)...)
}
func (s Logger) Error(msg string, f hybridcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelError, msg, attrs(f)...)
}

func attrs(f hybridcache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}

func parseLevel(s string) stdslog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return stdslog.LevelDebug
	case "warn", "warning":
		return stdslog.LevelWarn
	case "error":
		return stdslog.LevelError
	default:
		return stdslog.LevelInfo
	}
}
