// Package zap adapts a zap logger to hybridcache.Logger.
package zap

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/hybridcache"
)

var _ hybridcache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New builds a zap logger writing to w. format "json" selects the JSON encoder,
// anything else the console one. An unknown level falls back to info.
func New(w io.Writer, level, format string) Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	enc := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(enc)
	} else {
		encoder = zapcore.NewConsoleEncoder(enc)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return Logger{L: zap.New(core).Named("hybridcache")}
}

func (z Logger) Debug(msg string, f hybridcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f hybridcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f hybridcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f hybridcache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f hybridcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
