// Package logrus adapts a logrus entry to hybridcache.Logger.
package logrus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/hybridcache"
)

var _ hybridcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New builds a logrus logger writing to w. An unknown level falls back to info;
// format "json" selects the JSON formatter, anything else the text one.
func New(w io.Writer, level, format string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return Logger{E: logrus.NewEntry(l).WithField("component", "hybridcache")}
}

func (l Logger) Debug(msg string, f hybridcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l Logger) Info(msg string, f hybridcache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f hybridcache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f hybridcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
