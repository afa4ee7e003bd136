package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus so services share one configured instance
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing to stdout at the given level.
// format is "json" or "text"; anything else falls back to text.
func New(level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return &Logger{Logger: l}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// Component returns an entry tagged with the component name
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithField("component", name)
}
