package logger

import (
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var (
	output io.Writer = os.Stdout

	sharedOnce sync.Once
	shared     *logrus.Logger
)

// SetOutput redirects the shared logger and every logger created afterwards.
// Tests use io.Discard.
func SetOutput(w io.Writer) {
	output = w
	sharedLogger().SetOutput(w)
}

// sharedLogger is the logger every Component entry derives from. It reads the
// environment once.
func sharedLogger() *logrus.Logger {
	sharedOnce.Do(func() { shared = newBase() })
	return shared
}

func New() *Logger {
	return &Logger{Entry: logrus.NewEntry(newBase())}
}

func newBase() *logrus.Logger {
	base := logrus.New()

	// Local env = pretty console; others = JSON
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(output)

	// Log level
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return base
}

// Component returns an entry of the shared logger tagged with the component
// name.
func Component(name string) *Logger {
	return &Logger{Entry: sharedLogger().WithField("component", name)}
}

// RequestID returns the caller's X-Request-ID or a fresh one.
func RequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
