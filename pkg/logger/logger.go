package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before InitLogger runs so packages and tests never see nil.
var Log = logrus.New()

type requestIDKey struct{}

func InitLogger(level string) {
	Log = logrus.New()

	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns an entry on Log tagged with the request id in ctx.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(Log)
	if ctx == nil {
		return entry
	}
	if id := RequestID(ctx); id != "" {
		return entry.WithField("request_id", id)
	}
	return entry
}
