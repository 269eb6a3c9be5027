// Package logger builds the structured logger shared by every component.
package logger

import (
	"io"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
)

// New returns a key/value logger writing to stdout. Every line carries a timestamp,
// the caller, the service name and, when the context holds a span, its trace and span ids.
// Debug lines are dropped unless debug is set.
func New(service string, debug bool) log.Logger {
	return newLogger(os.Stdout, service, debug)
}

// Discard returns a logger that writes nothing, for tests.
func Discard() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func newLogger(w io.Writer, service string, debug bool) log.Logger {
	l := log.With(log.NewStdLogger(w),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", service,
		"trace.id", tracing.TraceID(),
		"span.id", tracing.SpanID(),
	)
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}
	return log.NewFilter(l, log.FilterLevel(level))
}

// Module returns a helper whose lines are tagged with the given module name.
func Module(l log.Logger, name string) *log.Helper {
	return log.NewHelper(log.With(l, "module", name))
}
