package kernel

import (
	"io"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Level is a log severity. The kernel itself emits one Debug entry per
// handled request (category "dispatch") and one Error entry on the
// fatal abort path (category "abort"); it emits nothing at Info.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// Entry is one structured log record. Category names the subsystem
// that produced it (the kernel uses "dispatch" and "abort"),
// so sinks can filter by subsystem rather than parse freeform
// messages.
type Entry struct {
	Level    Level
	Category string
	Message  string
}

// Logger receives kernel diagnostics. The zero-cost default is
// [NoopLogger]; [NewJSONLogger] wires a real structured backend.
type Logger interface {
	Log(Entry)
}

// NoopLogger discards every entry. It is the default so that
// constructing a [Kernel] never requires picking a logging backend.
type NoopLogger struct{}

func (NoopLogger) Log(Entry) {}

// logifaceLogger adapts [Entry] onto a logiface pipeline backed by the
// stumpy JSON event encoder.
type logifaceLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

// NewJSONLogger builds a [Logger] that writes newline-delimited JSON
// to w, one object per [Entry], via github.com/joeycumines/logiface
// using the github.com/joeycumines/stumpy backend.
func NewJSONLogger(w io.Writer) Logger {
	return &logifaceLogger{
		l: stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
			stumpy.L.WithLevel(stumpy.L.LevelDebug()),
		),
	}
}

func (g *logifaceLogger) Log(e Entry) {
	switch e.Level {
	case LevelDebug:
		if ev := g.l.Debug(); ev != nil {
			ev.Str("category", e.Category).Log(e.Message)
		}
	case LevelError:
		if ev := g.l.Err(); ev != nil {
			ev.Str("category", e.Category).Log(e.Message)
		}
	default:
		if ev := g.l.Info(); ev != nil {
			ev.Str("category", e.Category).Log(e.Message)
		}
	}
}

// rateLimitedLogger throttles a wrapped [Logger] per [Entry.Category]
// using github.com/joeycumines/go-catrate's sliding-window limiter.
// The dispatch-transition log line fires on every request the kernel
// handles — every tick, every yield — which at a fast tick period
// would otherwise flood whatever sink NewJSONLogger is writing to;
// this bounds it to the configured rates without dropping Error-level
// entries, which always pass through untouched.
type rateLimitedLogger struct {
	next    Logger
	limiter *catrate.Limiter
}

// NewRateLimitedLogger wraps next so that Debug and Info entries are
// subject to the supplied per-category rates (e.g.
// {time.Second: 50}), while Error entries (the abort path) always pass
// through.
func NewRateLimitedLogger(next Logger, rates map[time.Duration]int) Logger {
	return &rateLimitedLogger{next: next, limiter: catrate.NewLimiter(rates)}
}

func (r *rateLimitedLogger) Log(e Entry) {
	if e.Level == LevelError {
		r.next.Log(e)
		return
	}
	if _, ok := r.limiter.Allow(e.Category); !ok {
		return
	}
	r.next.Log(e)
}
