package kernel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	entries []Entry
}

func (c *captureLogger) Log(e Entry) { c.entries = append(c.entries, e) }

func TestJSONLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf)

	l.Log(Entry{Level: LevelInfo, Category: "dispatch", Message: "TaskNext"})
	l.Log(Entry{Level: LevelDebug, Category: "periodic", Message: "release"})
	l.Log(Entry{Level: LevelError, Category: "abort", Message: "rtos: PeriodicOverran"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"category":"dispatch"`)
	require.Contains(t, lines[0], `"msg":"TaskNext"`)
	require.Contains(t, lines[1], `"category":"periodic"`)
	require.Contains(t, lines[2], `"lvl":"err"`)
	require.Contains(t, lines[2], `"msg":"rtos: PeriodicOverran"`)
}

func TestRateLimitedLoggerThrottlesPerCategory(t *testing.T) {
	capture := &captureLogger{}
	l := NewRateLimitedLogger(capture, map[time.Duration]int{time.Hour: 1})

	l.Log(Entry{Level: LevelDebug, Category: "dispatch", Message: "a"})
	l.Log(Entry{Level: LevelDebug, Category: "dispatch", Message: "b"})
	l.Log(Entry{Level: LevelDebug, Category: "periodic", Message: "c"})

	require.Len(t, capture.entries, 2)
	require.Equal(t, "a", capture.entries[0].Message)
	require.Equal(t, "c", capture.entries[1].Message)
}

func TestRateLimitedLoggerNeverDropsErrors(t *testing.T) {
	capture := &captureLogger{}
	l := NewRateLimitedLogger(capture, map[time.Duration]int{time.Hour: 1})

	for i := 0; i < 3; i++ {
		l.Log(Entry{Level: LevelError, Category: "abort", Message: "fatal"})
	}
	require.Len(t, capture.entries, 3)
}
