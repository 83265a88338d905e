package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// New returns a JSON slog.Logger writing to w. Every entry carries "ts" (RFC 3339 with
// nanoseconds, in loc) and a lower-case "level". A nil loc means UTC.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String(slog.LevelKey, strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return slog.New(h)
}

// Stdout returns a logger writing to standard output and installs it as the slog default.
func Stdout(loc *time.Location) *slog.Logger {
	l := New(os.Stdout, loc)
	slog.SetDefault(l)
	return l
}

// Err wraps err as the "error" attribute.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
