package logger

import (
	"io"
	"log/slog"
	"net"
	"os"
	"time"
)

// New returns a JSON logger tagged with the service name and hostname.
func New(service string, debug bool) *slog.Logger {
	return NewWithWriter(os.Stdout, service, debug)
}

func NewWithWriter(w io.Writer, service string, debug bool) *slog.Logger {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = getFallbackHostname()
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h).With("service", service, "hostname", hostname)
}

// Discard is used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Fallback if os.Hostname() fails
func getFallbackHostname() string {
	addrs, _ := net.InterfaceAddrs()
	if len(addrs) > 0 {
		return addrs[0].String()
	}
	return "unknown-host"
}
