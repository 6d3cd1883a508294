package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel maps debug|info|warn|error|off to a zerolog level. Unknown or
// empty values fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a console logger writing to w (stderr when nil).
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Default is the logger packages use until SetLogger is called.
func Default() zerolog.Logger {
	return New("info", nil)
}
