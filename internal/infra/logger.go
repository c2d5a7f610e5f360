package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases the zerolog.Logger so callers outside the infra package can
// depend on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger

// LogOptions selects where NewLogger writes and what it keeps.
type LogOptions struct {
	AppEnv    string
	Component string
	// Level overrides the per-environment default; see LogLevel.
	Level string
	// Out defaults to stdout. The CLIs pass stderr so stdout stays JSON only.
	Out io.Writer
}

// NewLogger builds the process logger. Development writes console lines,
// every other environment writes one JSON object per event tagged with env.
func NewLogger(opts LogOptions) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.AppEnv == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}
	}

	ctx := zerolog.New(out).
		Level(LogLevel(opts.AppEnv, opts.Level)).
		With().
		Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	if opts.AppEnv != "" && opts.AppEnv != "development" {
		ctx = ctx.Str("env", opts.AppEnv)
	}
	return ctx.Logger()
}

// LogLevel resolves the minimum level. An explicit override such as "warn"
// wins; otherwise development logs debug and the rest info. Unparseable
// overrides fall back to the environment default.
func LogLevel(appEnv, override string) zerolog.Level {
	if override = strings.TrimSpace(override); override != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(override)); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
	}
	if appEnv == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
