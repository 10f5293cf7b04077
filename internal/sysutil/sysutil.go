// Package sysutil holds process-level helpers for the adoptiond binary:
// global logger bootstrap and build version lookup.
package sysutil

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
// Unknown values fall back to info.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// NewLogger builds the process logger. Pretty output uses the zerolog
// console writer and is meant for local development only.
func NewLogger(w io.Writer, pretty bool, service, version string) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// InstallLogger sets the level and makes the logger global. It also becomes
// the fallback for zerolog.Ctx, so code running outside a request (CLI
// commands, background jobs) still logs.
func InstallLogger(level string, pretty bool, service, version string) zerolog.Logger {
	SetLogLevel(level)
	l := NewLogger(os.Stderr, pretty, service, version)
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l
}

// Version reports the binary version: the VERSION environment variable, then
// the main module version from build info, then "dev".
func Version() string {
	var fromBuild string
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "(devel)" {
		fromBuild = bi.Main.Version
	}
	return FirstNonEmpty(os.Getenv("VERSION"), fromBuild, "dev")
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
