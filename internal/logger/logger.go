// Package logger provides named zerolog loggers for shipward subsystems.
//
// Loggers are created from a single root logger configured once via [Init].
// Subsystem getters guarantee consistent component names across the codebase.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(consoleWriter(os.Stderr)).Level(zerolog.WarnLevel).With().Timestamp().Logger()
)

// Init configures the root logger. Level is a zerolog level name ("debug",
// "info", ...); format is "console" or "json". Unknown values fall back to
// "info" and "console".
func Init(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if format != "json" {
		w = consoleWriter(os.Stderr)
	}

	mu.Lock()
	defer mu.Unlock()
	root = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}

// GetLogger returns a logger tagged with the given subsystem name.
func GetLogger(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}

// Static getters that map to the subsystems shipward logs from.

// GetReleaseLogger returns the logger for the release pipeline engine.
func GetReleaseLogger() zerolog.Logger { return GetLogger("release") }

// GetGitLogger returns the logger for git operations.
func GetGitLogger() zerolog.Logger { return GetLogger("git") }

// GetStoreLogger returns the logger for record storage.
func GetStoreLogger() zerolog.Logger { return GetLogger("store") }

// GetExtensionLogger returns the logger for extension discovery and runs.
func GetExtensionLogger() zerolog.Logger { return GetLogger("extension") }

// GetCLILogger returns the logger for command-line plumbing.
func GetCLILogger() zerolog.Logger { return GetLogger("cli") }
