// Package config provides environment-driven defaults for the engine,
// modeled one-for-one on the teacher's envconfig package: exported
// functions reading DENSEFORGE_* variables with documented defaults, using
// the same strings.TrimSpace/strconv/slog.Warn-on-bad-value idiom.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Var returns the trimmed value of the named environment variable, or ""
// if unset.
func Var(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// Policy returns the default kernel policy ("reference" or "vector").
// Configurable via DENSEFORGE_POLICY. Default: "reference".
func Policy() string {
	if s := Var("DENSEFORGE_POLICY"); s != "" {
		switch strings.ToLower(s) {
		case "reference", "vector":
			return strings.ToLower(s)
		default:
			slog.Warn("invalid DENSEFORGE_POLICY, using default", "value", s, "default", "reference")
		}
	}
	return "reference"
}

// Mode returns the default execution mode ("research" or "deployment").
// Configurable via DENSEFORGE_MODE. Default: "research".
func Mode() string {
	if s := Var("DENSEFORGE_MODE"); s != "" {
		switch strings.ToLower(s) {
		case "research", "deployment":
			return strings.ToLower(s)
		default:
			slog.Warn("invalid DENSEFORGE_MODE, using default", "value", s, "default", "research")
		}
	}
	return "research"
}

// NumThreads returns the number of worker threads callers should assume is
// available for CPU execution. The engine itself is single-threaded
// (§5) — this is informative, for callers sizing their own batching.
// Configurable via DENSEFORGE_NUM_THREADS. Default: 1.
func NumThreads() int {
	if s := Var("DENSEFORGE_NUM_THREADS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		slog.Warn("invalid DENSEFORGE_NUM_THREADS, using default", "value", s, "default", 1)
	}
	return 1
}

// ArenaBlockSize returns the arena's block growth size in bytes.
// Configurable via DENSEFORGE_ARENA_BLOCK_SIZE. Default: 4 MiB.
func ArenaBlockSize() int {
	const mebibyte = 1 << 20
	if s := Var("DENSEFORGE_ARENA_BLOCK_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		slog.Warn("invalid DENSEFORGE_ARENA_BLOCK_SIZE, using default", "value", s, "default", 4*mebibyte)
	}
	return 4 * mebibyte
}
