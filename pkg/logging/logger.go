// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Request payload assembly and header wiring
//   - Crumb extraction attempts (which strategy matched)
//   - Per-item pacing decisions
//
// Info: Normal operation events
//   - Batch run start/completion with run id and counts
//   - Per-code verification outcome (status, elapsed)
//   - Configuration loaded
//
// Warn: Warning conditions that don't prevent operation
//   - Non-2xx responses from the verify endpoint
//   - Undecodable response bodies (raw text carried instead)
//
// Error: Error conditions requiring attention
//   - Transport failures (DNS, connect, timeout, TLS)
//   - Credential validation failures
//   - Crumb extraction failures
//
// Context Fields:
//   - run_id: Batch run identifier
//   - seq: 1-based position of the code within the batch
//   - total: Batch size
//   - code: Verified code (truncated for display)
//   - status: HTTP status code (0 when the call never reached the wire)
//   - delay: Applied inter-call delay
//   - elapsed: Wall-clock time for the item including its delay
//   - error_class: Error classification (transport, rejection)
