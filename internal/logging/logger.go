package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging with redaction support.
// Messages are printf-formatted; values wrapped in Secret never reach the output.
type Logger struct {
	zl      zerolog.Logger
	debug   bool
	noColor bool
}

// New creates a logger writing to stderr.
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger writing to w. Tests use it to capture output.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i interface{}) string {
			return levelSymbol(fmt.Sprint(i), noColor)
		},
	}

	return &Logger{
		zl:      zerolog.New(console).Level(level),
		debug:   debug,
		noColor: noColor,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger tagged with a component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		zl:      l.zl.With().Str("component", component).Logger(),
		debug:   l.debug,
		noColor: l.noColor,
	}
}

// DebugEnabled reports whether debug messages are emitted.
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func levelSymbol(level string, noColor bool) string {
	var symbol, color string
	switch level {
	case zerolog.LevelInfoValue:
		symbol, color = "✓", "\033[32m"
	case zerolog.LevelWarnValue:
		symbol, color = "⚠", "\033[33m"
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		symbol, color = "✗", "\033[31m"
	case zerolog.LevelDebugValue:
		symbol, color = "[DEBUG]", "\033[36m"
	default:
		symbol = strings.ToUpper(level)
	}
	if noColor || color == "" {
		return symbol
	}
	return color + symbol + "\033[0m"
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
