// Package log provides structured logging for variable-importance estimation.
//
// The package is built on log/slog with a JSON handler and a wrapper that
// extracts stack traces from cockroachdb/errors values, so estimation
// failures log with their origin. Domain attribute keys (measure type, fold
// counts, sample sizes) live in attributes.go so all packages log the same
// vocabulary.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs the default JSON logger at the given level.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
