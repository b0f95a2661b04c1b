// Package logging wraps log/slog the way the reference corpus's own
// logging package does: no third-party logging framework, just level and
// format parsing from strings plus a handler constructor, grounded on
// MacroPower-x/log's CreateHandler/GetLevel/GetFormat.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Format selects the slog handler's output encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// GetLevel parses a case-insensitive level name.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, ErrUnknownLevel
}

// GetFormat parses a case-insensitive format name.
func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if f == FormatJSON || f == FormatLogfmt {
		return f, nil
	}
	return "", ErrUnknownFormat
}

// CreateHandler builds a slog.Handler for the given level and format.
func CreateHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}
	return nil
}

// New builds a *slog.Logger from string level/format, falling back to
// slog.Default() if either fails to parse — a compiler's own logging
// should never be the reason a compilation cannot proceed.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl, err := GetLevel(level)
	if err != nil {
		return slog.Default()
	}
	fmtv, err := GetFormat(format)
	if err != nil {
		return slog.Default()
	}
	h := CreateHandler(w, lvl, fmtv)
	if h == nil {
		return slog.Default()
	}
	return slog.New(h)
}
