// Package logging builds the CLI's slog logger from its persistent flags.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// Flag names.
const (
	FlagLevel  = "loglevel"
	FlagFormat = "logformat"
	FlagDebug  = "debug"
)

// RegisterFlags adds --loglevel, --logformat and --debug to cmd.
func RegisterFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagLevel, "info", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(FlagFormat, "text", "set the log format (text, json)")
	cmd.PersistentFlags().BoolP(FlagDebug, "d", false, "enable debug logging")
}

// FromCommand builds a logger writing to w using the flags registered on cmd.
func FromCommand(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	level, err := Level(cmd)
	if err != nil {
		return nil, err
	}
	format, err := cmd.Flags().GetString(FlagFormat)
	if err != nil {
		return nil, err
	}
	return New(w, level, format)
}

// New creates a logger for the given level and format.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return slog.New(handler), nil
}

// Level resolves the effective log level. --debug wins over --loglevel.
func Level(cmd *cobra.Command) (slog.Level, error) {
	if debug, err := cmd.Flags().GetBool(FlagDebug); err == nil && debug {
		return slog.LevelDebug, nil
	}
	raw, err := cmd.Flags().GetString(FlagLevel)
	if err != nil {
		return slog.LevelInfo, err
	}
	return ParseLevel(raw)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", raw)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
