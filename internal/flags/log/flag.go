// Package log provides the logging flags shared by the treemap commands. It
// supports JSON and text formats, the usual slog levels and stdout or stderr
// as destination.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tree-mapper/internal/flags/enum"
)

// Log format constants
const (
	FormatFlagName = "logformat"

	FormatJSON = "json"
	FormatText = "text"
)

// Log level constants
const (
	LevelFlagName = "loglevel"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log output constants
const (
	OutputFlagName = "logoutput"

	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// RegisterLoggingFlags adds FormatFlagName, LevelFlagName and OutputFlagName
// to the flag set. Logs go to stderr by default so they never mix with
// converted documents written to stdout.
//
//	--logformat json --loglevel debug --logoutput stderr
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	enum.Var(flagset, FormatFlagName, []string{
		FormatText,
		FormatJSON,
	}, "set the log output format")

	enum.Var(flagset, LevelFlagName, []string{
		LevelWarn,
		LevelDebug,
		LevelInfo,
		LevelError,
	}, "sets the logging level")

	enum.Var(flagset, OutputFlagName, []string{
		OutputStderr,
		OutputStdout,
	}, "set the log output destination")
}

// GetBaseLogger creates a logger from the flags of the command.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logLevel, err := loggerLevelFromCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to get log level: %w", err)
	}

	format, err := enum.Get(cmd.Flags(), FormatFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log format from the command flag: %w", err)
	}

	output, err := enum.Get(cmd.Flags(), OutputFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log output from the command flag: %w", err)
	}

	var outputWriter io.Writer
	switch output {
	case OutputStdout:
		outputWriter = cmd.OutOrStdout()
	case OutputStderr:
		outputWriter = cmd.ErrOrStderr()
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(outputWriter, opts)
	case FormatText:
		handler = slog.NewTextHandler(outputWriter, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func loggerLevelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	logLevel, err := enum.Get(cmd.Flags(), LevelFlagName)
	if err != nil {
		return slog.LevelWarn, err
	}

	switch logLevel {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", logLevel)
	}
}
