package mapper

import (
	"log/slog"

	"tree-mapper/options"
)

// Config holds mapper settings.
type Config struct {
	// Categories selects the scalar coercions decoding may apply.
	Categories options.CategoryEnum
	// Logger receives debug records about introspection and converter
	// registration. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Categories: options.CategoryDefault,
	}
}
