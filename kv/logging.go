package kv

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/codb/kv/store"
)

const (
	// DefaultLogLevel is used when LogOptions.Level is empty.
	DefaultLogLevel = "info"

	// LogFormatJSON emits one JSON object per line.
	LogFormatJSON = "json"
	// LogFormatConsole emits human-readable, colored lines.
	LogFormatConsole = "console"
)

// NewLogger builds a zap logger writing to stderr according to opts.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	level, err := parseLogLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	if err := validateLogFormat(opts.Format); err != nil {
		return nil, err
	}

	var cfg zap.Config
	if strings.EqualFold(opts.Format, LogFormatConsole) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoggerBuildFailed, err)
	}

	return logger, nil
}

// parseLogLevel maps a level name onto zapcore.Level. Empty input means DefaultLogLevel.
func parseLogLevel(level string) (zapcore.Level, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		trimmed = DefaultLogLevel
	}

	parsed, err := zapcore.ParseLevel(strings.ToLower(trimmed))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: log.level: %w", store.ErrOptionsInvalid, err)
	}

	return parsed, nil
}

// validateLogFormat accepts "", "json" and "console".
func validateLogFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", LogFormatJSON, LogFormatConsole:
		return nil
	default:
		return fmt.Errorf("%w: log.format %q; valid values are: %q, %q",
			store.ErrOptionsInvalid, format, LogFormatJSON, LogFormatConsole)
	}
}
