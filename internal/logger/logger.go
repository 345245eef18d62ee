package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name to a zap level. Unknown names mean warn.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "", "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// New builds a logger writing to path, or stderr when path is empty. The
// terminal UI owns stdout, so interactive runs log to a file.
func New(level, path string) (*zap.Logger, error) {
	lvl := ParseLevel(level)

	var config zap.Config
	if lvl >= zapcore.WarnLevel {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		if path == "" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	if path != "" {
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}

	return config.Build()
}
