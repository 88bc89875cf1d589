package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvironmentVariable selects the minimum log level (debug, info, warn, error).
const LogLevelEnvironmentVariable = "COPIER_LOG_LEVEL"

// NewApplicationLogger builds the stderr console logger at the level named by
// COPIER_LOG_LEVEL, or info when the variable is unset.
func NewApplicationLogger() (*zap.Logger, error) {
	level, err := ParseLogLevel(os.Getenv(LogLevelEnvironmentVariable))
	if err != nil {
		return nil, err
	}
	return newConsoleLogger(level)
}

// ParseLogLevel maps a level name to a zap level. An empty name is info.
func ParseLogLevel(name string) (zapcore.Level, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(trimmed))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%s: %w", LogLevelEnvironmentVariable, err)
	}
	return level, nil
}

// newConsoleLogger writes level-prefixed messages without timestamps or callers.
// Documents go to stdout, so logs stay on stderr.
func newConsoleLogger(level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		EncoderConfig:     encoderConfig,
		DisableCaller:     true,
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	return config.Build()
}
