package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// at the named level. Logs go to standard error so they never mix with rendered trees or
// MCP traffic on standard output.
func NewApplicationLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = DefaultLogLevel
	}
	atomicLevel, levelError := zap.ParseAtomicLevel(level)
	if levelError != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, levelError)
	}
	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.LevelKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
