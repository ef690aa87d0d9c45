// Package logger builds the zap logger the daemon and library share.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger at the given level. With a file path it uses the
// production JSON config writing to both the file and stdout; otherwise it
// uses the human-readable development config. Unknown levels fall back to
// info.
func New(level, file string) (*zap.Logger, error) {
	var cfg zap.Config

	if file != "" {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{file, "stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
