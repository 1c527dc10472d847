package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is the process logger. It stays a no-op until initLogging runs.
var logger = zap.NewNop()

// logConfig holds logging configuration.
type logConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// initLogging builds the process logger. Logs always go to stderr so stdout
// carries only the rendered bundle.
func initLogging(cfg logConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.WarnLevel
	}

	var config zap.Config
	if cfg.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	logger = l
	return l, nil
}
