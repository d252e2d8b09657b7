// Package applog builds the process-wide zap logger. Every component
// receives its logger through its constructor; nothing reaches for a
// package-level global (spec §9, "Replacing global singletons").
package applog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level ("debug", "info", "warn",
// "error"; unrecognised values fall back to "info"). Output is console
// encoded: a human-first logger for a single-machine, single-user
// process rather than a service shipping JSON logs to an aggregator.
func New(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// zap's own config never fails to build with these fields; fall
		// back to a no-op logger rather than panic a desktop agent.
		return zap.NewNop()
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
