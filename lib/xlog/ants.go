package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger prints the ants pool messages, mostly the recovered
// task panics, at error level.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{
		logger: componentLogger(logger, "Ants"),
	}
}
