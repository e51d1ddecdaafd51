package brapp

import (
	"strings"

	"github.com/advdv/bresult"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding, BR_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build(zap.Fields(zap.String("service", env.serviceName())))
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

func newZapServerLogger(l *zap.Logger) bresult.Logger {
	return zapLogger{l.Named("bresult").Named("brapp")}
}

type zapErrorLogger struct{ *zap.Logger }

func (l zapErrorLogger) Error(tag string, err error) {
	l.Logger.Error(strings.TrimRight(tag, ": "), zap.Error(err))
}

// NewZapErrorLogger returns an [bresult.ErrorLogger] that logs every handled error at error level, with the tag as
// the message.
func NewZapErrorLogger(l *zap.Logger) bresult.ErrorLogger {
	return zapErrorLogger{l.Named("handler")}
}
