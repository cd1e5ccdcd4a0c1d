package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/newthinker/sigchart/internal/trace"
)

// New creates a zap logger. Debug mode uses the colored development
// encoder at debug level; release mode logs JSON at info level.
func New(mode string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config

	if debug || mode == "debug" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(mode string, debug bool) *zap.Logger {
	log, err := New(mode, debug)
	if err != nil {
		panic(err)
	}
	return log
}

// WithTrace annotates log with the trace and span IDs carried by ctx.
func WithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	traceID, spanID, ok := trace.Fields(ctx)
	if !ok {
		return log
	}
	return log.With(zap.String("trace_id", traceID), zap.String("span_id", spanID))
}
