package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the map-field logging interface handed to handlers and the server.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	Sync() error
}

// New builds a zap logger. Unknown levels fall back to info. format "json"
// selects the production encoder with ISO8601 timestamps, anything else the
// console encoder. output is a zap sink ("stdout", "stderr" or a file path).
func New(levelStr, format, output string) *zap.Logger {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		// Every request line matters more than log volume here.
		cfg.Sampling = nil
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if output != "" {
		cfg.OutputPaths = []string{output}
	}

	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return built
}

type zapWrapper struct {
	l *zap.Logger
}

// write skips field conversion entirely when level is disabled.
func (z *zapWrapper) write(level zapcore.Level, msg string, fields map[string]interface{}) {
	if ce := z.l.Check(level, msg); ce != nil {
		ce.Write(mapToZapFields(fields)...)
	}
}

func (z *zapWrapper) Debug(msg string, fields map[string]interface{}) {
	z.write(zapcore.DebugLevel, msg, fields)
}

func (z *zapWrapper) Info(msg string, fields map[string]interface{}) {
	z.write(zapcore.InfoLevel, msg, fields)
}

func (z *zapWrapper) Warn(msg string, fields map[string]interface{}) {
	z.write(zapcore.WarnLevel, msg, fields)
}

func (z *zapWrapper) Error(msg string, fields map[string]interface{}) {
	z.write(zapcore.ErrorLevel, msg, fields)
}

func (z *zapWrapper) WithFields(fields map[string]interface{}) Logger {
	return &zapWrapper{l: z.l.With(mapToZapFields(fields)...)}
}

func (z *zapWrapper) WithError(err error) Logger {
	return &zapWrapper{l: z.l.With(zap.Error(err))}
}

func (z *zapWrapper) Sync() error {
	return z.l.Sync()
}

// mapToZapFields keeps errors as error fields so encoders render them as text.
func mapToZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case error:
			out = append(out, zap.NamedError(k, val))
		case string:
			out = append(out, zap.String(k, val))
		default:
			out = append(out, zap.Any(k, val))
		}
	}
	return out
}

// NewStructured is New wrapped in the Logger interface.
func NewStructured(levelStr, format, output string) Logger {
	return &zapWrapper{l: New(levelStr, format, output)}
}

// NewZapAdapter exposes an existing *zap.Logger (e.g. the boot logger in main)
// through the Logger interface.
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapWrapper{l: l}
}

func NewTestLogger(t testing.TB) Logger {
	return &zapWrapper{l: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &zapWrapper{l: zap.NewNop()}
}
