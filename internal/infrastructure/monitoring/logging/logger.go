// Package logging provides the structured logger used across SeqPrep.  It
// wraps zap behind a small interface so that packages depend on Logger, and
// tests can substitute a no-op or observed core.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/SeqPrep/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fields
// ─────────────────────────────────────────────────────────────────────────────

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field { return Field{Key: key, Value: val} }

func Int(key string, val int) Field { return Field{Key: key, Value: val} }

func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// Err records err under "error".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// ErrCode records the AppError code carried by err under "error_code".
func ErrCode(err error) Field {
	return Field{Key: "error_code", Value: errors.GetCode(err).String()}
}

// Stage names the pipeline stage an entry refers to.
func Stage(name string) Field { return Field{Key: "stage", Value: name} }

// SequenceID names the record being processed.
func SequenceID(id string) Field { return Field{Key: "sequence_id", Value: id} }

// ─────────────────────────────────────────────────────────────────────────────
// Logger
// ─────────────────────────────────────────────────────────────────────────────

// Logger is the logging contract used throughout the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger
	// Named returns a child logger with name appended to the logger name.
	Named(name string) Logger
	// Sync flushes buffered entries.
	Sync() error
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level            string
	Format           string // "json" | "console"
	OutputPaths      []string
	ErrorOutputPaths []string
}

type zapLogger struct {
	z     *zap.Logger
	level *zap.AtomicLevel
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...), level: l.level}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name), level: l.level}
}

func (l *zapLogger) Sync() error { return l.z.Sync() }

// SetLevel changes the level of a logger built by NewLogger, and of all its
// children, at runtime.  It reports false for loggers without an adjustable
// level.
func SetLevel(l Logger, level string) bool {
	zl, ok := l.(*zapLogger)
	if !ok || zl.level == nil {
		return false
	}
	zl.level.SetLevel(parseLevel(level))
	return true
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "warn", "WARN":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stdout"}
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	encoding := "json"
	encCfg := zap.NewProductionEncoderConfig()
	if cfg.Format == "console" {
		encoding = "console"
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zapCfg := zap.Config{
		Level:            level,
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build zap logger: %w", err)
	}
	return &zapLogger{z: z, level: &level}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core, typically an observer
// core in tests.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op logger and process default
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...Field) {}
func (nopLogger) Info(_ string, _ ...Field)  {}
func (nopLogger) Warn(_ string, _ ...Field)  {}
func (nopLogger) Error(_ string, _ ...Field) {}
func (nopLogger) Fatal(_ string, _ ...Field) {}
func (n nopLogger) With(_ ...Field) Logger   { return n }
func (n nopLogger) Named(_ string) Logger    { return n }
func (nopLogger) Sync() error                { return nil }

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// SetDefault replaces the process-wide logger used by the binaries.  Library
// packages receive their logger explicitly.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide logger.
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	return l
}
