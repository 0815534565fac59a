package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger backed by zap.
type Logger struct {
	s *zap.SugaredLogger
}

// New creates a production logger at the given level.
func New(level string) (logger *Logger) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := cfg.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}

	logger = &Logger{s: z.Sugar()}
	return logger
}

// NewDevelopment creates a human-readable console logger, used by the CLI in verbose mode.
func NewDevelopment(level string) (logger *Logger) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}

	logger = &Logger{s: z.Sugar()}
	return logger
}

// NewNop returns a logger that discards everything.
func NewNop() (logger *Logger) {
	logger = &Logger{s: zap.NewNop().Sugar()}
	return logger
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...any) (child *Logger) {
	child = &Logger{s: l.s.With(keyvals...)}
	return child
}

func (l *Logger) Debug(msg string, keyvals ...any) {
	l.s.Debugw(msg, keyvals...)
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.s.Infow(msg, keyvals...)
}

func (l *Logger) Warn(msg string, keyvals ...any) {
	l.s.Warnw(msg, keyvals...)
}

func (l *Logger) Error(msg string, keyvals ...any) {
	l.s.Errorw(msg, keyvals...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() (err error) {
	err = l.s.Sync()
	return err
}

func parseLevel(level string) (lvl zapcore.Level) {
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}
	return lvl
}

type ctxKey struct{}

// IntoContext stores l in ctx.
func IntoContext(ctx context.Context, l *Logger) (derived context.Context) {
	derived = context.WithValue(ctx, ctxKey{}, l)
	return derived
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback *Logger) (l *Logger) {
	if stored, ok := ctx.Value(ctxKey{}).(*Logger); ok && stored != nil {
		l = stored
		return l
	}

	l = fallback
	if l == nil {
		l = NewNop()
	}
	return l
}
