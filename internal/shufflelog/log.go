// Package shufflelog wraps zap for the structured trace logging the
// planner and CLI emit, trimmed from the richer Logger interface this
// codebase's lineage exposes down to the handful of levels the planner
// actually uses.
package shufflelog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, structured logging surface the planner and
// CLI depend on.
type Logger interface {
	Debugw(msg string, keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(name string) Logger
}

type log struct {
	*zap.SugaredLogger
}

func (l *log) With(args ...interface{}) Logger {
	return &log{l.SugaredLogger.With(args...)}
}

func (l *log) Named(name string) Logger {
	return &log{l.SugaredLogger.Named(name)}
}

// Level selects the minimum severity a Logger emits.
type Level int

const (
	DebugLevel Level = Level(zapcore.DebugLevel)
	InfoLevel  Level = Level(zapcore.InfoLevel)
	WarnLevel  Level = Level(zapcore.WarnLevel)
	ErrorLevel Level = Level(zapcore.ErrorLevel)
)

// ParseLevel maps a config/flag string to a Level, defaulting to Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// New returns a console-encoded Logger at the given level, writing to
// stderr.
func New(level Level) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	cfg.OutputPaths = []string{"stderr"}
	zl, err := cfg.Build()
	if err != nil {
		// Building the development config from constants never
		// fails in practice; fall back to the always-valid no-op
		// logger rather than panicking a CLI.
		return Nop()
	}
	return &log{zl.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &log{zap.NewNop().Sugar()}
}
