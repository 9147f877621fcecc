// Package logging centralizes zap logger construction so every package in
// the core gets the same encoder, level, and output sink.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	base   *zap.Logger
	debug  bool
	inited bool
)

// SetDebug toggles debug-level logging for loggers created after this call.
// It does not retroactively change the level of already-issued loggers.
func SetDebug(d bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = d
	inited = false
}

// Named returns a logger scoped to the given component name, e.g.
// logging.Named("pipeline") yields entries tagged {"component": "pipeline"}.
func Named(component string) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if !inited {
		base = newBase(debug)
		inited = true
	}

	return base.With(zap.String("component", component))
}

func newBase(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build()
	if err != nil {
		// logging must never be fatal to the capture pipeline
		return zap.NewNop()
	}

	return l
}
