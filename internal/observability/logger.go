// File: internal/observability/logger.go
package observability

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/snakepilot/internal/config"
)

const defaultServiceName = "snakepilot"

var (
	// global holds the process logger. It is nil until Initialize runs.
	global   atomic.Pointer[zap.Logger]
	initOnce sync.Once
)

// Initialize builds the process logger from cfg, writing console output to w.
// Only the first call has an effect; tests undo it with ResetForTest.
func Initialize(cfg config.LoggerConfig, w zapcore.WriteSyncer) {
	initOnce.Do(func() {
		logger := build(cfg, w)
		global.Store(logger)

		// Libraries that log through zap's globals or the standard logger end up here too.
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger initializes the process logger on a locked stdout.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// ResetForTest forgets the process logger so the next Initialize takes effect. Tests only.
func ResetForTest() {
	global.Store(nil)
	initOnce = sync.Once{}
}

func build(cfg config.LoggerConfig, w zapcore.WriteSyncer) *zap.Logger {
	level := parseLevel(cfg.Level)

	cores := []zapcore.Core{zapcore.NewCore(newEncoder(cfg), w, level)}
	if sink := fileSink(cfg); sink != nil {
		cores = append(cores, zapcore.NewCore(jsonEncoder(), sink, level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	return zap.New(zapcore.NewTee(cores...), opts...).Named(name)
}

// parseLevel reads a level name, falling back to info.
func parseLevel(text string) zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(text)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}

// GetLogger returns the process logger. Before Initialize it hands out a
// development logger so early callers still see their output.
func GetLogger() *zap.Logger {
	if logger := global.Load(); logger != nil {
		return logger
	}
	fallback, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	fallback.Warn("Global logger requested before initialization; using fallback.")
	return fallback.Named("fallback")
}

// Component returns the process logger named after a subsystem, e.g. "snakepilot.pilot".
func Component(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// Sync flushes the process logger. Call it before exiting.
func Sync() {
	logger := global.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !ignorableSyncError(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

// ignorableSyncError reports whether err only says the console cannot be fsynced.
// Terminals and pipes reject fsync with one of these depending on the platform.
func ignorableSyncError(err error) bool {
	for _, errno := range []syscall.Errno{syscall.EINVAL, syscall.ENOTTY, syscall.ENOTSUP, syscall.EBADF} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
