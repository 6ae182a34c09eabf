// File: internal/observability/sink.go
package observability

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xkilldash9x/snakepilot/internal/config"
)

// fileSink returns a rotating writer for cfg.LogFile, or nil when file logging is off.
func fileSink(cfg config.LoggerConfig) zapcore.WriteSyncer {
	if cfg.LogFile == "" {
		return nil
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}
