// File: internal/observability/encoder.go
package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/snakepilot/internal/config"
)

const (
	timeLayout = "2006-01-02T15:04:05.000Z07:00"
	ansiReset  = "\x1b[0m"
)

// palette maps the color names accepted in config to ANSI codes.
var palette = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

// newEncoder picks the console encoder for Format "console" and JSON otherwise.
func newEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	if cfg.Format == "console" {
		return consoleEncoder(cfg.Colors)
	}
	return jsonEncoder()
}

func baseEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	return ec
}

// jsonEncoder is used for machine-read output, including the log file.
func jsonEncoder() zapcore.Encoder {
	ec := baseEncoderConfig()
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}

// consoleEncoder writes one line per entry with a colored level and a dotted
// logger name, e.g. "snakepilot.pilot.loop.".
func consoleEncoder(colors config.ColorConfig) zapcore.Encoder {
	ec := baseEncoderConfig()
	ec.EncodeLevel = coloredLevel(levelCodes(colors))
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// levelCodes resolves the configured color names. Levels with an unknown or empty
// name are left out.
func levelCodes(colors config.ColorConfig) map[zapcore.Level]string {
	names := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.DPanic,
		zapcore.PanicLevel:  colors.Panic,
		zapcore.FatalLevel:  colors.Fatal,
	}
	codes := make(map[zapcore.Level]string, len(names))
	for level, name := range names {
		if code, ok := palette[strings.ToLower(name)]; ok {
			codes[level] = code
		}
	}
	return codes
}

func coloredLevel(codes map[zapcore.Level]string) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		text := level.CapitalString()
		if code, ok := codes[level]; ok {
			text = code + text + ansiReset
		}
		enc.AppendString(text)
	}
}
