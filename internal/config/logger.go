package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// LoggingConfig selects the console verbosity: none, normal or debug.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Prepare returns the console logger. Errors go to stderr, everything else
// enabled by the level to stdout.
func (conf *LoggingConfig) Prepare() *zap.Logger {
	var low zapcore.Level
	switch conf.Level {
	case "debug":
		low = zapcore.DebugLevel
	case "normal":
		low = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return low <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(os.Stdout), zapcore.Lock(os.Stdout), lowPriority),
		zapcore.NewCore(consoleEncoder(os.Stderr), zapcore.Lock(os.Stderr), highPriority),
	)
	return zap.New(core).Named("epubnav")
}

func consoleEncoder(stream *os.File) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// EnableColorOutput reports whether stream is a terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
