package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zap level name (debug, info, warn, error). Empty means warn,
	// so regular command output stays clean.
	Level string
	// File enables a JSON log file rotated by lumberjack.
	File string
	// Console receives human-readable logs. Defaults to stderr.
	Console io.Writer
}

// New builds the CLI logger: a console core on stderr, teed with a rotated
// JSON file core when a log file is configured.
func New(opts Options) (*zap.Logger, error) {
	level := opts.Level
	if level == "" {
		level = "warn"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), lvl),
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "ts"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		// The file keeps info and above even when the console is quieter.
		fileLevel := min(lvl, zapcore.InfoLevel)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), fileLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
