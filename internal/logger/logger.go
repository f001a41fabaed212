package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

// New creates a new logger instance
func New(opts ...Option) *zerolog.Logger {
	config := &Config{
		output:       os.Stdout,
		level:        zerolog.InfoLevel,
		excludeParts: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
		isDev:        true,
	}

	for _, opt := range opts {
		opt.apply(config)
	}

	var out io.Writer = config.output
	if config.isDev {
		out = zerolog.ConsoleWriter{
			Out:          config.output,
			PartsExclude: config.excludeParts,
		}
	}

	// The file sink always gets JSON lines so rotated logs stay machine readable.
	if config.file != nil {
		out = zerolog.MultiLevelWriter(out, config.file)
	}

	logger := zerolog.New(out).
		Level(config.level).
		With().
		Timestamp().
		Logger()

	return &logger
}

func NewConsoleLogger() *zerolog.Logger {
	return New(
		WithLevel(constants.DefaultLogLevel),
		WithOutput(os.Stderr),
		WithConsoleWriter(true),
	)
}

// NewRotatingFile returns a size-rotated log file writer.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogFileMaxSizeMB,
		MaxBackups: constants.LogFileMaxBackups,
		MaxAge:     constants.LogFileMaxAgeDays,
		Compress:   true,
	}
}
