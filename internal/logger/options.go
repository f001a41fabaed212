package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	output       io.Writer
	file         io.Writer
	level        zerolog.Level
	excludeParts []string
	isDev        bool
}

// Option configures the logger
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) {
	f(cfg)
}

// WithLevel sets the logger level
func WithLevel(level string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.level = ParseLevel(level)
	})
}

// WithConsoleWriter toggles the human readable console format
func WithConsoleWriter(isDev bool) Option {
	return optionFunc(func(cfg *Config) {
		cfg.isDev = isDev
	})
}

// WithOutput sets the output writer
func WithOutput(output io.Writer) Option {
	return optionFunc(func(cfg *Config) {
		cfg.output = output
	})
}

// WithFile tees every event into a rotating log file at path.
// An empty path leaves the logger unchanged.
func WithFile(path string) Option {
	return optionFunc(func(cfg *Config) {
		if path == "" {
			return
		}
		cfg.file = NewRotatingFile(path)
	})
}

// WithFileWriter tees every event into w.
func WithFileWriter(w io.Writer) Option {
	return optionFunc(func(cfg *Config) {
		cfg.file = w
	})
}

func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
