package testutil

import (
	"bytes"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewTestLogger returns a debug-level console logger on stdout.
func NewTestLogger() *zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return &logger
}

// NewBufferedLogger tees JSON log lines into the returned buffer so tests
// can assert on what was logged.
func NewBufferedLogger() (*zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	consoleWriter := zerolog.ConsoleWriter{
		Out: os.Stdout,
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(consoleWriter, &buf)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return &logger, &buf
}

// NewDiscardLogger drops everything.
func NewDiscardLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
