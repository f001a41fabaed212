package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("New writes JSON when console writer is off", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(false),
		)

		log.Info().Str("url", "https://github.com/o/r").Msg("resolving")

		output := buf.String()
		assert.Contains(t, output, `"message":"resolving"`)
		assert.Contains(t, output, `"level":"info"`)
		assert.Contains(t, output, `"url":"https://github.com/o/r"`)
	})

	t.Run("level filter drops debug at info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("info"),
			WithConsoleWriter(false),
		)

		log.Debug().Msg("debug message")
		assert.Empty(t, buf.String())

		log.Info().Msg("info message")
		assert.Contains(t, buf.String(), "info message")
	})

	t.Run("console writer uses level abbreviations", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(true),
		)

		log.Warn().Msg("pretty message")

		output := buf.String()
		assert.Contains(t, output, "pretty message")
		assert.NotContains(t, output, `"level":"warn"`)
	})

	t.Run("file writer receives JSON alongside console", func(t *testing.T) {
		var console, file bytes.Buffer
		log := New(
			WithOutput(&console),
			WithLevel("info"),
			WithConsoleWriter(true),
			WithFileWriter(&file),
		)

		log.Error().Err(assert.AnError).Msg("publish failed")

		assert.Contains(t, console.String(), "publish failed")
		assert.Contains(t, file.String(), `"message":"publish failed"`)
		assert.Contains(t, file.String(), assert.AnError.Error())
	})

	t.Run("WithFile writes to a rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tlab.log")
		var console bytes.Buffer
		log := New(
			WithOutput(&console),
			WithConsoleWriter(false),
			WithFile(path),
		)

		log.Info().Msg("to disk")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to disk")
	})

	t.Run("WithFile ignores empty path", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(WithOutput(&buf), WithConsoleWriter(false), WithFile(""))
		log.Info().Msg("only console")
		assert.Contains(t, buf.String(), "only console")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
