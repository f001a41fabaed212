package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintHelpersWriteToOut(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Print("plain")
	Success("saved")
	Dim("Streamlit")
	Line()

	out := buf.String()
	assert.Contains(t, out, "plain\n")
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "Streamlit")
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}
