package version_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sourcebox-llc/template-lab/cmd/version"
)

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{
			name:     "Release version",
			version:  "v1.0.3-beta0",
			expected: "tlab v1.0.3-beta0",
		},
		{
			name:     "Local build hash",
			version:  "build c8ab91c87c7135aa7c57669bb454e6a3287139d7",
			expected: "tlab build c8ab91c87c7135aa7c57669bb454e6a3287139d7",
		},
	}

	t.Run("Default development build", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := version.New(nil)
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "development")
	})

	original := version.Version
	t.Cleanup(func() { version.Version = original })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version.Version = tt.version

			var buf bytes.Buffer
			cmd := version.New(nil)
			cmd.SetOut(&buf)
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			assert.NoError(t, err)
			assert.Contains(t, buf.String(), tt.expected, "Output does not match for %s", tt.name)
		})
	}
}
