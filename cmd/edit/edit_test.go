package edit_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/cmd/edit"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
	"github.com/sourcebox-llc/template-lab/internal/testutil/fakes"
)

func writeFile(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func noPrompt(t *testing.T) edit.PromptFunc {
	return func(string, string) (string, error) {
		t.Fatal("prompt must not be shown")
		return "", nil
	}
}

func TestResolveInputs(t *testing.T) {
	t.Run("requires a file", func(t *testing.T) {
		_, err := edit.ResolveInputs(nil, viper.New())
		require.Error(t, err)
	})

	t.Run("non-interactive needs an instruction", func(t *testing.T) {
		v := viper.New()
		v.Set(settings.Flags.NonInteractive.Name, true)
		_, err := edit.ResolveInputs([]string{"app.py"}, v)
		require.Error(t, err)

		v.Set(settings.Flags.Instruction.Name, "add a title")
		inputs, err := edit.ResolveInputs([]string{"app.py"}, v)
		require.NoError(t, err)
		assert.Equal(t, "add a title", inputs.Instruction)
	})
}

func TestExecute_Manual(t *testing.T) {
	path := writeFile(t, "print('a')\n", 0640)
	var seen string
	prompt := func(title, initial string) (string, error) {
		seen = initial
		assert.Equal(t, "app.py", title)
		return "print('b')\n", nil
	}
	h := edit.NewHandler(testutil.NewDiscardLogger(), nil, prompt)

	require.NoError(t, h.Execute(context.Background(), edit.Inputs{File: path}))

	assert.Equal(t, "print('a')\n", seen)
	assert.Equal(t, "print('b')\n", readFile(t, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestExecute_Rewrite(t *testing.T) {
	path := writeFile(t, "print('a')\n", 0600)
	gen := &fakes.Generator{}
	h := edit.NewHandler(testutil.NewDiscardLogger(), gen, noPrompt(t))

	require.NoError(t, h.Execute(context.Background(), edit.Inputs{File: path, Instruction: "shout"}))

	assert.Equal(t, "PRINT('A')\n", readFile(t, path))
	assert.Equal(t, []string{"shout"}, gen.Prompts)
}

func TestExecute_RewriteFailureKeepsFile(t *testing.T) {
	path := writeFile(t, "print('a')\n", 0600)
	h := edit.NewHandler(testutil.NewDiscardLogger(), &fakes.Generator{Err: errors.New("quota")}, noPrompt(t))

	err := h.Execute(context.Background(), edit.Inputs{File: path, Instruction: "shout"})

	require.Error(t, err)
	assert.Equal(t, "print('a')\n", readFile(t, path))
}

func TestExecute_NoRewriter(t *testing.T) {
	path := writeFile(t, "x = 1\n", 0600)
	h := edit.NewHandler(testutil.NewDiscardLogger(), nil, noPrompt(t))

	require.Error(t, h.Execute(context.Background(), edit.Inputs{File: path, Instruction: "anything"}))
}

func TestExecute_PromptAborted(t *testing.T) {
	path := writeFile(t, "x = 1\n", 0600)
	aborted := errors.New("user aborted")
	h := edit.NewHandler(testutil.NewDiscardLogger(), nil, func(string, string) (string, error) {
		return "ignored", aborted
	})

	require.ErrorIs(t, h.Execute(context.Background(), edit.Inputs{File: path}), aborted)
	assert.Equal(t, "x = 1\n", readFile(t, path))
}
