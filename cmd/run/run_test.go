package run_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/cmd/run"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
	"github.com/sourcebox-llc/template-lab/internal/testutil/fakes"
)

func script(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveInputs(t *testing.T) {
	defaults := settings.RunnerSettings{Interpreter: "python3", Timeout: 30 * time.Second}

	t.Run("falls back to settings", func(t *testing.T) {
		inputs, err := run.ResolveInputs([]string{"app.py"}, viper.New(), defaults)
		require.NoError(t, err)
		assert.Equal(t, run.Inputs{File: "app.py", Interpreter: "python3", Timeout: 30 * time.Second}, inputs)
	})

	t.Run("flags override settings", func(t *testing.T) {
		v := viper.New()
		v.Set(settings.Flags.Interpreter.Name, "node")
		v.Set(settings.Flags.Timeout.Name, "5s")
		inputs, err := run.ResolveInputs([]string{"app.js"}, v, defaults)
		require.NoError(t, err)
		assert.Equal(t, "node", inputs.Interpreter)
		assert.Equal(t, 5*time.Second, inputs.Timeout)
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := run.ResolveInputs(nil, viper.New(), defaults)
		require.Error(t, err)
	})
}

func TestExecute_Success(t *testing.T) {
	fake := &fakes.Runner{Result: runner.Result{Stdout: "hello\n", Stderr: "warn\n", Duration: time.Millisecond}}
	var stdout, stderr bytes.Buffer
	h := run.NewHandler(testutil.NewDiscardLogger(), fake, &stdout, &stderr)

	require.NoError(t, h.Execute(context.Background(), run.Inputs{File: script(t, "print('hello')\n")}))

	assert.Equal(t, []string{"print('hello')\n"}, fake.Sources)
	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "warn\n", stderr.String())
}

func TestExecute_NonZeroExit(t *testing.T) {
	fake := &fakes.Runner{Result: runner.Result{Stderr: "Traceback\n", ExitCode: 1}}
	var stdout, stderr bytes.Buffer
	h := run.NewHandler(testutil.NewDiscardLogger(), fake, &stdout, &stderr)

	err := h.Execute(context.Background(), run.Inputs{File: script(t, "raise SystemExit(1)\n")})

	var exitErr *run.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Result.ExitCode)
	assert.Equal(t, "script exited with code 1", err.Error())
	assert.Equal(t, "Traceback\n", stderr.String())
}

func TestExecute_Timeout(t *testing.T) {
	fake := &fakes.Runner{
		Result: runner.Result{Stdout: "partial\n", Duration: 2 * time.Second},
		Err:    &runner.TimeoutError{Timeout: 2 * time.Second},
	}
	var stdout, stderr bytes.Buffer
	h := run.NewHandler(testutil.NewDiscardLogger(), fake, &stdout, &stderr)

	err := h.Execute(context.Background(), run.Inputs{File: script(t, "while True: pass\n")})

	var exitErr *run.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Result.TimedOut)
	assert.Contains(t, err.Error(), "timed out after 2s")
	assert.Equal(t, "partial\n", stdout.String())
}

func TestExecute_StartFailure(t *testing.T) {
	boom := errors.New("interpreter not found")
	h := run.NewHandler(testutil.NewDiscardLogger(), &fakes.Runner{Err: boom}, &bytes.Buffer{}, &bytes.Buffer{})

	err := h.Execute(context.Background(), run.Inputs{File: script(t, "x = 1\n")})

	require.ErrorIs(t, err, boom)
}

func TestExecute_MissingFile(t *testing.T) {
	fake := &fakes.Runner{}
	h := run.NewHandler(testutil.NewDiscardLogger(), fake, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, h.Execute(context.Background(), run.Inputs{File: filepath.Join(t.TempDir(), "nope.py")}))
	assert.Empty(t, fake.Sources)
}
