package exec

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRealRunner_CapturesOutput(t *testing.T) {
	requireShell(t)

	res, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRealRunner_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)

	res, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "exit 3"}, RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRealRunner_DirEnvAndStdin(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	res, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", `pwd; echo "$GREETING"; cat`}, RunOpts{
		Dir:   dir,
		Env:   map[string]string{"GREETING": "hello"},
		Stdin: strings.NewReader("piped"),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], dir[strings.LastIndex(dir, "/")+1:])
	assert.Equal(t, "hello", lines[1])
	assert.Equal(t, "piped", lines[2])
}

func TestRealRunner_MissingBinary(t *testing.T) {
	_, err := NewRealRunner().Run(context.Background(), "tlab-definitely-not-a-binary", nil, RunOpts{})
	assert.Error(t, err)
}

func TestRealRunner_TimeoutKillsProcessGroup(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := NewRealRunner().Run(ctx, "sh", []string{"-c", "echo started; sleep 30 & wait"}, RunOpts{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, "started\n", res.Stdout)
	assert.Equal(t, -1, res.ExitCode)
}
