package test

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

// CLIPath is where TestMain builds the binary under test.
var CLIPath = filepath.Join(os.TempDir(), binaryName())

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "tlab-e2e.exe"
	}
	return "tlab-e2e"
}

var (
	L *zerolog.Logger
)

const (
	TestLogLevelEnvVar = "TEST_LOG_LEVEL" // export this env var before running tests if DEBUG level is needed
	commandTimeout     = 30 * time.Second
)

var credentialEnvVars = []string{
	"GITHUB_TOKEN",
	"OPENAI_API_KEY",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_REGION",
}

func InitLogging() {
	lvlStr := os.Getenv(TestLogLevelEnvVar)
	if lvlStr == "" {
		lvlStr = "info"
	}
	lvl, err := zerolog.ParseLevel(lvlStr)
	if err != nil {
		panic(err)
	}
	l := log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
	L = &l
}

// Workspace is an isolated HOME and working directory for one test.
type Workspace struct {
	Home string
	Dir  string
}

func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{Home: t.TempDir(), Dir: t.TempDir()}
}

// WriteFile creates name below the working directory and returns its path.
func (w *Workspace) WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.Dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func (w *Workspace) env() []string {
	return append(os.Environ(), "HOME="+w.Home, "USERPROFILE="+w.Home)
}

// Command prepares the CLI with args inside the workspace.
func (w *Workspace) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, CLIPath, args...)
	cmd.Dir = w.Dir
	cmd.Env = w.env()
	return cmd
}

// Run executes the CLI and returns stdout, stderr and the exit error.
func (w *Workspace) Run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := w.Command(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	L.Debug().Strs("args", args).Msg("Running tlab")
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func FreeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return "127.0.0.1:" + strconv.Itoa(port)
}
