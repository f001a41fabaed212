// Package exec runs external commands behind an interface that tests can stub.
package exec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = 2 * time.Second

// CmdResult holds the captured output of a finished command.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// RunOpts holds optional parameters for a command.
type RunOpts struct {
	Dir   string            // working directory
	Env   map[string]string // overlaid on the current environment
	Stdin io.Reader
}

// CommandRunner runs external commands.
type CommandRunner interface {
	// Run executes name with args. A process that exits non-zero is not an
	// error: ExitCode is set and err is nil. err is returned when the command
	// could not start or ctx ended first, with whatever output was captured.
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)
}

// RealRunner runs commands with os/exec. When ctx ends, the whole process
// group is killed so that children of the command die with it.
type RealRunner struct{}

func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = opts.Stdin
	cmd.Dir = opts.Dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	start := time.Now()
	err := cmd.Run()

	result := CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// LookPath reports whether name is on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
