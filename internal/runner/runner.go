// Package runner executes template code in a child interpreter with a
// timeout. It isolates the lab from crashes in user code; it is not a
// security sandbox.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/exec"
)

var ErrTimeout = errors.New("run timed out")

// TimeoutError carries the output captured before the process was killed.
type TimeoutError struct {
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("run timed out after %s", e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Result is the outcome of one run. A non-zero ExitCode is a normal result.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// Succeeded reports a clean exit.
func (r Result) Succeeded() bool {
	return !r.TimedOut && r.ExitCode == 0
}

type Runner struct {
	log         *zerolog.Logger
	cmd         exec.CommandRunner
	interpreter string
	timeout     time.Duration
}

type Option func(*Runner)

func WithInterpreter(interpreter string) Option {
	return func(r *Runner) {
		if interpreter != "" {
			r.interpreter = interpreter
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithCommandRunner(cmd exec.CommandRunner) Option {
	return func(r *Runner) {
		r.cmd = cmd
	}
}

func New(log *zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		log:         log,
		cmd:         exec.NewRealRunner(),
		interpreter: constants.DefaultRunnerInterpreter,
		timeout:     constants.DefaultRunnerTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Interpreter() string {
	return r.interpreter
}

func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run writes source to a private temp file and executes it with the
// configured interpreter. The file is removed before Run returns.
func (r *Runner) Run(ctx context.Context, source string) (Result, error) {
	path, err := writeTempSource(source, scriptSuffix(r.interpreter))
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			r.log.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove run file")
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.log.Debug().Str("interpreter", r.interpreter).Str("path", path).Msgf("Running template code with a %s timeout", r.timeout)
	res, err := r.cmd.Run(runCtx, r.interpreter, []string{path}, exec.RunOpts{Dir: filepath.Dir(path)})

	result := Result{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
	}

	if err != nil {
		switch {
		case ctx.Err() != nil:
			return result, fmt.Errorf("run interrupted: %w", ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			result.TimedOut = true
			r.log.Warn().Msgf("Template code did not finish within %s", r.timeout)
			return result, &TimeoutError{Timeout: r.timeout, Stdout: res.Stdout, Stderr: res.Stderr}
		default:
			return result, fmt.Errorf("failed to start %s: %w", r.interpreter, err)
		}
	}

	r.log.Debug().Int("exit_code", result.ExitCode).Msgf("Run finished in %s", result.Duration)
	return result, nil
}

func writeTempSource(source, suffix string) (string, error) {
	// CreateTemp opens with 0600.
	f, err := os.CreateTemp("", "tlab-run-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create run file: %w", err)
	}
	if _, err := f.WriteString(source); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write run file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write run file: %w", err)
	}
	return f.Name(), nil
}

func scriptSuffix(interpreter string) string {
	base := strings.ToLower(filepath.Base(interpreter))
	switch {
	case strings.HasPrefix(base, "python"):
		return ".py"
	case strings.HasPrefix(base, "node"):
		return ".js"
	case base == "sh" || base == "bash" || base == "zsh":
		return ".sh"
	case strings.HasPrefix(base, "ruby"):
		return ".rb"
	default:
		return ""
	}
}
