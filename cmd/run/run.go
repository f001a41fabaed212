package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/internal/exec"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

// ExitError reports a script that ran but did not succeed.
type ExitError struct {
	Result runner.Result
}

func (e *ExitError) Error() string {
	if e.Result.TimedOut {
		return fmt.Sprintf("script timed out after %s", e.Result.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("script exited with code %d", e.Result.ExitCode)
}

type Inputs struct {
	File        string
	Interpreter string
	Timeout     time.Duration
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a template file and show its output",
		Long: "Runs the file with the configured interpreter (runner.interpreter) and a time limit " +
			"(runner.timeout). The process is killed when the limit is reached. This is not a sandbox.",
		Args: cobra.ExactArgs(1),
		Example: `  tlab run template.py
  tlab run server.js --interpreter node --timeout 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := ResolveInputs(args, runtimeContext.Viper, runtimeContext.Settings.Runner)
			if err != nil {
				return err
			}
			r := runner.New(runtimeContext.Logger,
				runner.WithInterpreter(inputs.Interpreter),
				runner.WithTimeout(inputs.Timeout),
				runner.WithCommandRunner(exec.NewRealRunner()),
			)
			h := NewHandler(runtimeContext.Logger, r, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().String(settings.Flags.Interpreter.Name, "", "Interpreter to run the file with (default from runner.interpreter)")
	cmd.Flags().DurationP(settings.Flags.Timeout.Name, settings.Flags.Timeout.Short, 0, "Time limit (default from runner.timeout)")

	return cmd
}

func ResolveInputs(args []string, v *viper.Viper, defaults settings.RunnerSettings) (Inputs, error) {
	if len(args) == 0 || args[0] == "" {
		return Inputs{}, errors.New("a file to run is required")
	}
	inputs := Inputs{
		File:        args[0],
		Interpreter: v.GetString(settings.Flags.Interpreter.Name),
		Timeout:     v.GetDuration(settings.Flags.Timeout.Name),
	}
	if inputs.Interpreter == "" {
		inputs.Interpreter = defaults.Interpreter
	}
	if inputs.Timeout <= 0 {
		inputs.Timeout = defaults.Timeout
	}
	return inputs, nil
}

type Handler struct {
	log    *zerolog.Logger
	runner session.Runner
	stdout io.Writer
	stderr io.Writer
}

func NewHandler(log *zerolog.Logger, r session.Runner, stdout, stderr io.Writer) *Handler {
	return &Handler{log: log, runner: r, stdout: stdout, stderr: stderr}
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	source, err := os.ReadFile(inputs.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputs.File, err)
	}

	res, err := ui.WithSpinnerResult("Running "+inputs.File+"...", func() (runner.Result, error) {
		return h.runner.Run(ctx, string(source))
	})
	if err != nil && !errors.Is(err, runner.ErrTimeout) {
		return err
	}
	if errors.Is(err, runner.ErrTimeout) {
		res.TimedOut = true
	}

	fmt.Fprint(h.stdout, res.Stdout)
	fmt.Fprint(h.stderr, res.Stderr)

	h.log.Debug().
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Bool("timed_out", res.TimedOut).
		Msg("Run finished")

	if !res.Succeeded() {
		return &ExitError{Result: res}
	}
	return nil
}
