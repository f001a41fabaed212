package edit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/editor"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

type Inputs struct {
	File           string
	Instruction    string
	NonInteractive bool
}

// PromptFunc shows text for manual editing and returns the result.
type PromptFunc func(title, initial string) (string, error)

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit a template file by hand or with a language model",
		Long: "Without --instruction the file opens in a terminal editor (ctrl+s saves). With " +
			"--instruction the configured language model rewrites the file. The file is only " +
			"written when the edit succeeds.",
		Args: cobra.ExactArgs(1),
		Example: `  tlab edit template.py
  tlab edit app.py -i "add a sidebar with a file uploader"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := ResolveInputs(args, runtimeContext.Viper)
			if err != nil {
				return err
			}

			var rewriter editor.Rewriter
			if inputs.Instruction != "" {
				if err := utils.ApplyLLMFlags(runtimeContext); err != nil {
					return err
				}
				gen, err := runtimeContext.Generator(cmd.Context())
				if err != nil {
					return err
				}
				rewriter = gen
			}

			h := NewHandler(runtimeContext.Logger, rewriter, promptText)
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.Instruction.Name, settings.Flags.Instruction.Short, "", "Natural-language edit for the language model")
	utils.AddLLMFlags(cmd)

	return cmd
}

func promptText(title, initial string) (string, error) {
	return ui.Text(title, initial, ui.WithTextDescription("enter adds a line, ctrl+s saves, esc cancels"))
}

type Handler struct {
	log      *zerolog.Logger
	rewriter editor.Rewriter
	prompt   PromptFunc
}

func NewHandler(log *zerolog.Logger, rewriter editor.Rewriter, prompt PromptFunc) *Handler {
	return &Handler{log: log, rewriter: rewriter, prompt: prompt}
}

func ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	if len(args) == 0 || args[0] == "" {
		return Inputs{}, errors.New("a file to edit is required")
	}
	inputs := Inputs{
		File:           args[0],
		Instruction:    v.GetString(settings.Flags.Instruction.Name),
		NonInteractive: v.GetBool(settings.Flags.NonInteractive.Name),
	}
	if inputs.Instruction == "" && inputs.NonInteractive {
		return Inputs{}, errors.New("--instruction is required with --non-interactive")
	}
	return inputs, nil
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	original, err := os.ReadFile(inputs.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputs.File, err)
	}
	buf := editor.NewBuffer(string(original))

	if inputs.Instruction != "" {
		if h.rewriter == nil {
			return errors.New("no language model is configured")
		}
		err := ui.WithSpinner("Rewriting "+filepath.Base(inputs.File)+"...", func() error {
			return buf.Rewrite(ctx, h.rewriter, inputs.Instruction)
		})
		if err != nil {
			return err
		}
	} else {
		text, err := h.prompt(filepath.Base(inputs.File), buf.Text())
		if err != nil {
			return err
		}
		buf.Replace(text)
	}

	if buf.Text() == string(original) {
		ui.Dim("No changes")
		return nil
	}

	info, err := os.Stat(inputs.File)
	if err != nil {
		return err
	}
	if err := os.WriteFile(inputs.File, []byte(buf.Text()), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", inputs.File, err)
	}
	h.log.Debug().Str("file", inputs.File).Int("version", buf.Version()).Msg("Edit saved")
	ui.Success("Saved " + inputs.File)
	return nil
}
