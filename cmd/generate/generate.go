package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

type Inputs struct {
	Prompt string
	Meta   template.Metadata
	Output string
	Format string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a template with a language model",
		Long: "Asks the configured language model (llm.provider) for a template. The result is " +
			"printed, or written file by file into the directory given with --output.",
		Args: cobra.MinimumNArgs(1),
		Example: `  tlab generate "a streamlit app that charts a CSV upload"
  tlab generate "fastapi hello world with a Dockerfile" -o ./hello`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ApplyLLMFlags(runtimeContext); err != nil {
				return err
			}
			lab, _, err := utils.NewLab(cmd.Context(), runtimeContext)
			if err != nil {
				return err
			}
			h := NewHandler(runtimeContext.Logger, lab, cmd.OutOrStdout())
			inputs, err := h.ResolveInputs(args, runtimeContext.Viper)
			if err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.Name.Name, settings.Flags.Name.Short, "", "Display name attached to the template")
	cmd.Flags().StringP(settings.Flags.Output.Name, settings.Flags.Output.Short, "", "Directory to write the generated files into")
	cmd.Flags().String(settings.Flags.Format.Name, utils.TableOutputFormat, "Output format when no directory is given: table, json or yaml")
	utils.AddLLMFlags(cmd)

	return cmd
}

type Handler struct {
	log *zerolog.Logger
	lab *session.Lab
	out io.Writer
}

func NewHandler(log *zerolog.Logger, lab *session.Lab, out io.Writer) *Handler {
	return &Handler{log: log, lab: lab, out: out}
}

func (h *Handler) ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return Inputs{}, errors.New("prompt must not be empty")
	}
	inputs := Inputs{
		Prompt: prompt,
		Meta:   template.Metadata{Name: v.GetString(settings.Flags.Name.Name), Details: prompt},
		Output: v.GetString(settings.Flags.Output.Name),
		Format: v.GetString(settings.Flags.Format.Name),
	}
	if inputs.Format == "" {
		inputs.Format = utils.TableOutputFormat
	}
	if err := utils.ValidateFormat(inputs.Format); err != nil {
		return Inputs{}, err
	}
	return inputs, nil
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	s := session.New()
	_, err := ui.WithSpinnerResult("Generating template...", func() (session.Event, error) {
		return h.lab.Dispatch(ctx, s, session.Generate{Prompt: inputs.Prompt, Meta: inputs.Meta})
	})
	if err != nil {
		return err
	}
	t, err := s.Current()
	if err != nil {
		return err
	}

	if inputs.Output == "" {
		return utils.WriteTemplate(h.out, t, inputs.Format)
	}

	written, err := WriteFiles(inputs.Output, t)
	if err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Wrote %d files to %s", len(written), inputs.Output))
	for _, path := range written {
		ui.Dim(path)
	}
	return nil
}

// WriteFiles writes every file of t below dir and returns the relative paths
// written. Paths that would escape dir, or that clean to the same file, are
// rejected before anything is written.
func WriteFiles(dir string, t template.Template) ([]string, error) {
	files := t.Files()
	paths, err := template.SafePaths(files)
	if err != nil {
		return nil, err
	}

	for i, p := range files {
		content, _ := t.Content(p)
		target := filepath.Join(dir, filepath.FromSlash(paths[i]))
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", paths[i], err)
		}
		if err := os.WriteFile(target, []byte(content), 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}
