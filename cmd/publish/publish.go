package publish

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/ui"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

type Inputs struct {
	RepoURL string `validate:"required,repo_url" cli:"repository-url"`
	File    string `validate:"required,file_read" cli:"--file"`
	Message string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <repository-url>",
		Short: "Push a template file to a git repository",
		Long: "Clones the repository, writes the file as " + constants.DefaultPublishFile +
			" (publish.file), commits and pushes. git must be installed and allowed to push.",
		Args: cobra.ExactArgs(1),
		Example: `  tlab publish https://github.com/me/my-app.git
  tlab publish git@github.com:me/my-app.git -f app.py -m "First version"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewHandler(runtimeContext.Logger, runtimeContext.Publisher(), runtimeContext.Validator)
			inputs, err := h.ResolveInputs(args, runtimeContext.Viper)
			if err != nil {
				return err
			}
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.File.Name, settings.Flags.File.Short, constants.DefaultPublishFile, "Local file to publish")
	cmd.Flags().StringP(settings.Flags.Message.Name, settings.Flags.Message.Short, "", "Commit message (default \""+constants.DefaultCommitMessage+"\")")

	return cmd
}

type Handler struct {
	log       *zerolog.Logger
	publisher session.Publisher
	validator *validation.Validator
}

func NewHandler(log *zerolog.Logger, p session.Publisher, v *validation.Validator) *Handler {
	return &Handler{log: log, publisher: p, validator: v}
}

func (h *Handler) ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	if len(args) == 0 {
		return Inputs{}, errors.New("a repository URL is required")
	}
	return Inputs{
		RepoURL: args[0],
		File:    v.GetString(settings.Flags.File.Name),
		Message: v.GetString(settings.Flags.Message.Name),
	}, nil
}

func (h *Handler) ValidateInputs(inputs Inputs) error {
	return h.validator.Struct(inputs)
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	text, err := os.ReadFile(inputs.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputs.File, err)
	}

	err = ui.WithSpinner("Publishing to "+inputs.RepoURL+"...", func() error {
		return h.publisher.Publish(ctx, inputs.RepoURL, string(text), inputs.Message)
	})
	if err != nil {
		return err
	}

	h.log.Debug().Str("repo", inputs.RepoURL).Str("file", inputs.File).Msg("Published")
	ui.Success("Published " + inputs.File + " to " + inputs.RepoURL)
	return nil
}
