package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

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

// StdoutPath writes the archive to standard output.
const StdoutPath = "-"

type Inputs struct {
	Target string
	Ref    string
	Output string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <catalog-name | repository-url | file-url>",
		Short: "Download a template as a zip archive",
		Long:  "Resolves a template and writes every file into a zip archive, template.zip by default.",
		Args:  cobra.ExactArgs(1),
		Example: `  tlab archive "AWS Lambda Auth (Streamlit + AWS Lambda)"
  tlab archive acme/starter --ref main -o starter.zip
  tlab archive acme/starter -o - > starter.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, catalog, err := utils.NewLab(cmd.Context(), runtimeContext)
			if err != nil {
				return err
			}
			h := NewHandler(runtimeContext.Logger, lab, catalog, cmd.OutOrStdout())
			inputs, err := h.ResolveInputs(args, runtimeContext.Viper)
			if err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.Ref.Name, settings.Flags.Ref.Short, "", "Branch, tag or commit to resolve instead of the default branch")
	cmd.Flags().StringP(settings.Flags.Output.Name, settings.Flags.Output.Short, template.ArchiveName, "Archive path, or - for standard output")

	return cmd
}

type Handler struct {
	log     *zerolog.Logger
	lab     *session.Lab
	catalog session.Catalog
	stdout  io.Writer
}

func NewHandler(log *zerolog.Logger, lab *session.Lab, catalog session.Catalog, stdout io.Writer) *Handler {
	return &Handler{log: log, lab: lab, catalog: catalog, stdout: stdout}
}

func (h *Handler) ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	if len(args) == 0 || args[0] == "" {
		return Inputs{}, errors.New("a catalog name or repository URL is required")
	}
	inputs := Inputs{
		Target: args[0],
		Ref:    v.GetString(settings.Flags.Ref.Name),
		Output: v.GetString(settings.Flags.Output.Name),
	}
	if inputs.Output == "" {
		inputs.Output = template.ArchiveName
	}
	return inputs, nil
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	s, err := utils.Load(ctx, h.lab, h.catalog, inputs.Target, inputs.Ref, template.Metadata{})
	if err != nil {
		return err
	}

	ev, err := h.lab.Dispatch(ctx, s, session.Archive{})
	if err != nil {
		return err
	}
	archived, ok := ev.(session.Archived)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}

	if inputs.Output == StdoutPath {
		_, err := h.stdout.Write(archived.Bytes)
		return err
	}

	if err := os.WriteFile(inputs.Output, archived.Bytes, 0600); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	h.log.Debug().Str("path", inputs.Output).Int("bytes", len(archived.Bytes)).Msg("Archive written")
	ui.Success(fmt.Sprintf("Wrote %s (%s)", inputs.Output, ui.FormatBytes(int64(len(archived.Bytes)))))
	return nil
}
