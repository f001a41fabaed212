package resolve

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

type Inputs struct {
	Target string
	Ref    string
	Meta   template.Metadata
	Format string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <catalog-name | repository-url | file-url>",
		Short: "Resolve a template and print its files",
		Long: "Resolves a catalog entry, a GitHub repository or a single raw file into a template " +
			"and prints the file listing and the main file.",
		Args: cobra.ExactArgs(1),
		Example: `  tlab resolve "Chatbot (LangChain + Anthropic + Streamlit)"
  tlab resolve https://github.com/acme/starter --ref v1.2.0
  tlab resolve https://github.com/acme/starter/blob/main/app.py --format json`,
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
	cmd.Flags().StringP(settings.Flags.Name.Name, settings.Flags.Name.Short, "", "Display name attached to the template")
	cmd.Flags().String(settings.Flags.Format.Name, utils.TableOutputFormat, "Output format: table, json or yaml")

	return cmd
}

type Handler struct {
	log     *zerolog.Logger
	lab     *session.Lab
	catalog session.Catalog
	out     io.Writer
}

func NewHandler(log *zerolog.Logger, lab *session.Lab, catalog session.Catalog, out io.Writer) *Handler {
	return &Handler{log: log, lab: lab, catalog: catalog, out: out}
}

func (h *Handler) ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	if len(args) == 0 || args[0] == "" {
		return Inputs{}, errors.New("a catalog name or repository URL is required")
	}
	inputs := Inputs{
		Target: args[0],
		Ref:    v.GetString(settings.Flags.Ref.Name),
		Meta:   template.Metadata{Name: v.GetString(settings.Flags.Name.Name)},
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
	s, err := utils.Load(ctx, h.lab, h.catalog, inputs.Target, inputs.Ref, inputs.Meta)
	if err != nil {
		return err
	}
	t, err := s.Current()
	if err != nil {
		return err
	}

	h.log.Debug().Str("main", t.MainFile).Int("files", len(t.Files())).Msg("Template resolved")
	return utils.WriteTemplate(h.out, t, inputs.Format)
}
