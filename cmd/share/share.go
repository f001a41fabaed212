package share

import (
	"context"
	"errors"
	"fmt"
	"io"

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
	Target      string
	Ref         string
	Description string
	Public      bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share <catalog-name | repository-url | file-url>",
		Short: "Share a template as a GitHub Gist",
		Long: "Resolves a template and uploads every file to a new Gist. Requires GITHUB_TOKEN " +
			"with the gist scope. Gists are secret unless --public is set.",
		Args: cobra.ExactArgs(1),
		Example: `  tlab share "Chatbot (LangChain + Anthropic + Streamlit)"
  tlab share acme/starter -d "Streamlit starter" --public`,
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
	cmd.Flags().StringP(settings.Flags.Description.Name, settings.Flags.Description.Short, "", "Gist description (default: the template name)")
	cmd.Flags().Bool(settings.Flags.Public.Name, false, "Create a public Gist")

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
	return Inputs{
		Target:      args[0],
		Ref:         v.GetString(settings.Flags.Ref.Name),
		Description: v.GetString(settings.Flags.Description.Name),
		Public:      v.GetBool(settings.Flags.Public.Name),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, inputs Inputs) error {
	s, err := utils.Load(ctx, h.lab, h.catalog, inputs.Target, inputs.Ref, template.Metadata{})
	if err != nil {
		return err
	}

	description := inputs.Description
	if description == "" && s.Active != nil {
		description = s.Active.Name
	}

	ev, err := ui.WithSpinnerResult("Creating Gist...", func() (session.Event, error) {
		return h.lab.Dispatch(ctx, s, session.Share{Description: description, Public: inputs.Public})
	})
	if err != nil {
		return err
	}
	shared, ok := ev.(session.Shared)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}

	h.log.Debug().Str("url", shared.URL).Bool("public", inputs.Public).Msg("Gist created")
	_, err = fmt.Fprintln(h.out, shared.URL)
	return err
}
