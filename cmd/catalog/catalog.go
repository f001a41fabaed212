package catalog

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

type Inputs struct {
	Format string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List curated templates",
		Long: "Lists the built-in template catalog merged with the optional catalog file " +
			"configured as catalog.file. Names are accepted by resolve, archive, share and the lab.",
		Args:    cobra.NoArgs,
		Example: "  tlab catalog\n  tlab catalog --format json",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := runtimeContext.Catalog()
			if err != nil {
				return err
			}
			h := NewHandler(runtimeContext.Logger, catalog, cmd.OutOrStdout())
			inputs, err := h.ResolveInputs(runtimeContext.Viper)
			if err != nil {
				return err
			}
			return h.Execute(inputs)
		},
	}

	cmd.Flags().String(settings.Flags.Format.Name, utils.TableOutputFormat, "Output format: table, json or yaml")

	return cmd
}

type Handler struct {
	log     *zerolog.Logger
	catalog *templaterepo.Catalog
	out     io.Writer
}

func NewHandler(log *zerolog.Logger, catalog *templaterepo.Catalog, out io.Writer) *Handler {
	return &Handler{log: log, catalog: catalog, out: out}
}

func (h *Handler) ResolveInputs(v *viper.Viper) (Inputs, error) {
	inputs := Inputs{Format: v.GetString(settings.Flags.Format.Name)}
	if inputs.Format == "" {
		inputs.Format = utils.TableOutputFormat
	}
	if err := utils.ValidateFormat(inputs.Format); err != nil {
		return Inputs{}, err
	}
	return inputs, nil
}

func (h *Handler) Execute(inputs Inputs) error {
	entries := h.catalog.Entries()
	h.log.Debug().Msgf("Catalog has %d entries", len(entries))

	if inputs.Format == utils.TableOutputFormat {
		_, err := fmt.Fprintln(h.out, utils.FormatCatalogTable(entries))
		return err
	}

	out, err := utils.Marshal(entries, inputs.Format)
	if err != nil {
		return err
	}
	_, err = h.out.Write(out)
	return err
}
