package utils

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

// AddLLMFlags registers --provider and --model on cmd.
func AddLLMFlags(cmd *cobra.Command) {
	cmd.Flags().String(settings.Flags.Provider.Name, "", "Language model provider: bedrock or openai (default from llm.provider)")
	cmd.Flags().String(settings.Flags.Model.Name, "", "Model id (default from llm.model)")
}

// ApplyLLMFlags copies --provider and --model into the loaded settings.
func ApplyLLMFlags(rtx *runtime.Context) error {
	v := rtx.Viper
	if provider := v.GetString(settings.Flags.Provider.Name); provider != "" {
		if err := rtx.Validator.Var(provider, "llm_provider"); err != nil {
			return fmt.Errorf("--%s: %w", settings.Flags.Provider.Name, err)
		}
		rtx.Settings.LLM.Provider = provider
	}
	if model := v.GetString(settings.Flags.Model.Name); model != "" {
		rtx.Settings.LLM.Model = model
	}
	return nil
}

// NewLab builds the catalog and a lab wired to the configured services.
func NewLab(ctx context.Context, rtx *runtime.Context) (*session.Lab, *templaterepo.Catalog, error) {
	catalog, err := rtx.Catalog()
	if err != nil {
		return nil, nil, err
	}
	return rtx.Lab(ctx, catalog), catalog, nil
}

// Load selects target into a fresh session.
func Load(ctx context.Context, lab *session.Lab, catalog session.Catalog, target, ref string, meta template.Metadata) (*session.Session, error) {
	cmd, err := SelectCommand(catalog, target, ref, meta)
	if err != nil {
		return nil, err
	}

	s := session.New()
	_, err = ui.WithSpinnerResult(fmt.Sprintf("Loading %s...", target), func() (session.Event, error) {
		return lab.Dispatch(ctx, s, cmd)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
