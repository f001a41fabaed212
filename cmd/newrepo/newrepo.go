package newrepo

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sourcebox-llc/template-lab/internal/browser"
	"github.com/sourcebox-llc/template-lab/internal/exec"
	"github.com/sourcebox-llc/template-lab/internal/publish"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

type URLOpener interface {
	Open(ctx context.Context, url string) error
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "newrepo",
		Short: "Open GitHub's new repository page",
		Long:  "Opens " + publish.NewRepoURL + " in the default browser, to create a repository to publish into.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewHandler(runtimeContext.Logger, browser.NewOpener(exec.NewRealRunner()))
			return h.Execute(cmd.Context())
		},
	}
}

type Handler struct {
	log    *zerolog.Logger
	opener URLOpener
}

func NewHandler(log *zerolog.Logger, opener URLOpener) *Handler {
	return &Handler{log: log, opener: opener}
}

// Execute opens the page. When no browser can be launched the URL is printed
// instead and the command still succeeds.
func (h *Handler) Execute(ctx context.Context) error {
	if err := h.opener.Open(ctx, publish.NewRepoURL); err != nil {
		h.log.Debug().Err(err).Msg("Could not open browser")
		ui.Warning("Could not open a browser. Create the repository here:")
		ui.URL(publish.NewRepoURL)
		return nil
	}
	ui.Success("Opened " + publish.NewRepoURL)
	return nil
}
