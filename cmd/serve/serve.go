package serve

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/server"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lab over HTTP",
		Long: "Starts the HTTP API. Each client creates a session with POST /api/sessions and " +
			"drives it through the session routes. Sessions live in memory until deleted or the " +
			"server stops.",
		Args:    cobra.NoArgs,
		Example: "  tlab serve\n  tlab serve --addr 127.0.0.1:9000",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := runtimeContext.Viper.GetString(settings.Flags.Addr.Name)
			if addr == "" {
				addr = runtimeContext.Settings.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return Execute(ctx, runtimeContext, addr)
		},
	}

	cmd.Flags().String(settings.Flags.Addr.Name, "", "Listen address (default from server.addr)")

	return cmd
}

func Execute(ctx context.Context, runtimeContext *runtime.Context, addr string) error {
	lab, catalog, err := utils.NewLab(ctx, runtimeContext)
	if err != nil {
		return err
	}

	srv := server.New(runtimeContext.Logger, session.NewStore(), lab, catalog)
	ui.Success("Template lab listening on " + addr)
	return srv.ListenAndServe(ctx, addr)
}
