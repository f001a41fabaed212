package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
)

// Version is set at build time with -ldflags "-X .../cmd/version.Version=v1.2.3".
var Version = "development"

func New(_ *runtime.Context) *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the " + constants.AppName + " version",
		Long:  "This command prints the current version of " + constants.AppName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), constants.AppName, Version)
			return err
		},
	}

	return versionCmd
}
