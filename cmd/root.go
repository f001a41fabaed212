package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/cmd/archive"
	"github.com/sourcebox-llc/template-lab/cmd/catalog"
	"github.com/sourcebox-llc/template-lab/cmd/edit"
	"github.com/sourcebox-llc/template-lab/cmd/generate"
	"github.com/sourcebox-llc/template-lab/cmd/lab"
	"github.com/sourcebox-llc/template-lab/cmd/newrepo"
	"github.com/sourcebox-llc/template-lab/cmd/publish"
	"github.com/sourcebox-llc/template-lab/cmd/resolve"
	"github.com/sourcebox-llc/template-lab/cmd/run"
	"github.com/sourcebox-llc/template-lab/cmd/serve"
	"github.com/sourcebox-llc/template-lab/cmd/share"
	"github.com/sourcebox-llc/template-lab/cmd/version"
	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/logger"
	tlabruntime "github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/ui"
	"github.com/sourcebox-llc/template-lab/internal/update"
)

const updateCheckTimeout = 5 * time.Second

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCommand()

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootLogger := createLogger()
	rootViper := createViper()
	runtimeContext := tlabruntime.NewContext(rootLogger, rootViper)

	// A RunE on the root makes PersistentPreRunE and the update check run
	// even when tlab is called without a subcommand.
	helpRunE := func(cmd *cobra.Command, args []string) error {
		err := cmd.Help()
		if err != nil {
			return fmt.Errorf("fail to show help: %w", err)
		}
		return nil
	}

	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Template Lab CLI",
		Long: `Pick a curated template, resolve any GitHub repository or generate one with a language model.
Then edit it, run it, and download, publish or share the result.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE:              helpRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := runtimeContext.Viper

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if v.GetBool(settings.Flags.Verbose.Name) || v.GetString(settings.Flags.LogFile.Name) != "" {
				runtimeContext.ConfigureLogger()
			}

			ui.SetOutput(cmd.OutOrStdout())

			if isLoadSettings(cmd) {
				if err := runtimeContext.Attach(cmd); err != nil {
					return err
				}
			}

			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if !isCheckForUpdates(cmd) {
				return
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), updateCheckTimeout)
			defer cancel()
			update.NewChecker(runtimeContext.Logger).CheckForUpdates(ctx, version.Version)
		},
	}

	cobra.AddTemplateFunc("wrappedFlagUsages", func(fs *pflag.FlagSet) string {
		// 100 = wrap width
		return strings.TrimRight(fs.FlagUsagesWrapped(100), "\n")
	})

	cobra.AddTemplateFunc("hasUngrouped", func(c *cobra.Command) bool {
		for _, cmd := range c.Commands() {
			if cmd.IsAvailableCommand() && !cmd.Hidden && cmd.GroupID == "" {
				return true
			}
		}
		return false
	})

	rootCmd.SetHelpTemplate(`
{{- with (or .Long .Short)}}{{.}}{{end}}

Usage:
{{- if .Runnable}}
  {{.UseLine}}
{{- else if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]
{{- end}}

{{- if .HasAvailableSubCommands}}

Available Commands:
  {{- $groupsUsed := false -}}
  {{- $firstGroup := true -}}

  {{- range $grp := .Groups}}
    {{- $has := false -}}
    {{- range $.Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
        {{- $has = true}}
      {{- end}}
    {{- end}}

    {{- if $has}}
      {{- $groupsUsed = true -}}
      {{- if $firstGroup}}{{- $firstGroup = false -}}{{else}}

{{- end}}

  {{printf "%s:" $grp.Title}}
      {{- range $.Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- end}}

  {{- if $groupsUsed }}
    {{- if hasUngrouped .}}

  Other:
      {{- range .Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID ""))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- else }}
    {{- range .Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
      {{- end}}
    {{- end}}
  {{- end }}
{{- end }}

{{- if .HasExample}}

Examples:
{{.Example}}
{{- end }}

{{- $local := (.LocalFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $local }}

Flags:
{{$local}}
{{- end }}

{{- $inherited := (.InheritedFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $inherited }}

Global Flags:
{{$inherited}}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{.CommandPath}} [command] --help" for more information about a command.
{{- end }}

Tip: New here? Run:
  $ tlab catalog
    to see the curated templates, then:
  $ tlab lab
    to pick one, edit it, run it and ship it.
`)

	rootCmd.PersistentFlags().StringP(
		settings.Flags.CliEnvFile.Name,
		settings.Flags.CliEnvFile.Short,
		constants.DefaultEnvFileName,
		fmt.Sprintf("Path to %s file which contains credentials such as GITHUB_TOKEN", constants.DefaultEnvFileName),
	)

	rootCmd.PersistentFlags().StringP(
		settings.Flags.ConfigFile.Name,
		settings.Flags.ConfigFile.Short,
		"",
		fmt.Sprintf("Path to the YAML config file (default ~/%s/%s)", constants.AppDirName, constants.ConfigFileName),
	)

	rootCmd.PersistentFlags().BoolP(
		settings.Flags.Verbose.Name,
		settings.Flags.Verbose.Short,
		false,
		"Run command in VERBOSE mode",
	)

	rootCmd.PersistentFlags().String(
		settings.Flags.LogFile.Name,
		"",
		"Also write logs to this file, rotated at 10 MB",
	)

	rootCmd.PersistentFlags().Bool(
		settings.Flags.NonInteractive.Name,
		false,
		"Fail instead of prompting for input",
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	catalogCmd := catalog.New(runtimeContext)
	resolveCmd := resolve.New(runtimeContext)
	generateCmd := generate.New(runtimeContext)
	labCmd := lab.New(runtimeContext)
	editCmd := edit.New(runtimeContext)
	runCmd := run.New(runtimeContext)
	archiveCmd := archive.New(runtimeContext)
	publishCmd := publish.New(runtimeContext)
	shareCmd := share.New(runtimeContext)
	newrepoCmd := newrepo.New(runtimeContext)
	serveCmd := serve.New(runtimeContext)
	versionCmd := version.New(runtimeContext)

	// Define groups (order controls display order)
	rootCmd.AddGroup(&cobra.Group{ID: "getting-started", Title: "Getting Started"})
	rootCmd.AddGroup(&cobra.Group{ID: "template", Title: "Template"})
	rootCmd.AddGroup(&cobra.Group{ID: "ship", Title: "Ship"})
	rootCmd.AddGroup(&cobra.Group{ID: "server", Title: "Server"})

	catalogCmd.GroupID = "getting-started"
	labCmd.GroupID = "getting-started"

	resolveCmd.GroupID = "template"
	generateCmd.GroupID = "template"
	editCmd.GroupID = "template"
	runCmd.GroupID = "template"

	archiveCmd.GroupID = "ship"
	publishCmd.GroupID = "ship"
	shareCmd.GroupID = "ship"
	newrepoCmd.GroupID = "ship"

	serveCmd.GroupID = "server"

	rootCmd.AddCommand(
		catalogCmd,
		labCmd,
		resolveCmd,
		generateCmd,
		editCmd,
		runCmd,
		archiveCmd,
		publishCmd,
		shareCmd,
		newrepoCmd,
		serveCmd,
		versionCmd,
	)

	return rootCmd
}

func isLoadSettings(cmd *cobra.Command) bool {
	// These commands need neither .env nor the config file
	var excludedCommands = map[string]struct{}{
		"version":    {},
		"newrepo":    {},
		"bash":       {},
		"fish":       {},
		"powershell": {},
		"zsh":        {},
		"help":       {},
		"tlab":       {},
	}

	_, exists := excludedCommands[cmd.Name()]
	return !exists
}

func isCheckForUpdates(cmd *cobra.Command) bool {
	var excludedCommands = map[string]struct{}{
		"bash":       {},
		"fish":       {},
		"powershell": {},
		"zsh":        {},
		"help":       {},
		"serve":      {},
	}

	_, exists := excludedCommands[cmd.Name()]
	return !exists
}

func createLogger() *zerolog.Logger {
	return logger.NewConsoleLogger()
}

func createViper() *viper.Viper {
	return viper.New() //nolint:forbidigo
}
