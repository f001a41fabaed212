package runtime

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/internal/logger"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

// Context carries what every command needs: the logger, the viper store
// holding flags and config, and the settings assembled from them.
type Context struct {
	Logger    *zerolog.Logger
	Viper     *viper.Viper
	Settings  *settings.Settings
	Validator *validation.Validator
}

func NewContext(logger *zerolog.Logger, viper *viper.Viper) *Context {
	return &Context{
		Logger: logger,
		Viper:  viper,
	}
}

// ConfigureLogger applies --verbose and --log-file.
func (ctx *Context) ConfigureLogger() {
	level := "info"
	if ctx.Viper.GetBool(settings.Flags.Verbose.Name) {
		level = "debug"
	}
	ctx.Logger = logger.New(
		logger.WithLevel(level),
		logger.WithOutput(os.Stderr),
		logger.WithConsoleWriter(true),
		logger.WithFile(ctx.Viper.GetString(settings.Flags.LogFile.Name)),
	)
}

func (ctx *Context) AttachSettings(_ *cobra.Command) error {
	var err error

	ctx.Settings, err = settings.New(ctx.Logger, ctx.Viper)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	return nil
}

func (ctx *Context) AttachValidator() error {
	var err error

	ctx.Validator, err = validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	return nil
}

// Attach loads settings and the validator in one go.
func (ctx *Context) Attach(cmd *cobra.Command) error {
	if err := ctx.AttachSettings(cmd); err != nil {
		return err
	}
	return ctx.AttachValidator()
}
