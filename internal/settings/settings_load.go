package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/editor"
)

// Config names (YAML field paths)
const (
	LLMProviderSettingName       = "llm.provider"
	LLMModelSettingName          = "llm.model"
	LLMBaseURLSettingName        = "llm.base-url"
	LLMAPIKeySettingName         = "llm.api-key"
	LLMTemperatureSettingName    = "llm.temperature"
	LLMMaxAttemptsSettingName    = "llm.max-attempts"
	LLMMaxTokensSettingName      = "llm.max-tokens"
	AWSRegionSettingName         = "aws.region"
	AWSAccessKeySettingName      = "aws.access-key-id"
	AWSSecretKeySettingName      = "aws.secret-access-key"
	RunnerInterpreterSettingName = "runner.interpreter"
	RunnerTimeoutSettingName     = "runner.timeout"
	ResolverConcurrencySetting   = "resolver.concurrency"
	ResolverCacheTTLSettingName  = "resolver.cache-ttl"
	CatalogFileSettingName       = "catalog.file"
	ServerAddrSettingName        = "server.addr"
	PublishFileSettingName       = "publish.file"
	GitHubTokenSettingName       = "github-token"
)

type Flag struct {
	Name  string
	Short string
}

type flagNames struct {
	CliEnvFile     Flag
	ConfigFile     Flag
	Verbose        Flag
	LogFile        Flag
	NonInteractive Flag
	Ref            Flag
	Name           Flag
	Output         Flag
	Format         Flag
	Message        Flag
	File           Flag
	Public         Flag
	Description    Flag
	Instruction    Flag
	Interpreter    Flag
	Timeout        Flag
	Addr           Flag
	Provider       Flag
	Model          Flag
}

var Flags = flagNames{
	CliEnvFile:     Flag{"env", "e"},
	ConfigFile:     Flag{"config", "c"},
	Verbose:        Flag{"verbose", "v"},
	LogFile:        Flag{"log-file", ""},
	NonInteractive: Flag{"non-interactive", ""},
	Ref:            Flag{"ref", "r"},
	Name:           Flag{"name", "n"},
	Output:         Flag{"output", "o"},
	Format:         Flag{"format", ""},
	Message:        Flag{"message", "m"},
	File:           Flag{"file", "f"},
	Public:         Flag{"public", ""},
	Description:    Flag{"description", "d"},
	Instruction:    Flag{"instruction", "i"},
	Interpreter:    Flag{"interpreter", ""},
	Timeout:        Flag{"timeout", "t"},
	Addr:           Flag{"addr", ""},
	Provider:       Flag{"provider", ""},
	Model:          Flag{"model", ""},
}

// envBindings maps config keys to the conventional variables that also set them.
var envBindings = map[string]string{
	GitHubTokenSettingName:  "GITHUB_TOKEN",
	LLMAPIKeySettingName:    "OPENAI_API_KEY",
	AWSRegionSettingName:    "AWS_REGION",
	AWSAccessKeySettingName: "AWS_ACCESS_KEY_ID",
	AWSSecretKeySettingName: "AWS_SECRET_ACCESS_KEY",
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// SetDefaults registers a default for every config key. Keys without a
// default are invisible to Unmarshal, even when the environment sets them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(LLMProviderSettingName, constants.DefaultLLMProvider)
	v.SetDefault(LLMModelSettingName, "")
	v.SetDefault(LLMBaseURLSettingName, "")
	v.SetDefault(LLMAPIKeySettingName, "")
	v.SetDefault(LLMTemperatureSettingName, 0)
	v.SetDefault(LLMMaxAttemptsSettingName, constants.DefaultLLMMaxAttempts)
	v.SetDefault(LLMMaxTokensSettingName, 0)
	v.SetDefault(AWSRegionSettingName, constants.DefaultBedrockRegion)
	v.SetDefault(AWSAccessKeySettingName, "")
	v.SetDefault(AWSSecretKeySettingName, "")
	v.SetDefault(RunnerInterpreterSettingName, constants.DefaultRunnerInterpreter)
	v.SetDefault(RunnerTimeoutSettingName, constants.DefaultRunnerTimeout)
	v.SetDefault(ResolverConcurrencySetting, constants.DefaultResolverConcurrency)
	v.SetDefault(ResolverCacheTTLSettingName, constants.DefaultResolverCacheTTL)
	v.SetDefault(CatalogFileSettingName, "")
	v.SetDefault(ServerAddrSettingName, constants.DefaultServerAddr)
	v.SetDefault(PublishFileSettingName, constants.DefaultPublishFile)
	v.SetDefault(GitHubTokenSettingName, "")

	ed := editor.DefaultSettings()
	v.SetDefault("editor.theme", ed.Theme)
	v.SetDefault("editor.language", ed.Language)
	v.SetDefault("editor.height", ed.Height)
	v.SetDefault("editor.font-size", ed.FontSize)
	v.SetDefault("editor.tab-size", ed.TabSize)
	v.SetDefault("editor.wrap", ed.Wrap)
	v.SetDefault("editor.show-gutter", ed.ShowGutter)
	v.SetDefault("editor.show-print-margin", ed.ShowPrintMargin)
	v.SetDefault("editor.keybinding", ed.Keybinding)
	v.SetDefault("editor.auto-update", ed.AutoUpdate)
}

// BindEnv makes TLAB_<KEY> override any config key ("runner.timeout" is
// TLAB_RUNNER_TIMEOUT) and binds the well-known credential variables.
func BindEnv(v *viper.Viper) error {
	prefix := strings.ToUpper(constants.AppName)
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(envKeyReplacer)

	for key, variable := range envBindings {
		prefixed := prefix + "_" + envKeyReplacer.Replace(strings.ToUpper(key))
		if err := v.BindEnv(key, prefixed, variable); err != nil {
			return fmt.Errorf("failed to bind environment variable: %s", variable)
		}
	}

	v.AutomaticEnv()
	return nil
}

// LoadSettingsIntoViper merges the config file into v. An explicit path must
// exist; the default ~/.tlab/config.yaml is optional.
func LoadSettingsIntoViper(v *viper.Viper) (string, error) {
	path := v.GetString(Flags.ConfigFile.Name)
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return "", nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigType("yaml")
	if err := mergeConfigToViper(v, path); err != nil {
		return "", err
	}
	return path, nil
}

func mergeConfigToViper(v *viper.Viper, filePath string) error {
	v.SetConfigFile(filePath)
	err := v.MergeInConfig()
	if err != nil {
		return fmt.Errorf("error loading config file %s: %w", filePath, err)
	}
	return nil
}

// AppDir returns ~/.tlab.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.AppDirName), nil
}

func DefaultConfigPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}
