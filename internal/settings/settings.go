package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/editor"
	"github.com/sourcebox-llc/template-lab/internal/gist"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

const loadEnvErrorMessage = "Not able to load configuration from .env file, skipping this optional step.\n" +
	"Credentials such as GITHUB_TOKEN, OPENAI_API_KEY or AWS_ACCESS_KEY_ID must then be exported in the shell.\n" +
	"If .env location is not provided via CLI flag, the closest .env file in the working directory or its parents is used."

const bindEnvErrorMessage = "Not able to bind environment variables that hold credentials.\n" +
	"Commands that call GitHub or a language model may fail without them."

// Settings is the validated configuration of one invocation.
type Settings struct {
	LLM         LLMSettings      `mapstructure:"llm"`
	AWS         AWSSettings      `mapstructure:"aws"`
	Runner      RunnerSettings   `mapstructure:"runner"`
	Resolver    ResolverSettings `mapstructure:"resolver"`
	Catalog     CatalogSettings  `mapstructure:"catalog"`
	Editor      editor.Settings  `mapstructure:"editor"`
	Server      ServerSettings   `mapstructure:"server"`
	Publish     PublishSettings  `mapstructure:"publish"`
	GitHubToken gist.Token       `mapstructure:"github-token"`
	ConfigFile  string           `mapstructure:"-"`
}

type LLMSettings struct {
	Provider    string  `mapstructure:"provider" validate:"llm_provider" cli:"llm.provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base-url" validate:"omitempty,http_url" cli:"llm.base-url"`
	APIKey      string  `mapstructure:"api-key"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2" cli:"llm.temperature"`
	MaxAttempts int     `mapstructure:"max-attempts" validate:"min=1,max=10" cli:"llm.max-attempts"`
	MaxTokens   int32   `mapstructure:"max-tokens" validate:"gte=0" cli:"llm.max-tokens"`
}

type AWSSettings struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
}

type RunnerSettings struct {
	Interpreter string        `mapstructure:"interpreter" validate:"required" cli:"runner.interpreter"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0" cli:"runner.timeout"`
}

type ResolverSettings struct {
	Concurrency int           `mapstructure:"concurrency" validate:"min=1,max=64" cli:"resolver.concurrency"`
	CacheTTL    time.Duration `mapstructure:"cache-ttl" validate:"gte=0" cli:"resolver.cache-ttl"`
}

type CatalogSettings struct {
	File string `mapstructure:"file" validate:"omitempty,file_read,yaml" cli:"catalog.file"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr" validate:"required" cli:"server.addr"`
}

type PublishSettings struct {
	File string `mapstructure:"file" validate:"required" cli:"publish.file"`
}

// New loads .env, binds the environment, reads the optional config file and
// returns the validated settings.
func New(logger *zerolog.Logger, v *viper.Viper) (*Settings, error) {
	envPath := v.GetString(Flags.CliEnvFile.Name)
	if err := LoadEnv(envPath); err != nil {
		logger.Debug().Err(err).Msg(loadEnvErrorMessage)
	}

	if err := BindEnv(v); err != nil {
		logger.Debug().Err(err).Msg(bindEnvErrorMessage)
	}

	SetDefaults(v)

	configPath, err := LoadSettingsIntoViper(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if configPath != "" {
		logger.Debug().Msgf("Loaded config file %s", configPath)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.ConfigFile = configPath

	validator, err := validation.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}
	if err := validator.Struct(s); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("provider", s.LLM.Provider).
		Str("interpreter", s.Runner.Interpreter).
		Dur("timeout", s.Runner.Timeout).
		Object("github", s.GitHubToken).
		Msg("Settings loaded")
	return &s, nil
}

func LoadEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading file from %s: %w", envPath, err)
			}
			return nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting working directory: %w", err)
	}

	foundEnvPath, err := findEnvFile(cwd, constants.DefaultEnvFileName)
	if err != nil {
		return fmt.Errorf("error loading environment: %w", err)
	}

	if err := godotenv.Load(foundEnvPath); err != nil {
		return fmt.Errorf("error loading file from %s: %w", foundEnvPath, err)
	}
	return nil
}

func findEnvFile(startDir, fileName string) (string, error) {
	dir := startDir

	for {
		filePath := filepath.Join(dir, fileName)

		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			return filePath, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break // Reached the root directory.
		}
		dir = parentDir
	}
	return "", fmt.Errorf("file %s not found in any parent directory starting from %s", fileName, startDir)
}
