package constants

import (
	"time"
)

const (
	// Application
	AppName            = "tlab"
	AppDirName         = ".tlab"
	UserAgent          = "tlab"
	ConfigFileName     = "config.yaml"
	DefaultEnvFileName = ".env"

	// GitHub
	GitHubAPIURL     = "https://api.github.com"
	GitHubRawURL     = "https://raw.githubusercontent.com"
	GitHubNewRepoURL = "https://github.com/new"
	ReleaseRepo      = "sourcebox-llc/template-lab"
	DefaultBranch    = "main"

	// Resolver
	DefaultResolverConcurrency = 8
	DefaultResolverCacheTTL    = 10 * time.Minute
	DefaultAPITimeout          = 15 * time.Second
	MaxRawFileSize             = 5 * 1024 * 1024

	// Runner
	DefaultRunnerInterpreter = "python3"
	DefaultRunnerTimeout     = 30 * time.Second

	// Publish
	DefaultPublishFile   = "template.py"
	DefaultCommitMessage = "Update template"

	// LLM
	LLMProviderBedrock    = "bedrock"
	LLMProviderOpenAI     = "openai"
	DefaultLLMProvider    = LLMProviderBedrock
	DefaultBedrockModel   = "anthropic.claude-3-sonnet-20240229-v1:0"
	DefaultBedrockRegion  = "us-east-1"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultLLMMaxAttempts = 2

	// Server
	DefaultServerAddr = ":8080"

	// Logging
	DefaultLogLevel   = "info"
	LogFileMaxSizeMB  = 10
	LogFileMaxBackups = 3
	LogFileMaxAgeDays = 28
)

// Editor choices offered by the lab.
var (
	EditorThemes      = []string{"monokai", "github", "tomorrow", "kuroir", "twilight", "xcode", "textmate", "terminal", "solarized_dark", "solarized_light"}
	EditorLanguages   = []string{"python", "javascript", "html", "css", "java", "c++", "ruby", "markdown"}
	EditorKeybindings = []string{"ace", "vscode", "sublime", "emacs", "vim"}
	LLMProviders      = []string{LLMProviderBedrock, LLMProviderOpenAI}
)
