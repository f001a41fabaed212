package runtime

import (
	"context"
	"fmt"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/exec"
	"github.com/sourcebox-llc/template-lab/internal/generator"
	"github.com/sourcebox-llc/template-lab/internal/gist"
	"github.com/sourcebox-llc/template-lab/internal/publish"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

func (ctx *Context) Catalog() (*templaterepo.Catalog, error) {
	return templaterepo.LoadCatalog(ctx.Logger, ctx.Settings.Catalog.File)
}

func (ctx *Context) Resolver() *templaterepo.Resolver {
	client := templaterepo.NewClient(ctx.Logger,
		templaterepo.WithToken(ctx.Settings.GitHubToken.RawValue()),
	)

	opts := []templaterepo.ResolverOption{
		templaterepo.WithConcurrency(ctx.Settings.Resolver.Concurrency),
	}
	if ttl := ctx.Settings.Resolver.CacheTTL; ttl > 0 {
		opts = append(opts, templaterepo.WithCache(templaterepo.NewCache(ctx.Logger, ttl)))
	}
	return templaterepo.NewResolver(ctx.Logger, client, opts...)
}

// Generator builds the LLM client for the configured provider.
func (ctx *Context) Generator(c context.Context) (*generator.Client, error) {
	llm := ctx.Settings.LLM

	var backend generator.Completer
	switch llm.Provider {
	case constants.LLMProviderOpenAI:
		backend = generator.NewOpenAIBackend(ctx.Logger, generator.OpenAIConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Temperature: llm.Temperature,
		})
	case constants.LLMProviderBedrock:
		b, err := generator.NewBedrockBackend(c, ctx.Logger, generator.BedrockConfig{
			Region:          ctx.Settings.AWS.Region,
			Model:           llm.Model,
			AccessKeyID:     ctx.Settings.AWS.AccessKeyID,
			SecretAccessKey: ctx.Settings.AWS.SecretAccessKey,
			Temperature:     llm.Temperature,
			MaxTokens:       llm.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", llm.Provider)
	}

	return generator.New(ctx.Logger, backend, generator.WithMaxAttempts(llm.MaxAttempts)), nil
}

func (ctx *Context) Runner() *runner.Runner {
	return runner.New(ctx.Logger,
		runner.WithInterpreter(ctx.Settings.Runner.Interpreter),
		runner.WithTimeout(ctx.Settings.Runner.Timeout),
		runner.WithCommandRunner(exec.NewRealRunner()),
	)
}

func (ctx *Context) Publisher() *publish.Publisher {
	return publish.New(ctx.Logger, publish.WithFile(ctx.Settings.Publish.File))
}

func (ctx *Context) Sharer() *gist.Client {
	return gist.New(ctx.Logger, ctx.Settings.GitHubToken)
}

// Lab wires every service into a session reducer. A generator that cannot be
// built is logged and left out, so the rest of the lab still works.
func (ctx *Context) Lab(c context.Context, catalog *templaterepo.Catalog) *session.Lab {
	svc := session.Services{
		Resolver:  ctx.Resolver(),
		Runner:    ctx.Runner(),
		Publisher: ctx.Publisher(),
		Sharer:    ctx.Sharer(),
		Catalog:   catalog,
	}

	gen, err := ctx.Generator(c)
	if err != nil {
		ctx.Logger.Warn().Err(err).Msg("Template generation is unavailable")
	} else {
		svc.Generator = gen
	}

	return session.NewLab(ctx.Logger, svc, ctx.Validator)
}
