package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

// OpenAIConfig configures any OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	HTTPClient  *http.Client
}

type OpenAIBackend struct {
	log    *zerolog.Logger
	client *openai.Client
	config OpenAIConfig
}

func NewOpenAIBackend(log *zerolog.Logger, cfg OpenAIConfig) *OpenAIBackend {
	if cfg.Model == "" {
		cfg.Model = constants.DefaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &OpenAIBackend{
		log:    log,
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
	}
}

func (o *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	o.log.Debug().Str("model", o.config.Model).Msg("Sending chat completion request")

	temperature := o.config.Temperature
	if temperature == 0 {
		// The request field is omitempty; a zero would select the server default.
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrThrottled, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
