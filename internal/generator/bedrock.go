package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

// BedrockConfig selects the model and credentials. Empty keys fall back to
// the default AWS credential chain (environment, shared config, IMDS).
type BedrockConfig struct {
	Region          string
	Model           string
	AccessKeyID     string
	SecretAccessKey string
	Temperature     float32
	MaxTokens       int32
}

type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockBackend talks to Anthropic models on AWS Bedrock through the Converse API.
type BedrockBackend struct {
	log    *zerolog.Logger
	api    converseAPI
	config BedrockConfig
}

func NewBedrockBackend(ctx context.Context, log *zerolog.Logger, cfg BedrockConfig) (*BedrockBackend, error) {
	if cfg.Region == "" {
		cfg.Region = constants.DefaultBedrockRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newBedrockBackend(log, bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrockBackend(log *zerolog.Logger, api converseAPI, cfg BedrockConfig) *BedrockBackend {
	if cfg.Model == "" {
		cfg.Model = constants.DefaultBedrockModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	return &BedrockBackend{log: log, api: api, config: cfg}
}

func (b *BedrockBackend) Complete(ctx context.Context, system, user string) (string, error) {
	b.log.Debug().Str("model", b.config.Model).Msg("Sending Bedrock Converse request")

	out, err := b.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.config.Model),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: user}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(b.config.Temperature),
			MaxTokens:   aws.Int32(b.config.MaxTokens),
		},
	})
	if err != nil {
		var throttled *types.ThrottlingException
		if errors.As(err, &throttled) {
			return "", fmt.Errorf("%w: %v", ErrThrottled, err)
		}
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse: unexpected output type %T", out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return sb.String(), nil
}
