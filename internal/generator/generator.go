// Package generator asks a language model to write or edit template code.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

const (
	GenerateInstruction = "You are a code template generator. Your output should be only valid code. Do not include any other text or comments."
	EditInstruction     = "You are a code template editor. Your goal is to edit the CODE provided based on the user PROMPT. Your output should be only valid code. Do not include any other text or comments."
)

var (
	ErrGenerationFailure = errors.New("generation failed")
	// ErrThrottled marks a backend error that is worth retrying.
	ErrThrottled = errors.New("model request throttled")
)

// GenerationError wraps a failed Generate or Edit call.
type GenerationError struct {
	Op    string
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrGenerationFailure)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrGenerationFailure, e.Cause)
}

func (e *GenerationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrGenerationFailure}
	}
	return []error{ErrGenerationFailure, e.Cause}
}

// Completer sends one system + user exchange to a model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	log         *zerolog.Logger
	backend     Completer
	maxAttempts uint
	retryDelay  time.Duration
}

type Option func(*Client)

// WithMaxAttempts bounds how often a throttled request is sent.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = uint(n)
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

func New(log *zerolog.Logger, backend Completer, opts ...Option) *Client {
	c := &Client{
		log:         log,
		backend:     backend,
		maxAttempts: constants.DefaultLLMMaxAttempts,
		retryDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate produces a new template from prompt. A JSON reply with
// main_file and main_file_content is returned as template.Structured;
// anything else as template.RawText.
func (c *Client) Generate(ctx context.Context, prompt string) (template.Source, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &GenerationError{Op: "generate", Cause: errors.New("prompt is empty")}
	}

	out, err := c.complete(ctx, "generate", GenerateInstruction, prompt)
	if err != nil {
		return nil, err
	}
	c.log.Info().Msg("Template generated successfully")
	return ParseOutput(out), nil
}

// Edit rewrites code according to instruction and returns the new code.
func (c *Client) Edit(ctx context.Context, instruction, code string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", &GenerationError{Op: "edit", Cause: errors.New("instruction is empty")}
	}

	out, err := c.complete(ctx, "edit", EditInstruction, fmt.Sprintf("PROMPT: %s\nCODE: %s", instruction, code))
	if err != nil {
		return "", err
	}
	c.log.Info().Msg("Template edited successfully")
	return StripCodeFences(out), nil
}

func (c *Client) complete(ctx context.Context, op, system, user string) (string, error) {
	out, err := retry.DoWithData(
		func() (string, error) {
			return c.backend.Complete(ctx, system, user)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrThrottled)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn().Err(err).Msgf("Model request throttled, retrying (attempt %d)", n+2)
		}),
	)
	if err != nil {
		c.log.Error().Err(err).Msgf("Error during template %s", op)
		return "", &GenerationError{Op: op, Cause: err}
	}

	c.log.Debug().Str("op", op).Msgf("Raw model response: %q", out)
	if strings.TrimSpace(out) == "" {
		return "", &GenerationError{Op: op, Cause: errors.New("model returned no content")}
	}
	return out, nil
}

type structuredReply struct {
	MainFile        string            `json:"main_file"`
	MainFileContent *string           `json:"main_file_content"`
	OtherFiles      map[string]string `json:"other_files"`
	Details         string            `json:"details"`
	Stack           string            `json:"stack"`
	Name            string            `json:"name"`
}

// ParseOutput classifies a model reply as a structured template or raw text.
func ParseOutput(out string) template.Source {
	text := StripCodeFences(out)

	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		var reply structuredReply
		if err := json.Unmarshal([]byte(text), &reply); err == nil && reply.MainFile != "" && reply.MainFileContent != nil {
			t := template.New(reply.MainFile, *reply.MainFileContent, reply.OtherFiles)
			t = t.WithMetadata(template.Metadata{Name: reply.Name, Details: reply.Details, Stack: reply.Stack})
			return template.Structured{Template: t}
		}
	}
	return template.RawText{Text: text}
}

// StripCodeFences removes one surrounding markdown code fence, if present.
func StripCodeFences(out string) string {
	trimmed := strings.TrimSpace(out)
	if !strings.HasPrefix(trimmed, "```") {
		return out
	}

	body := strings.TrimPrefix(trimmed, "```")
	// Drop the info string, e.g. "python".
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return out
	}
	body = body[nl+1:]

	end := strings.LastIndex(body, "```")
	if end < 0 {
		return out
	}
	return strings.TrimRight(body[:end], " \t\r\n") + "\n"
}
