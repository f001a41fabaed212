package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishInput struct {
	RepoURL string `validate:"required,repo_url" cli:"--repo"`
	Message string `validate:"max=72" cli:"--message"`
}

type llmInput struct {
	Provider string `validate:"llm_provider" cli:"--llm-provider"`
	BaseURL  string `validate:"omitempty,http_url" cli:"--llm-base-url"`
}

type editorInput struct {
	Theme      string `validate:"editor_theme"`
	Language   string `validate:"editor_language"`
	Keybinding string `validate:"editor_keybinding"`
	FontSize   int    `validate:"min=8,max=24"`
}

func TestNewValidator_Success(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NotNil(t, v.Validate())
	assert.NotNil(t, v.Translator())
}

func TestValidator_Struct(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*Validator) error
		input       interface{}
		wantKeys    []string
		wantDetails []string
	}{
		{
			name:  "valid publish input",
			input: &publishInput{RepoURL: "https://github.com/acme/site.git", Message: "Update template"},
		},
		{
			name:        "missing repo uses cli name",
			input:       &publishInput{},
			wantKeys:    []string{"publishInput.RepoURL"},
			wantDetails: []string{"--repo is a required field"},
		},
		{
			name:        "bad repo url",
			input:       &publishInput{RepoURL: "https://github.com/acme"},
			wantKeys:    []string{"publishInput.RepoURL"},
			wantDetails: []string{"--repo must be a git repository URL such as https://github.com/owner/repo.git: https://github.com/acme"},
		},
		{
			name:        "unknown provider and bad base url",
			input:       &llmInput{Provider: "palm", BaseURL: "not a url"},
			wantKeys:    []string{"llmInput.Provider", "llmInput.BaseURL"},
			wantDetails: []string{"--llm-provider must be one of bedrock, openai: palm", "--llm-base-url must be a valid HTTP URL: not a url"},
		},
		{
			name: "custom translation",
			setup: func(v *Validator) error {
				return v.RegisterCustomTranslation("editor_theme", "{0} is not a theme we ship: {1}")
			},
			input:       &editorInput{Theme: "dracula", Language: "python", Keybinding: "vscode", FontSize: 14},
			wantKeys:    []string{"editorInput.Theme"},
			wantDetails: []string{"Theme is not a theme we ship: dracula"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValidator()
			require.NoError(t, err)
			if tt.setup != nil {
				require.NoError(t, tt.setup(v))
			}

			err = v.Struct(tt.input)
			if len(tt.wantKeys) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "expected wrapped validator.ValidationErrors")
			for i := range tt.wantKeys {
				AssertErrors(t, err, tt.wantKeys[i], tt.wantDetails[i], v)
			}
		})
	}
}

func TestValidator_ParseValidationErrors(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.Struct(&editorInput{Theme: "monokai", Language: "cobol", Keybinding: "nano", FontSize: 30})
	require.Error(t, err)

	got := fmt.Sprintf("%v", v.ParseValidationErrors(err))
	assert.Equal(t, "validation error\n"+
		"Language must be one of python, javascript, html, css, java, c++, ruby, markdown: cobol\n"+
		"Keybinding must be one of ace, vscode, sublime, emacs, vim: nano\n"+
		"FontSize must be 24 or less\n", got)
}

func TestValidator_Var(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Var("git@github.com:acme/site.git", "repo_url"))

	err = v.Var("acme", "repo_url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a git repository URL")
}
