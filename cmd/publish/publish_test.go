package publish_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/cmd/publish"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
	"github.com/sourcebox-llc/template-lab/internal/testutil/fakes"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

const repoURL = "https://github.com/acme/site.git"

func newHandler(t *testing.T, p *fakes.Publisher) *publish.Handler {
	t.Helper()
	v, err := validation.NewValidator()
	require.NoError(t, err)
	return publish.NewHandler(testutil.NewDiscardLogger(), p, v)
}

func localFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveInputs(t *testing.T) {
	h := newHandler(t, &fakes.Publisher{})
	v := viper.New()
	v.Set(settings.Flags.File.Name, "app.py")
	v.Set(settings.Flags.Message.Name, "First version")

	inputs, err := h.ResolveInputs([]string{repoURL}, v)
	require.NoError(t, err)
	assert.Equal(t, publish.Inputs{RepoURL: repoURL, File: "app.py", Message: "First version"}, inputs)

	_, err = h.ResolveInputs(nil, v)
	require.Error(t, err)
}

func TestValidateInputs(t *testing.T) {
	h := newHandler(t, &fakes.Publisher{})
	file := localFile(t, "print()\n")

	tests := []struct {
		name    string
		inputs  publish.Inputs
		wantErr string
	}{
		{name: "valid", inputs: publish.Inputs{RepoURL: repoURL, File: file}},
		{name: "ssh url", inputs: publish.Inputs{RepoURL: "git@github.com:acme/site.git", File: file}},
		{name: "bad url", inputs: publish.Inputs{RepoURL: "acme", File: file}, wantErr: "repository-url"},
		{name: "missing file", inputs: publish.Inputs{RepoURL: repoURL, File: filepath.Join(t.TempDir(), "nope.py")}, wantErr: "--file"},
		{name: "empty file", inputs: publish.Inputs{RepoURL: repoURL}, wantErr: "--file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.ValidateInputs(tt.inputs)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecute(t *testing.T) {
	p := &fakes.Publisher{}
	h := newHandler(t, p)
	file := localFile(t, "import streamlit as st\n")

	require.NoError(t, h.Execute(context.Background(), publish.Inputs{RepoURL: repoURL, File: file, Message: "ship it"}))

	assert.Equal(t, 1, p.Calls)
	assert.Equal(t, repoURL, p.RepoURL)
	assert.Equal(t, "import streamlit as st\n", p.FileText)
	assert.Equal(t, "ship it", p.Message)
}

func TestExecute_PublishFailure(t *testing.T) {
	boom := errors.New("push rejected")
	h := newHandler(t, &fakes.Publisher{Err: boom})

	err := h.Execute(context.Background(), publish.Inputs{RepoURL: repoURL, File: localFile(t, "x")})

	require.ErrorIs(t, err, boom)
}
