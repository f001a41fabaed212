package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

func TestSelectCommand(t *testing.T) {
	catalog := templaterepo.NewCatalog(templaterepo.Entry{
		Name: "Chatbot (Streamlit)",
		URL:  "https://github.com/acme/chatbot.git",
	})
	meta := template.Metadata{Name: "mine"}

	tests := []struct {
		name   string
		target string
		ref    string
		want   session.Command
	}{
		{
			name:   "catalog entry",
			target: "Chatbot (Streamlit)",
			want:   session.SelectCatalogEntry{Name: "Chatbot (Streamlit)"},
		},
		{
			name:   "repository URL",
			target: "https://github.com/acme/other",
			want:   session.ResolveRepository{URL: "https://github.com/acme/other", Meta: meta},
		},
		{
			name:   "owner/repo with ref",
			target: "acme/other",
			ref:    "v2",
			want:   session.ResolveRepository{URL: "acme/other", Ref: "v2", Meta: meta},
		},
		{
			name:   "blob view",
			target: "https://github.com/acme/other/blob/main/app.py",
			want:   session.SelectRaw{URL: "https://github.com/acme/other/blob/main/app.py", Meta: meta},
		},
		{
			name:   "raw URL",
			target: "https://raw.githubusercontent.com/acme/other/main/app.py",
			want:   session.SelectRaw{URL: "https://raw.githubusercontent.com/acme/other/main/app.py", Meta: meta},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectCommand(catalog, tt.target, tt.ref, meta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectCommand_UnknownName(t *testing.T) {
	catalog := templaterepo.NewCatalog()

	_, err := SelectCommand(catalog, "Nope (Gradio)", "", template.Metadata{})

	assert.ErrorIs(t, err, templaterepo.ErrEntryNotFound)
}

func TestSelectCommand_NoCatalog(t *testing.T) {
	got, err := SelectCommand(nil, "acme/other", "", template.Metadata{})

	require.NoError(t, err)
	assert.Equal(t, session.ResolveRepository{URL: "acme/other"}, got)
}

func TestLooksLikeURL(t *testing.T) {
	assert.True(t, LooksLikeURL("https://github.com/acme/x"))
	assert.True(t, LooksLikeURL("git@github.com:acme/x.git"))
	assert.True(t, LooksLikeURL("acme/x"))
	assert.False(t, LooksLikeURL("Chatbot (LangChain + Anthropic + Streamlit)"))
	assert.False(t, LooksLikeURL("starter"))
}
