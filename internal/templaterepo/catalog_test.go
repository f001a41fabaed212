package templaterepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/internal/testutil"
)

func TestLoadCatalog_Builtin(t *testing.T) {
	c, err := LoadCatalog(testutil.NewTestLogger(), "")
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.True(t, e.BuiltIn)
		assert.True(t, e.IsRepository(), e.Name)
		assert.NotEmpty(t, e.Stack, e.Name)
	}

	chatbot, err := c.Lookup("chatbot (langchain + anthropic + streamlit)")
	require.NoError(t, err)
	assert.Equal(t, "LangChain, Anthropic, Streamlit", chatbot.Stack)
	assert.Equal(t, "https://github.com/SourceBox-LLC/streamlit-basic-langchain-chatbot.git", chatbot.URL)
}

func TestLoadCatalog_UserFileOverridesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`templates:
  - name: AWS Lambda Auth (Streamlit + AWS Lambda)
    url: https://github.com/acme/login-fork.git
    details: Our fork
  - name: Single File (Streamlit)
    url: https://github.com/acme/snippets/blob/main/app.py
    stack: Streamlit, Pandas
`), 0600))

	c, err := LoadCatalog(testutil.NewTestLogger(), path)
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "https://github.com/acme/login-fork.git", entries[0].URL)
	assert.False(t, entries[0].BuiltIn)
	assert.Equal(t, "Our fork", entries[0].Metadata().Details)

	single, err := c.Lookup("Single File (Streamlit)")
	require.NoError(t, err)
	assert.False(t, single.IsRepository())
	assert.Equal(t, "Streamlit, Pandas", single.Stack)
}

func TestLoadCatalog_Errors(t *testing.T) {
	logger := testutil.NewTestLogger()

	_, err := LoadCatalog(logger, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - name: No URL\n"), 0600))
	_, err = LoadCatalog(logger, path)
	assert.ErrorContains(t, err, "name and url are required")
}

func TestCatalogLookupMissing(t *testing.T) {
	c := NewCatalog(Entry{Name: "One", URL: "https://github.com/a/b.git"})
	_, err := c.Lookup("Two")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorContains(t, err, `template "Two" not found`)
}

func TestStackFromName(t *testing.T) {
	assert.Equal(t, "Streamlit, AWS Lambda", stackFromName("AWS Lambda Auth (Streamlit + AWS Lambda)"))
	assert.Equal(t, "Hugging Face, Streamlit", stackFromName("Image Generator Multi-Modal (Hugging Face + Streamlit)"))
	assert.Equal(t, "", stackFromName("Plain name"))
}
