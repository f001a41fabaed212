package catalog_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/cmd/catalog"
	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
)

func newHandler(entries ...templaterepo.Entry) (*catalog.Handler, *bytes.Buffer) {
	var out bytes.Buffer
	return catalog.NewHandler(testutil.NewDiscardLogger(), templaterepo.NewCatalog(entries...), &out), &out
}

func TestResolveInputs(t *testing.T) {
	h, _ := newHandler()

	t.Run("defaults to table", func(t *testing.T) {
		inputs, err := h.ResolveInputs(viper.New())
		require.NoError(t, err)
		assert.Equal(t, utils.TableOutputFormat, inputs.Format)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		v := viper.New()
		v.Set(settings.Flags.Format.Name, "xml")
		_, err := h.ResolveInputs(v)
		require.ErrorIs(t, err, utils.ErrUnsupportedFormat)
	})
}

func TestExecute_Table(t *testing.T) {
	h, out := newHandler(
		templaterepo.Entry{Name: "Chatbot (LangChain + Streamlit)", URL: "https://github.com/acme/chatbot.git", Stack: "LangChain, Streamlit", BuiltIn: true},
		templaterepo.Entry{Name: "Snippet (Gradio)", URL: "https://raw.githubusercontent.com/acme/s/main/app.py", Stack: "Gradio"},
	)

	require.NoError(t, h.Execute(catalog.Inputs{Format: utils.TableOutputFormat}))

	text := out.String()
	assert.Contains(t, text, "Chatbot (LangChain + Streamlit)")
	assert.Contains(t, text, "repository")
	assert.Contains(t, text, "Snippet (Gradio)")
	assert.Contains(t, text, "user")
}

func TestExecute_JSON(t *testing.T) {
	h, out := newHandler(templaterepo.Entry{Name: "A (Flask)", URL: "https://github.com/acme/a.git", Stack: "Flask", BuiltIn: true})

	require.NoError(t, h.Execute(catalog.Inputs{Format: utils.JsonOutputFormat}))

	var got []templaterepo.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "A (Flask)", got[0].Name)
	assert.True(t, got[0].BuiltIn)
}

func TestExecute_Empty(t *testing.T) {
	h, out := newHandler()

	require.NoError(t, h.Execute(catalog.Inputs{Format: utils.TableOutputFormat}))
	assert.Equal(t, "No templates in catalog\n", out.String())
}
