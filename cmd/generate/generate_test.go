package generate_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/cmd/generate"
	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
	"github.com/sourcebox-llc/template-lab/internal/testutil/fakes"
)

func newHandler(gen *fakes.Generator) (*generate.Handler, *bytes.Buffer) {
	log := testutil.NewDiscardLogger()
	lab := session.NewLab(log, session.Services{Generator: gen}, nil)
	var out bytes.Buffer
	return generate.NewHandler(log, lab, &out), &out
}

func TestResolveInputs(t *testing.T) {
	h, _ := newHandler(&fakes.Generator{})

	t.Run("joins args into the prompt", func(t *testing.T) {
		v := viper.New()
		v.Set(settings.Flags.Name.Name, "Charts")
		inputs, err := h.ResolveInputs([]string{"a streamlit", "chart app"}, v)
		require.NoError(t, err)
		assert.Equal(t, "a streamlit chart app", inputs.Prompt)
		assert.Equal(t, template.Metadata{Name: "Charts", Details: "a streamlit chart app"}, inputs.Meta)
		assert.Equal(t, utils.TableOutputFormat, inputs.Format)
	})

	t.Run("rejects a blank prompt", func(t *testing.T) {
		_, err := h.ResolveInputs([]string{"  "}, viper.New())
		require.Error(t, err)
	})
}

func TestExecute_PrintsRawText(t *testing.T) {
	gen := &fakes.Generator{Source: template.RawText{Text: "import streamlit as st\nst.title('hi')\n"}}
	h, out := newHandler(gen)

	err := h.Execute(context.Background(), generate.Inputs{Prompt: "hello app", Format: utils.TableOutputFormat})
	require.NoError(t, err)

	assert.Equal(t, []string{"hello app"}, gen.Prompts)
	assert.Contains(t, out.String(), "# "+template.DefaultMainFile+"\nimport streamlit as st")
}

func TestExecute_WritesDirectory(t *testing.T) {
	structured := template.New("app.py", "print('app')\n", map[string]string{"lib/util.py": "X = 1\n"})
	h, out := newHandler(&fakes.Generator{Source: template.Structured{Template: structured}})
	dir := t.TempDir()

	err := h.Execute(context.Background(), generate.Inputs{Prompt: "app", Output: dir, Format: utils.TableOutputFormat})
	require.NoError(t, err)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(filepath.Join(dir, "lib", "util.py"))
	require.NoError(t, err)
	assert.Equal(t, "X = 1\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "app.py"))
}

func TestWriteFiles_RejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	tmpl := template.New("app.py", "print()\n", map[string]string{"../evil.py": "boom"})

	_, err := generate.WriteFiles(dir, tmpl)

	require.ErrorIs(t, err, template.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(dir, "app.py"))
}

func TestWriteFiles_RejectsCollidingPaths(t *testing.T) {
	dir := t.TempDir()
	tmpl := template.New("app.py", "print()\n", map[string]string{
		"a/../b.py": "first",
		"b.py":      "second",
	})

	_, err := generate.WriteFiles(dir, tmpl)

	require.ErrorIs(t, err, template.ErrUnsafePath)
	assert.Contains(t, err.Error(), "both map to")
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
