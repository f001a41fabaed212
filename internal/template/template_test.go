package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DropsMainFileFromOtherFiles(t *testing.T) {
	tpl := New("app.py", "print('hi')", map[string]string{
		"app.py":    "duplicate",
		"README.md": "# readme",
	})

	assert.Equal(t, "print('hi')", tpl.MainFileContent)
	assert.NotContains(t, tpl.OtherFiles, "app.py")
	assert.Equal(t, "# readme", tpl.OtherFiles["README.md"])
	require.NoError(t, tpl.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("missing main file", func(t *testing.T) {
		err := Template{}.Validate()
		assert.Error(t, err)
	})

	t.Run("main file duplicated", func(t *testing.T) {
		tpl := Template{MainFile: "main.py", OtherFiles: map[string]string{"main.py": "x"}}
		assert.ErrorIs(t, tpl.Validate(), ErrMainFileInOtherFiles)
	})
}

func TestWithMetadata_KeepsExistingWhenEmpty(t *testing.T) {
	tpl := New("app.py", "", nil).WithMetadata(Metadata{Name: "Chatbot", Stack: "LangChain, Streamlit"})
	updated := tpl.WithMetadata(Metadata{Details: "A chatbot"})

	assert.Equal(t, "Chatbot", updated.Name)
	assert.Equal(t, "A chatbot", updated.Details)
	assert.Equal(t, []string{"LangChain", "Streamlit"}, updated.StackTags())
	assert.Empty(t, tpl.Details, "original must not change")
}

func TestClone_IsDeep(t *testing.T) {
	tpl := New("app.py", "a", map[string]string{"lib.py": "b"})
	clone := tpl.Clone()
	clone.OtherFiles["lib.py"] = "changed"
	clone.SetMainFileContent("changed")

	assert.Equal(t, "b", tpl.OtherFiles["lib.py"])
	assert.Equal(t, "a", tpl.MainFileContent)
}

func TestFilesAndContent(t *testing.T) {
	tpl := New("main.py", "m", map[string]string{"z.txt": "z", "a/b.py": "ab"})

	assert.Equal(t, []string{"main.py", "a/b.py", "z.txt"}, tpl.Files())

	content, ok := tpl.Content("main.py")
	assert.True(t, ok)
	assert.Equal(t, "m", content)

	content, ok = tpl.Content("a/b.py")
	assert.True(t, ok)
	assert.Equal(t, "ab", content)

	_, ok = tpl.Content("missing")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	meta := Metadata{Name: "Generated"}

	t.Run("raw text becomes one-file template", func(t *testing.T) {
		tpl, err := Normalize(RawText{Text: "print(1)"}, meta)
		require.NoError(t, err)
		assert.Equal(t, DefaultMainFile, tpl.MainFile)
		assert.Equal(t, "print(1)", tpl.MainFileContent)
		assert.Empty(t, tpl.OtherFiles)
		assert.Equal(t, "Generated", tpl.Name)
	})

	t.Run("blank raw text is rejected", func(t *testing.T) {
		_, err := Normalize(RawText{Text: "  \n"}, meta)
		assert.Error(t, err)
	})

	t.Run("structured passes through", func(t *testing.T) {
		src := Structured{Template: New("app.py", "x", map[string]string{"requirements.txt": "streamlit"})}
		tpl, err := Normalize(src, meta)
		require.NoError(t, err)
		assert.Equal(t, "app.py", tpl.MainFile)
		assert.Equal(t, "streamlit", tpl.OtherFiles["requirements.txt"])
		assert.Equal(t, "Generated", tpl.Name)
	})

	t.Run("structured invalid is rejected", func(t *testing.T) {
		_, err := Normalize(Structured{Template: Template{}}, meta)
		assert.Error(t, err)
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := Normalize(nil, meta)
		assert.Error(t, err)
	})
}
