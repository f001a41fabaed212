package files_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/internal/validation"
)

type catalogPath struct {
	Path string `validate:"file_read,yaml" cli:"--catalog"`
}

func TestCatalogPathValidators(t *testing.T) {
	v, err := validation.NewValidator()
	require.NoError(t, err)

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
		return p
	}

	t.Run("valid yaml", func(t *testing.T) {
		p := write("catalog.yaml", "templates:\n  - name: a\n    url: b\n")
		assert.NoError(t, v.Struct(catalogPath{Path: p}))
	})

	t.Run("empty file", func(t *testing.T) {
		p := write("empty.yaml", "")
		assert.NoError(t, v.Struct(catalogPath{Path: p}))
	})

	t.Run("broken yaml", func(t *testing.T) {
		p := write("broken.yaml", "templates: [a, b\n")
		err := v.Struct(catalogPath{Path: p})
		require.Error(t, err)
		validation.AssertErrors(t, err, "catalogPath.Path", "--catalog must be a valid YAML file: "+p, v)
	})

	t.Run("missing file", func(t *testing.T) {
		p := filepath.Join(dir, "missing.yaml")
		err := v.Struct(catalogPath{Path: p})
		require.Error(t, err)
		validation.AssertErrors(t, err, "catalogPath.Path", "--catalog must be a readable file: "+p, v)
	})

	t.Run("directory", func(t *testing.T) {
		err := v.Struct(catalogPath{Path: dir})
		assert.Error(t, err)
	})
}
