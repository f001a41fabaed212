package runtime_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/testutil"
)

func newContext(t *testing.T, env map[string]string) *runtime.Context {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, name := range []string{"GITHUB_TOKEN", "OPENAI_API_KEY", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	ctx := runtime.NewContext(testutil.NewTestLogger(), viper.New())
	require.NoError(t, ctx.Attach(nil))
	return ctx
}

func TestAttach(t *testing.T) {
	ctx := newContext(t, map[string]string{"TLAB_RUNNER_TIMEOUT": "3s"})

	require.NotNil(t, ctx.Settings)
	require.NotNil(t, ctx.Validator)
	assert.Equal(t, 3*time.Second, ctx.Settings.Runner.Timeout)
}

func TestServices(t *testing.T) {
	ctx := newContext(t, map[string]string{
		"TLAB_LLM_PROVIDER": "openai",
		"OPENAI_API_KEY":    "sk-test",
	})

	catalog, err := ctx.Catalog()
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Entries())

	r := ctx.Runner()
	assert.Equal(t, "python3", r.Interpreter())
	assert.Equal(t, 30*time.Second, r.Timeout())

	assert.Equal(t, "template.py", ctx.Publisher().File())
	assert.NotNil(t, ctx.Resolver())
	assert.NotNil(t, ctx.Sharer())

	gen, err := ctx.Generator(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestLab_SelectsFromCatalog(t *testing.T) {
	ctx := newContext(t, map[string]string{"TLAB_LLM_PROVIDER": "openai"})

	catalog, err := ctx.Catalog()
	require.NoError(t, err)
	lab := ctx.Lab(context.Background(), catalog)

	s := session.New()
	_, err = lab.Dispatch(context.Background(), s, session.Deselect{})
	require.NoError(t, err)
	assert.False(t, s.HasSelection())
}
