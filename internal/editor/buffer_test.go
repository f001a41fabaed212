package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebox-llc/template-lab/internal/generator"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

type fakeRewriter struct {
	out         string
	err         error
	instruction string
	code        string
}

func (f *fakeRewriter) Edit(ctx context.Context, instruction, code string) (string, error) {
	f.instruction = instruction
	f.code = code
	return f.out, f.err
}

func TestBuffer_SeedAndReplace(t *testing.T) {
	b := NewBuffer("")
	assert.Equal(t, 1, b.Version())

	b.Seed(template.New("app.py", "print('hi')", nil))
	assert.Equal(t, "print('hi')", b.Text())
	assert.Equal(t, 2, b.Version())
	assert.Equal(t, "editor-2", b.WidgetKey())

	b.Replace("print('typed')")
	assert.Equal(t, "print('typed')", b.Text())
	assert.Equal(t, 2, b.Version(), "manual edits keep the widget")
}

func TestBuffer_RewriteSuccess(t *testing.T) {
	b := NewBuffer("print('hello')")
	r := &fakeRewriter{out: "print('goodbye')"}

	require.NoError(t, b.Rewrite(context.Background(), r, "say goodbye"))
	assert.Equal(t, "say goodbye", r.instruction)
	assert.Equal(t, "print('hello')", r.code)
	assert.Equal(t, "print('goodbye')", b.Text())
	assert.Equal(t, 2, b.Version())
}

func TestBuffer_RewriteFailureLeavesBuffer(t *testing.T) {
	tests := []struct {
		name string
		r    *fakeRewriter
	}{
		{"error", &fakeRewriter{err: errors.New("model unavailable")}},
		{"generation error", &fakeRewriter{err: &generator.GenerationError{Op: "edit"}}},
		{"empty output", &fakeRewriter{out: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer("original")
			err := b.Rewrite(context.Background(), tt.r, "change it")
			require.Error(t, err)
			assert.ErrorIs(t, err, generator.ErrGenerationFailure)
			assert.Equal(t, "original", b.Text())
			assert.Equal(t, 1, b.Version())
		})
	}
}

func TestSettings(t *testing.T) {
	v, err := validation.NewValidator()
	require.NoError(t, err)

	s := DefaultSettings()
	assert.NoError(t, s.Validate(v))

	s.FontSize = 30
	s.TabSize = 1
	s.Height = 200
	s.Theme = "dracula"
	err = s.Validate(v)
	require.Error(t, err)
	for _, field := range []string{"editor.font-size", "editor.tab-size", "editor.height", "editor.theme"} {
		assert.Contains(t, err.Error(), field)
	}
}
