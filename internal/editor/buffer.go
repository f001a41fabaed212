// Package editor holds the text being edited in a lab session and the
// settings of the widget that displays it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcebox-llc/template-lab/internal/generator"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// Rewriter edits code according to a natural-language instruction.
type Rewriter interface {
	Edit(ctx context.Context, instruction, code string) (string, error)
}

// Buffer is the editable copy of a template's main file. Version changes
// whenever the content is replaced from outside the widget, so a UI can
// re-create the widget with the new text.
type Buffer struct {
	text    string
	version int
}

func NewBuffer(content string) *Buffer {
	b := &Buffer{}
	b.set(content)
	return b
}

// Seed loads the main file of t.
func (b *Buffer) Seed(t template.Template) {
	b.set(t.MainFileContent)
}

func (b *Buffer) set(content string) {
	b.text = content
	b.version++
}

// Replace records a manual edit made in the widget itself.
func (b *Buffer) Replace(text string) {
	b.text = text
}

// Rewrite asks r to edit the buffer. On failure the buffer is untouched.
func (b *Buffer) Rewrite(ctx context.Context, r Rewriter, instruction string) error {
	out, err := r.Edit(ctx, instruction, b.text)
	if err != nil {
		if errors.Is(err, generator.ErrGenerationFailure) {
			return err
		}
		return &generator.GenerationError{Op: "edit", Cause: err}
	}
	if strings.TrimSpace(out) == "" {
		return &generator.GenerationError{Op: "edit", Cause: errors.New("model returned no content")}
	}

	b.set(out)
	return nil
}

func (b *Buffer) Text() string {
	return b.text
}

func (b *Buffer) Version() int {
	return b.version
}

// WidgetKey identifies the widget instance for the current version.
func (b *Buffer) WidgetKey() string {
	return fmt.Sprintf("editor-%d", b.version)
}
