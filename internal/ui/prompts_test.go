package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPlaceholder(t *testing.T) {
	cfg := inputConfig{}
	opt := WithPlaceholder("Enter value...")
	opt(&cfg)

	assert.Equal(t, "Enter value...", cfg.placeholder)
}

func TestWithTextDescription(t *testing.T) {
	cfg := textConfig{}
	WithTextDescription("ctrl+s to save")(&cfg)

	assert.Equal(t, "ctrl+s to save", cfg.description)
}

func TestLabKeyMap(t *testing.T) {
	km := LabKeyMap()

	assert.Equal(t, []string{"ctrl+s"}, km.Text.Submit.Keys())
	assert.Contains(t, km.Text.NewLine.Keys(), "enter")
}

func TestSelectOptionStringType(t *testing.T) {
	opts := []SelectOption[string]{
		{Label: "Streamlit", Value: "streamlit"},
		{Label: "Gradio", Value: "gradio"},
	}

	assert.Equal(t, "streamlit", opts[0].Value)
	assert.Equal(t, "gradio", opts[1].Value)
}
