package editor

import (
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

// Settings configures the code editor widget.
type Settings struct {
	Theme           string `json:"theme" mapstructure:"theme" validate:"editor_theme" cli:"editor.theme"`
	Language        string `json:"language" mapstructure:"language" validate:"editor_language" cli:"editor.language"`
	Height          int    `json:"height" mapstructure:"height" validate:"min=300,max=1000" cli:"editor.height"`
	FontSize        int    `json:"font_size" mapstructure:"font-size" validate:"min=8,max=24" cli:"editor.font-size"`
	TabSize         int    `json:"tab_size" mapstructure:"tab-size" validate:"min=2,max=8" cli:"editor.tab-size"`
	Wrap            bool   `json:"wrap" mapstructure:"wrap"`
	ShowGutter      bool   `json:"show_gutter" mapstructure:"show-gutter"`
	ShowPrintMargin bool   `json:"show_print_margin" mapstructure:"show-print-margin"`
	Keybinding      string `json:"keybinding" mapstructure:"keybinding" validate:"editor_keybinding" cli:"editor.keybinding"`
	AutoUpdate      bool   `json:"auto_update" mapstructure:"auto-update"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:           "monokai",
		Language:        "python",
		Height:          600,
		FontSize:        14,
		TabSize:         4,
		Wrap:            true,
		ShowGutter:      true,
		ShowPrintMargin: false,
		Keybinding:      "vscode",
		AutoUpdate:      true,
	}
}

// Validate range-checks s.
func (s Settings) Validate(v *validation.Validator) error {
	return v.Struct(s)
}
