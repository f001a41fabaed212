package ui

import (
	"strings"

	"github.com/charmbracelet/huh"
)

// Confirm displays a yes/no confirmation prompt and returns the user's choice.
func Confirm(title string) (bool, error) {
	var result bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&result),
		),
	).WithTheme(LabTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return result, nil
}

// --- Input ---

// InputOption configures an Input prompt.
type InputOption func(*inputConfig)

type inputConfig struct {
	placeholder string
}

// WithPlaceholder sets the placeholder text for an Input prompt.
func WithPlaceholder(placeholder string) InputOption {
	return func(c *inputConfig) {
		c.placeholder = placeholder
	}
}

// Input displays a single text input prompt and returns the entered value.
func Input(title string, opts ...InputOption) (string, error) {
	cfg := inputConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	var result string
	input := huh.NewInput().
		Title(title).
		Value(&result)

	if cfg.placeholder != "" {
		input = input.Placeholder(cfg.placeholder)
	}

	form := huh.NewForm(
		huh.NewGroup(input),
	).WithTheme(LabTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return result, nil
}

// --- Text ---

// TextOption configures a multi-line Text prompt.
type TextOption func(*textConfig)

type textConfig struct {
	description string
}

func WithTextDescription(desc string) TextOption {
	return func(c *textConfig) {
		c.description = desc
	}
}

const textLines = 20

// Text opens a multi-line editor seeded with initial and returns the edited
// text. Enter inserts a newline and ctrl+s submits.
func Text(title, initial string, opts ...TextOption) (string, error) {
	cfg := textConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	result := initial
	text := huh.NewText().
		Title(title).
		Lines(textLines).
		ShowLineNumbers(true).
		CharLimit(0).
		Value(&result)

	if cfg.description != "" {
		text = text.Description(cfg.description)
	}

	form := huh.NewForm(
		huh.NewGroup(text),
	).WithTheme(LabTheme()).WithKeyMap(LabKeyMap())

	if err := form.Run(); err != nil {
		return "", err
	}
	return result, nil
}

// --- Select ---

// SelectOption represents a single option in a Select prompt.
type SelectOption[T comparable] struct {
	Label string
	Value T
}

// Select displays a selection prompt and returns the chosen value.
func Select[T comparable](title string, options []SelectOption[T]) (T, error) {
	var result T

	huhOpts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		huhOpts[i] = huh.NewOption(opt.Label, opt.Value)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[T]().
				Title(title).
				Options(huhOpts...).
				Value(&result),
		),
	).WithTheme(LabTheme())

	if err := form.Run(); err != nil {
		return result, err
	}
	return result, nil
}

// --- DetailsForm ---

// DetailField is one optional line of a DetailsForm.
type DetailField struct {
	Title       string
	Placeholder string
	Value       *string
	Suggestions []string
	Validate    func(string) error
}

// DetailsForm shows fields on a single page under title. Fields start from
// the current value of their Value pointer and are trimmed on submit.
func DetailsForm(title, note string, fields []DetailField) error {
	inputs := make([]huh.Field, 0, len(fields)+1)
	inputs = append(inputs, huh.NewNote().Title(title).Description(note))
	for _, f := range fields {
		input := huh.NewInput().
			Title(f.Title).
			Placeholder(f.Placeholder).
			Value(f.Value)
		if len(f.Suggestions) > 0 {
			input = input.Suggestions(f.Suggestions)
		}
		if f.Validate != nil {
			input = input.Validate(f.Validate)
		}
		inputs = append(inputs, input)
	}

	form := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(LabTheme())
	if err := form.Run(); err != nil {
		return err
	}
	for _, f := range fields {
		*f.Value = strings.TrimSpace(*f.Value)
	}
	return nil
}
