package template

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMainFile names the single file of a template built from plain text.
const DefaultMainFile = "template.py"

// Source is what a generator hands back: either RawText or Structured.
type Source interface {
	isSource()
}

// RawText is unstructured source code.
type RawText struct {
	Text string
}

// Structured is a complete template produced by the generator.
type Structured struct {
	Template Template
}

func (RawText) isSource()    {}
func (Structured) isSource() {}

// Normalize turns any Source into a Template and applies meta.
func Normalize(src Source, meta Metadata) (Template, error) {
	switch s := src.(type) {
	case RawText:
		if strings.TrimSpace(s.Text) == "" {
			return Template{}, errors.New("generated text is empty")
		}
		return New(DefaultMainFile, s.Text, nil).WithMetadata(meta), nil
	case Structured:
		t := s.Template.Clone()
		if err := t.Validate(); err != nil {
			return Template{}, fmt.Errorf("invalid generated template: %w", err)
		}
		return t.WithMetadata(meta), nil
	case nil:
		return Template{}, errors.New("no generated source")
	default:
		return Template{}, fmt.Errorf("unsupported source type %T", src)
	}
}
