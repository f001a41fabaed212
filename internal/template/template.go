// Package template holds the Template value shared by every part of the lab:
// one main file plus any number of auxiliary files and display metadata.
package template

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

var ErrMainFileInOtherFiles = errors.New("main file must not appear in other files")

// Template is a resolved or generated starter project.
//
// Only MainFileContent changes after construction, through SetMainFileContent.
type Template struct {
	MainFile        string            `json:"main_file"`
	MainFileContent string            `json:"main_file_content"`
	OtherFiles      map[string]string `json:"other_files"`
	Details         string            `json:"details,omitempty"`
	Stack           string            `json:"stack,omitempty"`
	Image           string            `json:"image,omitempty"`
	Name            string            `json:"name,omitempty"`
}

// Metadata is display information supplied by whoever asked for the template.
type Metadata struct {
	Name    string `json:"name,omitempty" yaml:"name"`
	Details string `json:"details,omitempty" yaml:"details"`
	Stack   string `json:"stack,omitempty" yaml:"stack"`
	Image   string `json:"image,omitempty" yaml:"image"`
}

// New builds a Template. An entry in other keyed by mainFile is dropped.
func New(mainFile, mainContent string, other map[string]string) Template {
	files := make(map[string]string, len(other))
	for path, content := range other {
		if path == mainFile {
			continue
		}
		files[path] = content
	}

	return Template{
		MainFile:        mainFile,
		MainFileContent: mainContent,
		OtherFiles:      files,
	}
}

// WithMetadata returns a copy of t carrying meta. Empty fields in meta keep t's values.
func (t Template) WithMetadata(meta Metadata) Template {
	out := t.Clone()
	if meta.Name != "" {
		out.Name = meta.Name
	}
	if meta.Details != "" {
		out.Details = meta.Details
	}
	if meta.Stack != "" {
		out.Stack = meta.Stack
	}
	if meta.Image != "" {
		out.Image = meta.Image
	}
	return out
}

// Metadata returns the display fields of t.
func (t Template) Metadata() Metadata {
	return Metadata{Name: t.Name, Details: t.Details, Stack: t.Stack, Image: t.Image}
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.OtherFiles = maps.Clone(t.OtherFiles)
	if out.OtherFiles == nil {
		out.OtherFiles = map[string]string{}
	}
	return out
}

// SetMainFileContent replaces the main file text.
func (t *Template) SetMainFileContent(content string) {
	t.MainFileContent = content
}

// Validate checks the structural invariants.
func (t Template) Validate() error {
	if strings.TrimSpace(t.MainFile) == "" {
		return errors.New("main file name is required")
	}
	if _, ok := t.OtherFiles[t.MainFile]; ok {
		return fmt.Errorf("%w: %s", ErrMainFileInOtherFiles, t.MainFile)
	}
	return nil
}

// Files returns every path in t, main file first, the rest sorted.
func (t Template) Files() []string {
	rest := make([]string, 0, len(t.OtherFiles))
	for path := range t.OtherFiles {
		rest = append(rest, path)
	}
	sort.Strings(rest)
	return append([]string{t.MainFile}, rest...)
}

// Content returns the text stored for path.
func (t Template) Content(path string) (string, bool) {
	if path == t.MainFile {
		return t.MainFileContent, true
	}
	content, ok := t.OtherFiles[path]
	return content, ok
}

// StackTags splits Stack on commas.
func (t Template) StackTags() []string {
	var tags []string
	for _, tag := range strings.Split(t.Stack, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
