package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

const (
	TableOutputFormat = "table"
	JsonOutputFormat  = "json"
	YamlOutputFormat  = "yaml"
)

var ErrUnsupportedFormat = errors.New("format not supported")

type FileSerialized struct {
	Path    string `yaml:"path" json:"path"`
	Main    bool   `yaml:"main,omitempty" json:"main,omitempty"`
	Content string `yaml:"content" json:"content"`
}

type TemplateSerialized struct {
	Name     string           `yaml:"name,omitempty" json:"name,omitempty"`
	Details  string           `yaml:"details,omitempty" json:"details,omitempty"`
	Stack    []string         `yaml:"stack,omitempty" json:"stack,omitempty"`
	Image    string           `yaml:"image,omitempty" json:"image,omitempty"`
	MainFile string           `yaml:"mainFile" json:"mainFile"`
	Files    []FileSerialized `yaml:"files" json:"files"`
}

func SerializeTemplate(t template.Template) TemplateSerialized {
	out := TemplateSerialized{
		Name:     t.Name,
		Details:  t.Details,
		Stack:    t.StackTags(),
		Image:    t.Image,
		MainFile: t.MainFile,
	}
	for _, path := range t.Files() {
		content, _ := t.Content(path)
		out.Files = append(out.Files, FileSerialized{
			Path:    path,
			Main:    path == t.MainFile,
			Content: content,
		})
	}
	return out
}

// Marshal renders v as JSON or YAML.
func Marshal(v any, format string) ([]byte, error) {
	switch format {
	case JsonOutputFormat:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case YamlOutputFormat:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func ValidateFormat(format string) error {
	switch format {
	case TableOutputFormat, JsonOutputFormat, YamlOutputFormat:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %s, %s or %s)", ErrUnsupportedFormat,
			format, TableOutputFormat, JsonOutputFormat, YamlOutputFormat)
	}
}

func FormatCatalogTable(entries []templaterepo.Entry) string {
	if len(entries) == 0 {
		return "No templates in catalog"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Stack", "Kind", "Source"})

	for _, e := range entries {
		kind := "file"
		if e.IsRepository() {
			kind = "repository"
		}
		source := "built-in"
		if !e.BuiltIn {
			source = "user"
		}
		t.AppendRow(table.Row{e.Name, e.Stack, kind, source})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter},
	})

	return t.Render()
}

// FormatTemplateFiles lists the files of t with their size, main file first.
func FormatTemplateFiles(t template.Template) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"", "Path", "Lines", "Bytes"})

	var total int
	for _, path := range t.Files() {
		content, _ := t.Content(path)
		marker := ""
		if path == t.MainFile {
			marker = "*"
		}
		tw.AppendRow(table.Row{marker, path, countLines(content), len(content)})
		total += len(content)
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d files", len(t.Files())), "", total})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	return tw.Render()
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// WriteTemplate prints t in the requested format. The table format shows the
// file listing followed by the main file.
func WriteTemplate(w io.Writer, t template.Template, format string) error {
	if format == TableOutputFormat {
		if t.Name != "" {
			fmt.Fprintf(w, "%s\n", t.Name)
		}
		if t.Details != "" {
			fmt.Fprintf(w, "%s\n", t.Details)
		}
		fmt.Fprintf(w, "%s\n\n# %s\n%s\n", FormatTemplateFiles(t), t.MainFile, t.MainFileContent)
		return nil
	}

	out, err := Marshal(SerializeTemplate(t), format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
