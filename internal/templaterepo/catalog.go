package templaterepo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sourcebox-llc/template-lab/internal/template"
)

//go:embed catalog/catalog.yaml
var builtinCatalog []byte

var ErrEntryNotFound = errors.New("not found in catalog")

// stackPattern captures the trailing "(A + B)" of an entry name.
var stackPattern = regexp.MustCompile(`\(([^()]+)\)\s*$`)

// Entry is one curated template.
type Entry struct {
	Name    string `yaml:"name" json:"name"`
	URL     string `yaml:"url" json:"url"`
	Image   string `yaml:"image,omitempty" json:"image,omitempty"`
	Details string `yaml:"details,omitempty" json:"details,omitempty"`
	Stack   string `yaml:"stack,omitempty" json:"stack,omitempty"`
	BuiltIn bool   `yaml:"-" json:"built_in"`
}

// IsRepository reports whether the entry names a whole repository rather than one file.
func (e Entry) IsRepository() bool {
	return strings.HasSuffix(strings.TrimRight(e.URL, "/"), ".git")
}

// Metadata returns the display metadata attached to templates resolved from e.
func (e Entry) Metadata() template.Metadata {
	return template.Metadata{
		Name:    e.Name,
		Details: e.Details,
		Stack:   e.Stack,
		Image:   e.Image,
	}
}

type catalogFile struct {
	Templates []Entry `yaml:"templates"`
}

// Catalog is the ordered list of curated templates.
type Catalog struct {
	entries []Entry
}

// LoadCatalog returns the built-in catalog followed by the entries in
// extraPath, if set. A user entry with the same name replaces the built-in one.
func LoadCatalog(logger *zerolog.Logger, extraPath string) (*Catalog, error) {
	builtin, err := parseCatalog(builtinCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in catalog: %w", err)
	}
	for i := range builtin {
		builtin[i].BuiltIn = true
	}

	c := &Catalog{entries: builtin}
	if extraPath == "" {
		return c, nil
	}

	data, err := os.ReadFile(extraPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", extraPath, err)
	}
	extra, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", extraPath, err)
	}

	logger.Debug().Msgf("Loaded %d catalog entries from %s", len(extra), extraPath)
	for _, e := range extra {
		c.add(e)
	}
	return c, nil
}

// NewCatalog builds a catalog from entries, mostly for tests.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

func (c *Catalog) add(e Entry) {
	for i := range c.entries {
		if strings.EqualFold(c.entries[i].Name, e.Name) {
			c.entries[i] = e
			return
		}
	}
	c.entries = append(c.entries, e)
}

// Entries returns a copy of every entry in display order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Lookup finds an entry by name, ignoring case.
func (c *Catalog) Lookup(name string) (Entry, error) {
	for _, e := range c.entries {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("template %q %w", name, ErrEntryNotFound)
}

func parseCatalog(data []byte) ([]Entry, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	for i := range f.Templates {
		e := &f.Templates[i]
		e.Name = strings.TrimSpace(e.Name)
		e.URL = strings.TrimSpace(e.URL)
		if e.Name == "" || e.URL == "" {
			return nil, fmt.Errorf("entry %d: name and url are required", i+1)
		}
		if e.Stack == "" {
			e.Stack = stackFromName(e.Name)
		}
	}
	return f.Templates, nil
}

// stackFromName turns "Chatbot (LangChain + Streamlit)" into "LangChain, Streamlit".
func stackFromName(name string) string {
	m := stackPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	var tags []string
	for _, part := range strings.Split(m[1], "+") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return strings.Join(tags, ", ")
}
