// Package fakes provides in-memory stand-ins for the lab services.
package fakes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// ErrNoTemplate is returned by Resolver for unknown URLs.
var ErrNoTemplate = errors.New("no template registered")

// Resolver serves templates registered by URL. ResolveAt records the ref
// and ResolveRaw records the file URL. A non-nil Err fails every call.
type Resolver struct {
	mu        sync.Mutex
	Templates map[string]template.Template
	Err       error
	Refs      []string
	Raw       []string
}

func NewResolver() *Resolver {
	return &Resolver{Templates: map[string]template.Template{}}
}

func (f *Resolver) Add(url string, t template.Template) *Resolver {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Templates[url] = t
	return f
}

func (f *Resolver) lookup(url string, meta template.Metadata) (template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return template.Template{}, f.Err
	}
	t, ok := f.Templates[url]
	if !ok {
		return template.Template{}, fmt.Errorf("%s: %w", url, ErrNoTemplate)
	}
	return t.WithMetadata(meta), nil
}

func (f *Resolver) Resolve(_ context.Context, url string, meta template.Metadata) (template.Template, error) {
	return f.lookup(url, meta)
}

func (f *Resolver) ResolveAt(_ context.Context, url, ref string, meta template.Metadata) (template.Template, error) {
	f.mu.Lock()
	f.Refs = append(f.Refs, ref)
	f.mu.Unlock()
	return f.lookup(url, meta)
}

func (f *Resolver) ResolveRaw(_ context.Context, url string, meta template.Metadata) (template.Template, error) {
	f.mu.Lock()
	f.Raw = append(f.Raw, url)
	f.mu.Unlock()
	return f.lookup(url, meta)
}

// Generator returns a fixed source and upper-cases code on Edit.
type Generator struct {
	Source  template.Source
	Err     error
	Prompts []string
}

func (f *Generator) Generate(_ context.Context, prompt string) (template.Source, error) {
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Source, nil
}

func (f *Generator) Edit(_ context.Context, instruction, code string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.Prompts = append(f.Prompts, instruction)
	return strings.ToUpper(code), nil
}

// Runner records the sources it was asked to run.
type Runner struct {
	Result  runner.Result
	Err     error
	Sources []string
}

func (f *Runner) Run(_ context.Context, source string) (runner.Result, error) {
	f.Sources = append(f.Sources, source)
	return f.Result, f.Err
}

// Publisher records every publish call.
type Publisher struct {
	Err      error
	RepoURL  string
	FileText string
	Message  string
	Calls    int
}

func (f *Publisher) Publish(_ context.Context, repoURL, fileText, message string) error {
	f.Calls++
	f.RepoURL, f.FileText, f.Message = repoURL, fileText, message
	return f.Err
}

// Sharer returns URL and records what it was asked to share.
type Sharer struct {
	URL         string
	Err         error
	Shared      template.Template
	Description string
	Public      bool
	Files       []string
}

func (f *Sharer) Share(_ context.Context, t template.Template, description string, public bool) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.Shared = t.Clone()
	f.Description, f.Public, f.Files = description, public, t.Files()
	return f.URL, nil
}

// Opener records the URLs it was asked to open.
type Opener struct {
	Err    error
	Opened []string
}

func (f *Opener) Open(_ context.Context, url string) error {
	f.Opened = append(f.Opened, url)
	return f.Err
}
