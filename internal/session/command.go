package session

import (
	"github.com/sourcebox-llc/template-lab/internal/editor"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// Command is a user intent applied to a Session by Lab.Dispatch.
type Command interface {
	stage() string
}

type SelectCatalogEntry struct {
	Name string
}

type ResolveRepository struct {
	URL  string
	Ref  string
	Meta template.Metadata
}

type SelectRaw struct {
	URL  string
	Meta template.Metadata
}

type Generate struct {
	Prompt string
	Meta   template.Metadata
}

type Deselect struct{}

type EditManual struct {
	Text string
}

type EditAI struct {
	Instruction string
}

type UpdateEditorSettings struct {
	Settings editor.Settings
}

type Run struct{}

type Archive struct{}

type Publish struct {
	RepoURL string
	Message string
}

type Share struct {
	Description string
	Public      bool
}

func (SelectCatalogEntry) stage() string {
	return "select"
}

func (ResolveRepository) stage() string {
	return "resolve"
}

func (SelectRaw) stage() string {
	return "select"
}

func (Generate) stage() string {
	return "generate"
}

func (Deselect) stage() string {
	return "deselect"
}

func (EditManual) stage() string {
	return "edit"
}

func (EditAI) stage() string {
	return "rewrite"
}

func (UpdateEditorSettings) stage() string {
	return "settings"
}

func (Run) stage() string {
	return "run"
}

func (Archive) stage() string {
	return "archive"
}

func (Publish) stage() string {
	return "publish"
}

func (Share) stage() string {
	return "share"
}

// Event is the observable outcome of a command.
type Event interface {
	isEvent()
}

type TemplateSelected struct {
	Template template.Template
}

type SelectionCleared struct{}

type BufferChanged struct {
	Version int
}

type SettingsChanged struct {
	Settings editor.Settings
}

type RunCompleted struct {
	Result runner.Result
}

type RunTimedOut struct {
	Result runner.Result
}

type Archived struct {
	Name  string
	Bytes []byte
}

type Published struct {
	RepoURL string
}

type Shared struct {
	URL string
}

// Failed reports a command that left the session unchanged.
type Failed struct {
	Stage string
	Err   error
}

func (TemplateSelected) isEvent() {}
func (SelectionCleared) isEvent() {}
func (BufferChanged) isEvent()    {}
func (SettingsChanged) isEvent()  {}
func (RunCompleted) isEvent()     {}
func (RunTimedOut) isEvent()      {}
func (Archived) isEvent()         {}
func (Published) isEvent()        {}
func (Shared) isEvent()           {}
func (Failed) isEvent()           {}
