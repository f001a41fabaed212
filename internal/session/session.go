// Package session holds the state of one lab session and the reducer that
// applies commands to it.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sourcebox-llc/template-lab/internal/editor"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

var (
	ErrNoSelection        = errors.New("no template selected")
	ErrServiceUnavailable = errors.New("service is not configured")
)

// Session is the state of one user's lab. Active and Editor are either both
// set or both nil.
type Session struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Active         *template.Template
	Editor         *editor.Buffer
	LastRun        *runner.Result
	EditorSettings editor.Settings
}

func New() *Session {
	return &Session{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		EditorSettings: editor.DefaultSettings(),
	}
}

// HasSelection reports whether a template is active.
func (s *Session) HasSelection() bool {
	return s.Active != nil
}

func (s *Session) selectTemplate(t template.Template) {
	active := t.Clone()
	s.Active = &active
	if s.Editor == nil {
		s.Editor = editor.NewBuffer(active.MainFileContent)
	} else {
		s.Editor.Seed(active)
	}
	s.LastRun = nil
}

func (s *Session) clear() {
	s.Active = nil
	s.Editor = nil
	s.LastRun = nil
}

// Current returns the active template with the editor text as its main file.
func (s *Session) Current() (template.Template, error) {
	if s.Active == nil {
		return template.Template{}, ErrNoSelection
	}
	t := s.Active.Clone()
	t.SetMainFileContent(s.Editor.Text())
	return t, nil
}

// commit writes the editor text back into the active template.
func (s *Session) commit() {
	if s.Active != nil {
		s.Active.SetMainFileContent(s.Editor.Text())
	}
}

// EditorView is the editor state a UI needs to render the widget.
type EditorView struct {
	Text      string          `json:"text"`
	Version   int             `json:"version"`
	WidgetKey string          `json:"widget_key"`
	Settings  editor.Settings `json:"settings"`
}

// View is the JSON form of a session.
type View struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Active    *template.Template `json:"active,omitempty"`
	Editor    *EditorView        `json:"editor,omitempty"`
	LastRun   *runner.Result     `json:"last_run,omitempty"`
	Settings  editor.Settings    `json:"editor_settings"`
}

func (s *Session) View() View {
	v := View{
		ID:        s.ID.String(),
		CreatedAt: s.CreatedAt,
		LastRun:   s.LastRun,
		Settings:  s.EditorSettings,
	}
	if s.Active != nil {
		active := s.Active.Clone()
		v.Active = &active
	}
	if s.Editor != nil {
		v.Editor = &EditorView{
			Text:      s.Editor.Text(),
			Version:   s.Editor.Version(),
			WidgetKey: s.Editor.WidgetKey(),
			Settings:  s.EditorSettings,
		}
	}
	return v
}
