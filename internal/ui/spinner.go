package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorIndigo500))

// Spinner shows progress for slow calls such as repository resolution, model
// completions and script runs. Start and Stop are reference counted so nested
// operations share one spinner.
type Spinner struct {
	mu      sync.Mutex
	count   int
	out     io.Writer
	program *tea.Program
	isTTY   bool
	quitCh  chan struct{}
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

type msgUpdate string
type msgQuit struct{}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = spinnerStyle
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case msgUpdate:
		m.message = string(msg)
		return m, nil
	case msgQuit:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), DimStyle.Render(m.message))
}

// NewSpinner writes to stderr. Without a terminal it prints each message
// once instead of animating.
func NewSpinner() *Spinner {
	return &Spinner{
		out:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.program != nil {
		s.program.Send(msgUpdate(message))
		return
	}
	if !s.isTTY {
		fmt.Fprintln(s.out, DimStyle.Render(message))
		return
	}

	s.quitCh = make(chan struct{})
	s.program = tea.NewProgram(newSpinnerModel(message), tea.WithOutput(s.out), tea.WithInput(nil))
	go func(p *tea.Program, done chan struct{}) {
		_, _ = p.Run()
		close(done)
	}(s.program, s.quitCh)
}

func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		s.program.Send(msgUpdate(message))
	}
}

// Stop releases one Start. The animation ends when the count reaches zero.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.count > 0 {
		s.count--
	}
	if s.count > 0 || s.program == nil {
		s.mu.Unlock()
		return
	}

	p, done := s.program, s.quitCh
	s.program = nil
	s.mu.Unlock()

	p.Send(msgQuit{})
	<-done
}

// WithSpinner runs fn while a spinner shows message.
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner()
	s.Start(message)
	defer s.Stop()
	return fn()
}

func WithSpinnerResult[T any](message string, fn func() (T, error)) (T, error) {
	s := NewSpinner()
	s.Start(message)
	defer s.Stop()
	return fn()
}
