package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

type Resolver interface {
	Resolve(ctx context.Context, repoURL string, meta template.Metadata) (template.Template, error)
	ResolveAt(ctx context.Context, repoURL, ref string, meta template.Metadata) (template.Template, error)
	ResolveRaw(ctx context.Context, fileURL string, meta template.Metadata) (template.Template, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (template.Source, error)
	Edit(ctx context.Context, instruction, code string) (string, error)
}

type Runner interface {
	Run(ctx context.Context, source string) (runner.Result, error)
}

type Publisher interface {
	Publish(ctx context.Context, repoURL, fileText, message string) error
}

type Sharer interface {
	Share(ctx context.Context, t template.Template, description string, public bool) (string, error)
}

type Catalog interface {
	Lookup(name string) (templaterepo.Entry, error)
}

// Services are the collaborators a Lab calls. A nil service makes the
// commands that need it fail.
type Services struct {
	Resolver  Resolver
	Generator Generator
	Runner    Runner
	Publisher Publisher
	Sharer    Sharer
	Catalog   Catalog
}

// Lab applies commands to sessions. It holds no session state itself.
type Lab struct {
	log       *zerolog.Logger
	svc       Services
	validator *validation.Validator
}

func NewLab(log *zerolog.Logger, svc Services, v *validation.Validator) *Lab {
	return &Lab{log: log, svc: svc, validator: v}
}

// Dispatch applies cmd to s. On error s is unchanged and the event is a
// Failed carrying the same error.
func (l *Lab) Dispatch(ctx context.Context, s *Session, cmd Command) (Event, error) {
	ev, err := l.apply(ctx, s, cmd)
	if err != nil {
		l.log.Debug().Str("session", s.ID.String()).Str("stage", cmd.stage()).Err(err).Msg("Command failed")
		return Failed{Stage: cmd.stage(), Err: err}, err
	}
	return ev, nil
}

func (l *Lab) apply(ctx context.Context, s *Session, cmd Command) (Event, error) {
	switch c := cmd.(type) {
	case SelectCatalogEntry:
		return l.selectCatalogEntry(ctx, s, c)
	case ResolveRepository:
		if l.svc.Resolver == nil {
			return nil, errUnavailable("resolver")
		}
		t, err := l.svc.Resolver.ResolveAt(ctx, c.URL, c.Ref, c.Meta)
		if err != nil {
			return nil, err
		}
		return selected(s, t), nil
	case SelectRaw:
		if l.svc.Resolver == nil {
			return nil, errUnavailable("resolver")
		}
		t, err := l.svc.Resolver.ResolveRaw(ctx, c.URL, c.Meta)
		if err != nil {
			return nil, err
		}
		return selected(s, t), nil
	case Generate:
		return l.generate(ctx, s, c)
	case Deselect:
		s.clear()
		return SelectionCleared{}, nil
	case EditManual:
		if !s.HasSelection() {
			return nil, ErrNoSelection
		}
		s.Editor.Replace(c.Text)
		return BufferChanged{Version: s.Editor.Version()}, nil
	case EditAI:
		if !s.HasSelection() {
			return nil, ErrNoSelection
		}
		if l.svc.Generator == nil {
			return nil, errUnavailable("generator")
		}
		if err := s.Editor.Rewrite(ctx, l.svc.Generator, c.Instruction); err != nil {
			return nil, err
		}
		return BufferChanged{Version: s.Editor.Version()}, nil
	case UpdateEditorSettings:
		if l.validator != nil {
			if err := c.Settings.Validate(l.validator); err != nil {
				return nil, err
			}
		}
		s.EditorSettings = c.Settings
		return SettingsChanged{Settings: c.Settings}, nil
	case Run:
		return l.run(ctx, s)
	case Archive:
		t, err := s.Current()
		if err != nil {
			return nil, err
		}
		data, err := template.Archive(t)
		if err != nil {
			return nil, err
		}
		s.commit()
		return Archived{Name: template.ArchiveName, Bytes: data}, nil
	case Publish:
		return l.publish(ctx, s, c)
	case Share:
		return l.share(ctx, s, c)
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (l *Lab) selectCatalogEntry(ctx context.Context, s *Session, c SelectCatalogEntry) (Event, error) {
	if l.svc.Catalog == nil {
		return nil, errUnavailable("catalog")
	}
	if l.svc.Resolver == nil {
		return nil, errUnavailable("resolver")
	}
	entry, err := l.svc.Catalog.Lookup(c.Name)
	if err != nil {
		return nil, err
	}

	var t template.Template
	if entry.IsRepository() {
		t, err = l.svc.Resolver.Resolve(ctx, entry.URL, entry.Metadata())
	} else {
		t, err = l.svc.Resolver.ResolveRaw(ctx, entry.URL, entry.Metadata())
	}
	if err != nil {
		return nil, err
	}
	return selected(s, t), nil
}

func (l *Lab) generate(ctx context.Context, s *Session, c Generate) (Event, error) {
	if strings.TrimSpace(c.Prompt) == "" {
		return nil, validation.NewValidationError("prompt", "prompt must not be empty")
	}
	if l.svc.Generator == nil {
		return nil, errUnavailable("generator")
	}
	src, err := l.svc.Generator.Generate(ctx, c.Prompt)
	if err != nil {
		return nil, err
	}
	t, err := template.Normalize(src, c.Meta)
	if err != nil {
		return nil, err
	}
	return selected(s, t), nil
}

func (l *Lab) run(ctx context.Context, s *Session) (Event, error) {
	if !s.HasSelection() {
		return nil, ErrNoSelection
	}
	if l.svc.Runner == nil {
		return nil, errUnavailable("runner")
	}

	res, err := l.svc.Runner.Run(ctx, s.Editor.Text())
	if err != nil {
		if errors.Is(err, runner.ErrTimeout) {
			res.TimedOut = true
			s.LastRun = &res
			return RunTimedOut{Result: res}, nil
		}
		return nil, err
	}

	s.LastRun = &res
	return RunCompleted{Result: res}, nil
}

func (l *Lab) publish(ctx context.Context, s *Session, c Publish) (Event, error) {
	if !s.HasSelection() {
		return nil, ErrNoSelection
	}
	if l.validator != nil {
		if err := l.validator.Var(c.RepoURL, "required,repo_url"); err != nil {
			return nil, err
		}
	}
	if l.svc.Publisher == nil {
		return nil, errUnavailable("publisher")
	}

	t, err := s.Current()
	if err != nil {
		return nil, err
	}
	if err := l.svc.Publisher.Publish(ctx, c.RepoURL, t.MainFileContent, c.Message); err != nil {
		return nil, err
	}
	s.commit()
	return Published{RepoURL: c.RepoURL}, nil
}

func (l *Lab) share(ctx context.Context, s *Session, c Share) (Event, error) {
	if !s.HasSelection() {
		return nil, ErrNoSelection
	}
	if l.svc.Sharer == nil {
		return nil, errUnavailable("sharer")
	}

	t, err := s.Current()
	if err != nil {
		return nil, err
	}
	url, err := l.svc.Sharer.Share(ctx, t, c.Description, c.Public)
	if err != nil {
		return nil, err
	}
	s.commit()
	return Shared{URL: url}, nil
}

func selected(s *Session, t template.Template) Event {
	s.selectTemplate(t)
	return TemplateSelected{Template: s.Active.Clone()}
}

func errUnavailable(service string) error {
	return fmt.Errorf("%w: %s", ErrServiceUnavailable, service)
}
