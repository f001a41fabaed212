package lab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sourcebox-llc/template-lab/cmd/utils"
	"github.com/sourcebox-llc/template-lab/internal/browser"
	"github.com/sourcebox-llc/template-lab/internal/exec"
	"github.com/sourcebox-llc/template-lab/internal/publish"
	"github.com/sourcebox-llc/template-lab/internal/runtime"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/settings"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
	"github.com/sourcebox-llc/template-lab/internal/ui"
)

// Menu actions.
const (
	actionCatalog  = "catalog"
	actionResolve  = "resolve"
	actionGenerate = "generate"
	actionShow     = "show"
	actionEdit     = "edit"
	actionRewrite  = "rewrite"
	actionRun      = "run"
	actionArchive  = "archive"
	actionPublish  = "publish"
	actionNewRepo  = "newrepo"
	actionShare    = "share"
	actionClear    = "clear"
	actionQuit     = "quit"
)

// Prompter asks the user for input.
type Prompter interface {
	Select(title string, options []ui.SelectOption[string]) (string, error)
	Input(title, placeholder string) (string, error)
	Text(title, initial string) (string, error)
	Confirm(title string) (bool, error)
	// Details asks for the optional name, description, stack and image of a
	// template resolved outside the catalog.
	Details(stacks []string) (template.Metadata, error)
}

type URLOpener interface {
	Open(ctx context.Context, url string) error
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "lab",
		Short: "Pick, edit, run and ship templates interactively",
		Long: "Starts an interactive session. Pick a catalog template, resolve any GitHub " +
			"repository or generate one, then edit, run, download, publish or share it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runtimeContext.Viper.GetBool(settings.Flags.NonInteractive.Name) {
				return errors.New("the lab is interactive; use resolve, generate, run, archive, publish or share instead")
			}
			lab, catalog, err := utils.NewLab(cmd.Context(), runtimeContext)
			if err != nil {
				return err
			}
			h := NewHandler(runtimeContext.Logger, lab, catalog, huhPrompter{}, browser.NewOpener(exec.NewRealRunner()))
			return h.Execute(cmd.Context())
		},
	}
}

type Handler struct {
	log      *zerolog.Logger
	lab      *session.Lab
	catalog  *templaterepo.Catalog
	prompter Prompter
	opener   URLOpener
	session  *session.Session
}

func NewHandler(log *zerolog.Logger, lab *session.Lab, catalog *templaterepo.Catalog, p Prompter, opener URLOpener) *Handler {
	return &Handler{
		log:      log,
		lab:      lab,
		catalog:  catalog,
		prompter: p,
		opener:   opener,
		session:  session.New(),
	}
}

// Session exposes the state the loop works on.
func (h *Handler) Session() *session.Session {
	return h.session
}

// Execute runs the menu loop until the user quits or aborts.
func (h *Handler) Execute(ctx context.Context) error {
	ui.Title("Template Lab")
	ui.Dim("Session " + h.session.ID.String())
	ui.Line()

	for {
		action, err := h.prompter.Select(h.menuTitle(), h.menu())
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if action == actionQuit {
			return nil
		}

		if err := h.do(ctx, action); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ui.Error(err.Error())
		}
		ui.Line()
	}
}

func (h *Handler) menuTitle() string {
	if !h.session.HasSelection() {
		return "What would you like to start from?"
	}
	return fmt.Sprintf("Working on %s", h.activeName())
}

func (h *Handler) activeName() string {
	t := h.session.Active
	if t == nil {
		return ""
	}
	if t.Name != "" {
		return t.Name
	}
	return t.MainFile
}

func (h *Handler) menu() []ui.SelectOption[string] {
	start := []ui.SelectOption[string]{
		{Label: "Pick a curated template", Value: actionCatalog},
		{Label: "Resolve a GitHub repository or file", Value: actionResolve},
		{Label: "Generate a template with AI", Value: actionGenerate},
	}
	if !h.session.HasSelection() {
		return append(start, ui.SelectOption[string]{Label: "Quit", Value: actionQuit})
	}

	return append([]ui.SelectOption[string]{
		{Label: "Show template", Value: actionShow},
		{Label: "Edit main file", Value: actionEdit},
		{Label: "Edit with AI", Value: actionRewrite},
		{Label: "Run", Value: actionRun},
		{Label: "Download " + template.ArchiveName, Value: actionArchive},
		{Label: "Publish to a repository", Value: actionPublish},
		{Label: "Create a new GitHub repository", Value: actionNewRepo},
		{Label: "Share as Gist", Value: actionShare},
		{Label: "Clear selection", Value: actionClear},
	}, append(start, ui.SelectOption[string]{Label: "Quit", Value: actionQuit})...)
}

func (h *Handler) do(ctx context.Context, action string) error {
	switch action {
	case actionCatalog:
		return h.pickCatalog(ctx)
	case actionResolve:
		return h.resolve(ctx)
	case actionGenerate:
		prompt, err := h.prompter.Input("Describe the template", "a streamlit app that charts a CSV upload")
		if err != nil {
			return err
		}
		return h.dispatch(ctx, "Generating template...", session.Generate{
			Prompt: prompt,
			Meta:   template.Metadata{Details: prompt},
		})
	case actionShow:
		return h.show()
	case actionEdit:
		text, err := h.prompter.Text(h.session.Active.MainFile, h.session.Editor.Text())
		if err != nil {
			return err
		}
		return h.dispatch(ctx, "", session.EditManual{Text: text})
	case actionRewrite:
		instruction, err := h.prompter.Input("How should the code change?", "add a sidebar with a file uploader")
		if err != nil {
			return err
		}
		return h.dispatch(ctx, "Rewriting...", session.EditAI{Instruction: instruction})
	case actionRun:
		return h.dispatch(ctx, "Running...", session.Run{})
	case actionArchive:
		return h.dispatch(ctx, "", session.Archive{})
	case actionPublish:
		repoURL, err := h.prompter.Input("Repository URL", "https://github.com/you/your-repo.git")
		if err != nil {
			return err
		}
		message, err := h.prompter.Input("Commit message", "Update template")
		if err != nil {
			return err
		}
		return h.dispatch(ctx, "Publishing...", session.Publish{RepoURL: repoURL, Message: message})
	case actionNewRepo:
		if err := h.opener.Open(ctx, publish.NewRepoURL); err != nil {
			h.log.Debug().Err(err).Msg("Could not open browser")
			ui.URL(publish.NewRepoURL)
		}
		return nil
	case actionShare:
		public, err := h.prompter.Confirm("Make the Gist public?")
		if err != nil {
			return err
		}
		return h.dispatch(ctx, "Creating Gist...", session.Share{Description: h.activeName(), Public: public})
	case actionClear:
		return h.dispatch(ctx, "", session.Deselect{})
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (h *Handler) pickCatalog(ctx context.Context) error {
	entries := h.catalog.Entries()
	if len(entries) == 0 {
		return errors.New("the catalog is empty")
	}
	options := make([]ui.SelectOption[string], len(entries))
	for i, e := range entries {
		options[i] = ui.SelectOption[string]{Label: e.Name, Value: e.Name}
	}

	name, err := h.prompter.Select("Choose a template", options)
	if err != nil {
		return err
	}
	return h.dispatch(ctx, "Loading "+name+"...", session.SelectCatalogEntry{Name: name})
}

func (h *Handler) resolve(ctx context.Context) error {
	target, err := h.prompter.Input("Repository or file URL", "https://github.com/owner/repo")
	if err != nil {
		return err
	}
	ref := ""
	if !utils.IsRawFileURL(target) {
		if ref, err = h.prompter.Input("Branch, tag or commit (empty for default)", ""); err != nil {
			return err
		}
	}

	meta, err := h.prompter.Details(h.catalogStacks())
	if err != nil {
		return err
	}

	cmd, err := utils.SelectCommand(nil, target, strings.TrimSpace(ref), meta)
	if err != nil {
		return err
	}
	return h.dispatch(ctx, "Resolving "+target+"...", cmd)
}

// catalogStacks lists the distinct stack labels of the catalog entries.
func (h *Handler) catalogStacks() []string {
	var stacks []string
	seen := map[string]bool{}
	for _, e := range h.catalog.Entries() {
		if e.Stack == "" || seen[e.Stack] {
			continue
		}
		seen[e.Stack] = true
		stacks = append(stacks, e.Stack)
	}
	return stacks
}

func (h *Handler) dispatch(ctx context.Context, busy string, cmd session.Command) error {
	var (
		ev  session.Event
		err error
	)
	if busy == "" {
		ev, err = h.lab.Dispatch(ctx, h.session, cmd)
	} else {
		ev, err = ui.WithSpinnerResult(busy, func() (session.Event, error) {
			return h.lab.Dispatch(ctx, h.session, cmd)
		})
	}
	if err != nil {
		return err
	}
	return h.render(ev)
}

func (h *Handler) render(ev session.Event) error {
	switch e := ev.(type) {
	case session.TemplateSelected:
		h.describe(e.Template)
	case session.SelectionCleared:
		ui.Dim("Selection cleared")
	case session.BufferChanged:
		ui.Success(fmt.Sprintf("Editor updated (%s)", h.session.Editor.WidgetKey()))
	case session.RunCompleted:
		renderRun(e.Result.Stdout, e.Result.Stderr)
		if e.Result.Succeeded() {
			ui.Success(fmt.Sprintf("Finished in %s", e.Result.Duration))
		} else {
			ui.Warning(fmt.Sprintf("Exited with code %d", e.Result.ExitCode))
		}
	case session.RunTimedOut:
		renderRun(e.Result.Stdout, e.Result.Stderr)
		ui.Warning(fmt.Sprintf("Timed out after %s", e.Result.Duration))
	case session.Archived:
		return h.saveArchive(e)
	case session.Published:
		ui.Success("Published to " + e.RepoURL)
	case session.Shared:
		ui.Success("Gist created")
		ui.URL(e.URL)
	}
	return nil
}

func (h *Handler) describe(t template.Template) {
	if t.Name != "" {
		ui.Title(t.Name)
	}
	if tags := t.StackTags(); len(tags) > 0 {
		ui.Print(ui.RenderAccent(strings.Join(tags, " · ")))
	}
	if t.Details != "" {
		ui.Dim(t.Details)
	}
	ui.Print(utils.FormatTemplateFiles(t))
}

func (h *Handler) show() error {
	t, err := h.session.Current()
	if err != nil {
		return err
	}
	h.describe(t)
	ui.Box(t.MainFileContent)
	return nil
}

func (h *Handler) saveArchive(a session.Archived) error {
	path, err := h.prompter.Input("Save archive as", a.Name)
	if err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path == "" {
		path = a.Name
	}
	if err := os.WriteFile(path, a.Bytes, 0600); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	ui.Success(fmt.Sprintf("Wrote %s (%s)", path, ui.FormatBytes(int64(len(a.Bytes)))))
	return nil
}

func renderRun(stdout, stderr string) {
	if stdout != "" {
		ui.Box(strings.TrimRight(stdout, "\n"))
	}
	if stderr != "" {
		ui.Print(ui.RenderError(strings.TrimRight(stderr, "\n")))
	}
}

type huhPrompter struct{}

func (huhPrompter) Select(title string, options []ui.SelectOption[string]) (string, error) {
	return ui.Select(title, options)
}

func (huhPrompter) Input(title, placeholder string) (string, error) {
	return ui.Input(title, ui.WithPlaceholder(placeholder))
}

func (huhPrompter) Text(title, initial string) (string, error) {
	return ui.Text(title, initial, ui.WithTextDescription("enter adds a line, ctrl+s saves, esc cancels"))
}

func (huhPrompter) Confirm(title string) (bool, error) {
	return ui.Confirm(title)
}

func (huhPrompter) Details(stacks []string) (template.Metadata, error) {
	var meta template.Metadata
	err := ui.DetailsForm("Template details", "All optional; leave empty to keep what the repository provides.", []ui.DetailField{
		{Title: "Name", Placeholder: "My starter", Value: &meta.Name},
		{Title: "Description", Placeholder: "What the template does", Value: &meta.Details},
		{Title: "Stack", Placeholder: "Streamlit, LangChain", Value: &meta.Stack, Suggestions: stacks},
		{Title: "Image URL", Placeholder: "https://...", Value: &meta.Image, Validate: validateImageURL},
	})
	return meta, err
}

func validateImageURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return nil
	}
	return errors.New("image must be an http(s) URL")
}
