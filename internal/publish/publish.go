// Package publish pushes template code to an existing git repository using
// the git command line.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/exec"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// NewRepoURL is where users create the repository they publish to.
const NewRepoURL = constants.GitHubNewRepoURL

type Stage string

const (
	StageClone  Stage = "clone"
	StageWrite  Stage = "write"
	StageAdd    Stage = "add"
	StageCommit Stage = "commit"
	StagePush   Stage = "push"
)

// PublishError reports the git step that failed.
type PublishError struct {
	Stage   Stage
	RepoURL string
	Cause   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed at %s: %v", e.RepoURL, e.Stage, e.Cause)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

type Publisher struct {
	log  *zerolog.Logger
	cmd  exec.CommandRunner
	file string
}

type Option func(*Publisher)

func WithCommandRunner(cmd exec.CommandRunner) Option {
	return func(p *Publisher) {
		p.cmd = cmd
	}
}

// WithFile sets the repository path the template code is written to.
func WithFile(file string) Option {
	return func(p *Publisher) {
		if file != "" {
			p.file = file
		}
	}
}

func New(log *zerolog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		log:  log,
		cmd:  exec.NewRealRunner(),
		file: constants.DefaultPublishFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) File() string {
	return p.file
}

// Publish clones repoURL into a temporary directory, replaces the template
// file with fileText, commits with message and pushes. The temporary
// directory is removed on every path.
func (p *Publisher) Publish(ctx context.Context, repoURL, fileText, message string) error {
	if strings.TrimSpace(message) == "" {
		message = constants.DefaultCommitMessage
	}

	relPath, err := template.SafePath(p.file)
	if err != nil {
		return &PublishError{Stage: StageWrite, RepoURL: repoURL, Cause: err}
	}

	tmpDir, err := os.MkdirTemp("", "tlab-publish-*")
	if err != nil {
		return &PublishError{Stage: StageClone, RepoURL: repoURL, Cause: fmt.Errorf("failed to create temp dir: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.log.Warn().Err(err).Str("path", tmpDir).Msg("Failed to remove publish directory")
		}
	}()

	repoDir := filepath.Join(tmpDir, "repo")

	p.log.Debug().Str("repo", repoURL).Msg("Cloning repository")
	if err := p.git(ctx, StageClone, repoURL, tmpDir, "clone", "--depth", "1", repoURL, repoDir); err != nil {
		return err
	}

	target := filepath.Join(repoDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &PublishError{Stage: StageWrite, RepoURL: repoURL, Cause: err}
	}
	if err := os.WriteFile(target, []byte(fileText), 0o644); err != nil {
		return &PublishError{Stage: StageWrite, RepoURL: repoURL, Cause: err}
	}

	if err := p.git(ctx, StageAdd, repoURL, repoDir, "add", "--", relPath); err != nil {
		return err
	}
	if err := p.git(ctx, StageCommit, repoURL, repoDir, "commit", "-m", message); err != nil {
		return err
	}

	p.log.Debug().Str("repo", repoURL).Msg("Pushing commit")
	if err := p.git(ctx, StagePush, repoURL, repoDir, "push", "origin", "HEAD"); err != nil {
		return err
	}

	p.log.Info().Str("repo", repoURL).Msgf("Published %s", relPath)
	return nil
}

func (p *Publisher) git(ctx context.Context, stage Stage, repoURL, dir string, args ...string) error {
	res, err := p.cmd.Run(ctx, "git", args, exec.RunOpts{
		Dir: dir,
		// Never block on a credential prompt.
		Env: map[string]string{"GIT_TERMINAL_PROMPT": "0"},
	})
	if err != nil {
		return &PublishError{Stage: stage, RepoURL: repoURL, Cause: fmt.Errorf("git %s: %w", args[0], err)}
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(res.Stdout)
		}
		return &PublishError{
			Stage:   stage,
			RepoURL: repoURL,
			Cause:   fmt.Errorf("git %s exited with status %d: %s", args[0], res.ExitCode, detail),
		}
	}
	return nil
}
