// Package browser opens URLs in the user's default browser.
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/sourcebox-llc/template-lab/internal/exec"
)

// Command returns the program and arguments that open url on goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

type Opener struct {
	cmd  exec.CommandRunner
	goos string
}

func NewOpener(cmd exec.CommandRunner) *Opener {
	return &Opener{cmd: cmd, goos: runtime.GOOS}
}

// Open launches the default browser on url.
func (o *Opener) Open(ctx context.Context, url string) error {
	name, args := Command(o.goos, url)
	res, err := o.cmd.Run(ctx, name, args, exec.RunOpts{})
	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s exited with status %d: %s", name, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
