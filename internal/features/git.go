package features

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yurixander/minimal/pkg/adapters/process"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/registry"
)

// NameGit is the name of the git feature.
const NameGit = "git"

// Repo is what the prompt shows about a repository.
type Repo struct {
	Name   string
	Branch string
}

// Probe inspects a directory. ok is false outside a repository.
type Probe interface {
	Inspect(ctx context.Context, dir string) (repo Repo, ok bool, err error)
}

// ProcessRunner runs external programs.
type ProcessRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (process.Result, error)
}

// Styler colors prompt text.
type Styler interface {
	Style(s string, c output.Color) string
}

// CLIProbe asks the git binary.
type CLIProbe struct {
	Runner ProcessRunner
}

// Inspect runs `git rev-parse --show-toplevel` and `git branch --show-current`
// in dir. A detached head reports the branch as HEAD.
func (p CLIProbe) Inspect(ctx context.Context, dir string) (Repo, bool, error) {
	res, err := p.Runner.Run(ctx, dir, "git", "rev-parse", "--show-toplevel")
	if errors.Is(err, process.ErrNonZeroExit) {
		return Repo{}, false, nil
	}
	if err != nil {
		return Repo{}, false, err
	}
	top := strings.TrimSpace(res.Stdout)

	res, err = p.Runner.Run(ctx, dir, "git", "branch", "--show-current")
	if err != nil {
		return Repo{}, false, err
	}
	branch := strings.TrimSpace(res.Stdout)
	if branch == "" {
		branch = "HEAD"
	}
	return Repo{Name: filepath.Base(top), Branch: branch}, true, nil
}

// Git shows the current repository and branch in the prompt.
type Git struct {
	Probe  Probe
	Styler Styler
	// LookPath finds the git binary; exec.LookPath when nil.
	LookPath func(file string) (string, error)
}

// Feature returns the registry descriptor.
func (g *Git) Feature() registry.Feature {
	return registry.Feature{
		Name:        NameGit,
		Description: "Git integration, including the branch name in the prompt.",
		Listener:    g.listen,
		Initializer: g.init,
		AwaitInit:   true,
	}
}

func (g *Git) init(_ context.Context, _ *domain.State) (bool, error) {
	lookPath := g.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("git"); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Git) listen(ctx context.Context, event domain.Event, working, _ *domain.State) (*domain.State, error) {
	if event != domain.EventWorkingDirectoryChanged {
		return nil, nil
	}

	repo, ok, err := g.Probe.Inspect(ctx, working.WorkingDirectory())
	if err != nil {
		return nil, err
	}

	segment := ""
	if ok {
		segment = g.style(repo.Name, output.ColorGreen) + "(" + g.style(repo.Branch, output.ColorBlue) + ")"
	}
	if working.PromptSegment(domain.PromptSlotGit) == segment {
		return nil, nil
	}
	return working.WithPromptSegment(domain.PromptSlotGit, segment), nil
}

func (g *Git) style(s string, c output.Color) string {
	if g.Styler == nil {
		return s
	}
	return g.Styler.Style(s, c)
}
