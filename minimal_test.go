package minimal_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal"
	"github.com/yurixander/minimal/internal/commands"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/registry"
)

func cd(_ context.Context, args []string, state *domain.State) (*domain.State, error) {
	if len(args) != 1 {
		return nil, errors.New("usage: cd <path>")
	}
	return state.WithWorkingDirectory(args[0]), nil
}

// gitFeature reports every directory under /repo as a repository on main.
func gitFeature() registry.Feature {
	return registry.Feature{
		Name: "git",
		Listener: func(_ context.Context, event domain.Event, working, _ *domain.State) (*domain.State, error) {
			if event != domain.EventWorkingDirectoryChanged {
				return nil, nil
			}
			segment := ""
			if strings.HasPrefix(working.WorkingDirectory(), "/repo") {
				segment = "repo(main)"
			}
			return working.WithPromptSegment(domain.PromptSlotGit, segment), nil
		},
	}
}

func newShell(opts ...minimal.Option) *minimal.Shell {
	base := []minimal.Option{
		minimal.WithCommands(registry.Command{Name: "cd", Handler: cd}),
		minimal.WithFeatures(gitFeature()),
	}
	return minimal.New(append(base, opts...)...)
}

func TestShell_StartPrimesPrompt(t *testing.T) {
	shell := newShell()

	primed := shell.Start(context.Background(), domain.NewState("/repo", domain.LogLevelInfo))

	assert.Equal(t, []string{"repo(main)"}, primed.State.Prompt())
	assert.Equal(t, "▲ repo(main) ", shell.Prompt(primed.State))
	require.NoError(t, shell.Wait(context.Background()))
}

func TestShell_ExecuteRunsTheFeatureLoop(t *testing.T) {
	shell := newShell()
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/tmp", domain.LogLevelInfo)).State
	assert.Empty(t, state.Prompt())

	out, err := shell.Execute(ctx, state, "  cd   /repo/src ")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "/repo/src", out.State.WorkingDirectory())
	assert.Equal(t, []string{"repo(main)"}, out.State.Prompt())
	assert.Equal(t, 2, out.Iterations)
	assert.Equal(t, []domain.Event{domain.EventWorkingDirectoryChanged, domain.EventPromptChanged}, out.Events)
}

func TestShell_LogLevelChangeIsCommitted(t *testing.T) {
	calls := 0
	watcher := registry.Feature{
		Name: "watcher",
		Listener: func(context.Context, domain.Event, *domain.State, *domain.State) (*domain.State, error) {
			calls++
			return nil, nil
		},
	}
	shell := minimal.New(
		minimal.WithCommands(commands.Builtins(&commands.Deps{Printer: output.NewPrinter(io.Discard)})...),
		minimal.WithFeatures(watcher),
	)
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/", domain.LogLevelInfo)).State
	calls = 0

	out, err := shell.Execute(ctx, state, "log debug")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, domain.LogLevelDebug, out.State.LogLevel())
	assert.Empty(t, out.Events)
	assert.Zero(t, out.Iterations)
	assert.Zero(t, calls, "log level has no delta point")
	assert.Equal(t, domain.LogLevelInfo, state.LogLevel())
}

func TestShell_UnknownCommand(t *testing.T) {
	shell := newShell()
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/", domain.LogLevelInfo)).State

	out, err := shell.Execute(ctx, state, "frobnicate now")
	require.ErrorIs(t, err, domain.ErrUnknownCommand)
	assert.EqualError(t, err, "unknown command: frobnicate")
	assert.Same(t, state, out.State)
}

func TestShell_EmptyLine(t *testing.T) {
	shell := newShell()
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/", domain.LogLevelInfo)).State

	out, err := shell.Execute(ctx, state, "   ")
	require.NoError(t, err)
	assert.Same(t, state, out.State)
	assert.False(t, out.Changed)
}

func TestShell_CommandError(t *testing.T) {
	shell := newShell()
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/", domain.LogLevelInfo)).State

	out, err := shell.Execute(ctx, state, "cd")
	var cmdErr *domain.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "cd", cmdErr.Command)
	assert.Same(t, state, out.State)
}

func TestShell_ExecuteBeforeStart(t *testing.T) {
	shell := newShell()
	_, err := shell.Execute(context.Background(), domain.NewState("/", domain.LogLevelInfo), "cd /x")
	assert.ErrorIs(t, err, minimal.ErrNotStarted)
	assert.ErrorIs(t, shell.Wait(context.Background()), minimal.ErrNotStarted)
}

func TestShell_HooksAndCap(t *testing.T) {
	var capped int
	pingPong := registry.Feature{
		Name: "toggle",
		Listener: func(_ context.Context, _ domain.Event, working, _ *domain.State) (*domain.State, error) {
			if working.PromptSegment(1) == "a" {
				return working.WithPromptSegment(1, "b"), nil
			}
			return working.WithPromptSegment(1, "a"), nil
		},
	}
	shell := minimal.New(
		minimal.WithCommands(registry.Command{Name: "cd", Handler: cd}),
		minimal.WithFeatures(pingPong),
		minimal.WithMaxIterations(3),
		minimal.WithLifecycleHooks(domain.LifecycleHooks{
			OnCapExceeded: func(context.Context, *domain.PassTrace) { capped++ },
		}),
	)
	ctx := context.Background()
	state := shell.Start(ctx, domain.NewState("/", domain.LogLevelInfo)).State
	capped = 0

	out, err := shell.Execute(ctx, state, "cd /x")
	require.NoError(t, err)
	assert.True(t, out.CapExceeded)
	assert.Equal(t, 3, out.Iterations)
	assert.Equal(t, 1, capped)
}

func TestShell_RootPrompt(t *testing.T) {
	shell := newShell(minimal.WithRootPrompt("$"))
	assert.Equal(t, "$ ", shell.Prompt(domain.NewState("/", domain.LogLevelInfo)))
}

func TestShell_Introspection(t *testing.T) {
	shell := newShell()
	assert.Nil(t, shell.Features())
	assert.Equal(t, []string{"cd"}, shell.Commands().Names())

	shell.Start(context.Background(), domain.NewState("/", domain.LogLevelInfo))
	status, ok := shell.Features().Status("git")
	require.True(t, ok)
	assert.Equal(t, registry.StatusActive, status)
}
