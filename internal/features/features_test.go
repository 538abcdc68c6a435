package features

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/pkg/adapters/process"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/registry"
)

type stubProbe struct {
	repos map[string]Repo
	err   error
	calls int
}

func (s *stubProbe) Inspect(_ context.Context, dir string) (Repo, bool, error) {
	s.calls++
	if s.err != nil {
		return Repo{}, false, s.err
	}
	r, ok := s.repos[dir]
	return r, ok, nil
}

type bracketStyler struct{}

func (bracketStyler) Style(s string, c output.Color) string {
	return fmt.Sprintf("<%s>%s", c, s)
}

func TestGit_Listener(t *testing.T) {
	probe := &stubProbe{repos: map[string]Repo{"/repo": {Name: "repo", Branch: "main"}}}
	g := &Git{Probe: probe}
	listen := g.Feature().Listener
	ctx := context.Background()

	t.Run("enters a repository", func(t *testing.T) {
		s := domain.NewState("/repo", domain.LogLevelInfo)
		next, err := listen(ctx, domain.EventWorkingDirectoryChanged, s, s)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, []string{"repo(main)"}, next.Prompt())
	})

	t.Run("leaves a repository", func(t *testing.T) {
		s := domain.NewState("/tmp", domain.LogLevelInfo, "repo(main)")
		next, err := listen(ctx, domain.EventWorkingDirectoryChanged, s, s)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Empty(t, next.Prompt())
	})

	t.Run("unchanged segment", func(t *testing.T) {
		s := domain.NewState("/repo", domain.LogLevelInfo, "repo(main)")
		next, err := listen(ctx, domain.EventWorkingDirectoryChanged, s, s)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("ignores other events", func(t *testing.T) {
		before := probe.calls
		s := domain.NewState("/repo", domain.LogLevelInfo)
		next, err := listen(ctx, domain.EventPromptChanged, s, s)
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.Equal(t, before, probe.calls)
	})
}

func TestGit_Styled(t *testing.T) {
	g := &Git{
		Probe:  &stubProbe{repos: map[string]Repo{"/r": {Name: "r", Branch: "HEAD"}}},
		Styler: bracketStyler{},
	}
	s := domain.NewState("/r", domain.LogLevelInfo)

	next, err := g.Feature().Listener(context.Background(), domain.EventWorkingDirectoryChanged, s, s)
	require.NoError(t, err)
	assert.Equal(t, "<green>r(<blue>HEAD)", next.PromptSegment(domain.PromptSlotGit))
}

func TestGit_ProbeError(t *testing.T) {
	g := &Git{Probe: &stubProbe{err: errors.New("broken")}}
	s := domain.NewState("/r", domain.LogLevelInfo)

	_, err := g.Feature().Listener(context.Background(), domain.EventWorkingDirectoryChanged, s, s)
	require.EqualError(t, err, "broken")
}

func TestGit_Initializer(t *testing.T) {
	found := &Git{LookPath: func(string) (string, error) { return "/usr/bin/git", nil }}
	ok, err := found.Feature().Initializer(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	missing := &Git{LookPath: func(string) (string, error) { return "", errors.New("not found") }}
	ok, err = missing.Feature().Initializer(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

type scriptedRunner struct {
	results map[string]process.Result
	errs    map[string]error
}

func (r scriptedRunner) Run(_ context.Context, _ string, name string, args ...string) (process.Result, error) {
	key := name
	for _, a := range args {
		key += " " + a
	}
	return r.results[key], r.errs[key]
}

func TestCLIProbe(t *testing.T) {
	ctx := context.Background()

	inside := CLIProbe{Runner: scriptedRunner{results: map[string]process.Result{
		"git rev-parse --show-toplevel": {Stdout: "/home/ada/minimal\n"},
		"git branch --show-current":     {Stdout: "feature/x\n"},
	}}}
	repo, ok, err := inside.Inspect(ctx, "/home/ada/minimal/pkg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Repo{Name: "minimal", Branch: "feature/x"}, repo)

	detached := CLIProbe{Runner: scriptedRunner{results: map[string]process.Result{
		"git rev-parse --show-toplevel": {Stdout: "/src/app\n"},
	}}}
	repo, ok, err = detached.Inspect(ctx, "/src/app")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "HEAD", repo.Branch)

	outside := CLIProbe{Runner: scriptedRunner{errs: map[string]error{
		"git rev-parse --show-toplevel": fmt.Errorf("git: %w (128)", process.ErrNonZeroExit),
	}}}
	_, ok, err = outside.Inspect(ctx, "/tmp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func writeExecutable(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
}

func TestPassthrough_Index(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	first, second := t.TempDir(), t.TempDir()
	writeExecutable(t, first, "tool")
	writeExecutable(t, second, "tool")
	writeExecutable(t, second, "other")
	require.NoError(t, os.WriteFile(filepath.Join(second, "readme"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(second, "sub"), 0o755))

	p := &Passthrough{Getenv: func(string) string {
		return first + string(os.PathListSeparator) + "/does/not/exist" + string(os.PathListSeparator) + second
	}}
	assert.Empty(t, p.Names())
	_, found := p.Lookup("tool")
	assert.False(t, found, "nothing resolves before the index is built")

	ok, err := p.Feature().Initializer(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"other", "tool"}, p.Names())
	path, found := p.Lookup("tool")
	require.True(t, found)
	assert.Equal(t, filepath.Join(first, "tool"), path)
	_, found = p.Lookup("readme")
	assert.False(t, found)
}

func TestPassthrough_BackgroundInit(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "tool")
	p := &Passthrough{Getenv: func(string) string { return dir }}

	features := registry.InitializeFeatures(context.Background(), domain.NewState("/", domain.LogLevelInfo), []registry.Feature{p.Feature()})
	require.NoError(t, features.Wait(context.Background()))

	status, ok := features.Status(NamePassthrough)
	require.True(t, ok)
	assert.Equal(t, registry.StatusActive, status)
	assert.Equal(t, []string{"tool"}, p.Names())
}

func TestPassthrough_EmptyPath(t *testing.T) {
	p := &Passthrough{Getenv: func(string) string { return "" }}
	ok, err := p.Feature().Initializer(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, p.Names())
}

func TestPassthrough_ListenerIsNoop(t *testing.T) {
	p := &Passthrough{}
	s := domain.NewState("/", domain.LogLevelInfo)
	next, err := p.Feature().Listener(context.Background(), domain.EventWorkingDirectoryChanged, s, s)
	require.NoError(t, err)
	assert.Nil(t, next)
}
