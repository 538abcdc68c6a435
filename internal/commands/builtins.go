// Package commands holds the built-in shell commands.
package commands

import (
	"context"
	"os"
	"os/user"
	"time"

	"github.com/yurixander/minimal/internal/presentation/tui"
	"github.com/yurixander/minimal/pkg/adapters/process"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/ports"
	"github.com/yurixander/minimal/pkg/registry"
	"github.com/yurixander/minimal/pkg/storage"
)

// Built-in command names.
const (
	NameList   = "l"
	NameCd     = "cd"
	NameExec   = "x"
	NameEval   = "e"
	NameSplash = "splash"
	NameConfig = "cfg"
	NameGPT    = "gpt"
	NameLog    = "log"
	NameHelp   = "help"
)

// ProcessRunner runs external programs.
type ProcessRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (process.Result, error)
}

// ConfigStore is the configuration surface the cfg command edits.
type ConfigStore interface {
	Keys() []string
	Get(key string) (any, bool)
	Set(key string, value any) error
}

// ExecutableIndex resolves bare program names for x and e.
type ExecutableIndex interface {
	Lookup(name string) (string, bool)
}

// Catalog lists registered commands for help.
type Catalog interface {
	List() []registry.Command
}

// Deps carries the collaborators commands need. Nil fields disable the
// commands that depend on them.
type Deps struct {
	Printer *output.Printer
	Config  ConfigStore
	Store   ports.Store
	// Locks guards read-modify-write cycles on Store; may be nil.
	Locks   *storage.Locks
	Process ProcessRunner
	// Executables, when set, resolves bare names before PATH lookup.
	Executables ExecutableIndex
	Chat        ChatClient
	News        HeadlineSource
	Render      tui.Renderer
	// Catalog is read lazily, so it can be set after the registry is built.
	Catalog Catalog

	GPT    GPTSettings
	Splash SplashSettings

	Now      func() time.Time
	Username func() string
	Banner   func() string
	HomeDir  func() (string, error)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) username() string {
	if d.Username != nil {
		return d.Username()
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "someone"
}

func (d *Deps) homeDir() (string, error) {
	if d.HomeDir != nil {
		return d.HomeDir()
	}
	return os.UserHomeDir()
}

// Builtins returns every built-in command bound to d.
func Builtins(d *Deps) []registry.Command {
	return []registry.Command{
		{Name: NameList, Description: "List the contents of the current directory.", Handler: d.list},
		{Name: NameCd, Usage: "cd [path]", Description: "Change the current directory.", Handler: d.cd},
		{Name: NameExec, Usage: "x <program> [args...]", Description: "Execute an external command.", Handler: d.exec, Privileged: true},
		{Name: NameEval, Usage: "e <program> [args...]", Description: "Execute an external command and list its output.", Handler: d.eval, Privileged: true},
		{Name: NameSplash, Description: "Show the splash/welcome screen with quick glance information.", Handler: d.splash},
		{Name: NameConfig, Usage: "cfg [key [value]]", Description: "Configure certain aspects of the CLI, including options, paths, and more.", Handler: d.cfg, Privileged: true},
		{Name: NameGPT, Usage: "gpt [--reset] <prompt...>", Description: "Chat with an AI model; history persists between sessions.", Handler: d.gpt},
		{Name: NameLog, Usage: "log [level]", Description: "Show or change the session log level.", Handler: d.log},
		{Name: NameHelp, Description: "List the available commands.", Handler: d.help},
	}
}
