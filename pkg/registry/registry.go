package registry

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/yurixander/minimal/pkg/domain"
)

// Handler implements a command. It receives the canonical state and returns
// the next one, or nil when the command changed nothing.
type Handler func(ctx context.Context, args []string, state *domain.State) (*domain.State, error)

// Command describes a registered command.
type Command struct {
	// Name is the token users type. When empty it is derived from Handler.
	Name        string
	Description string
	Usage       string
	Handler     Handler
	// Privileged marks commands that touch the system outside the shell
	// (process execution, config writes).
	Privileged bool
}

// Commands is the read-only command table built at startup.
type Commands struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewCommands builds the table from defs. A duplicate name is logged at
// error level and the later definition replaces the earlier one.
func NewCommands(logger *slog.Logger, defs ...Command) *Commands {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Commands{commands: make(map[string]Command, len(defs))}
	for _, def := range defs {
		if def.Handler == nil {
			logger.Error("command has no handler", "name", def.Name)
			continue
		}
		if def.Name == "" {
			def.Name = NameOf(def.Handler)
		}
		if def.Name == "" {
			logger.Error("command name could not be resolved")
			continue
		}
		if prev, exists := c.commands[def.Name]; exists {
			logger.Error("duplicate command name, discarding earlier definition",
				"name", def.Name, "discarded", prev.Description)
		}
		c.commands[def.Name] = def
	}
	return c
}

// Lookup returns the command registered under name.
func (c *Commands) Lookup(name string) (Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmd, ok := c.commands[name]
	return cmd, ok
}

// List returns every command sorted by name.
func (c *Commands) List() []Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns every command name, sorted.
func (c *Commands) Names() []string {
	list := c.List()
	names := make([]string, len(list))
	for i, cmd := range list {
		names[i] = cmd.Name
	}
	return names
}

// Len reports how many commands are registered.
func (c *Commands) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.commands)
}

// NameOf derives a canonical name from a function value: the unqualified
// function or method name with closure and method-value suffixes removed.
func NameOf(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	full := f.Name()
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	parts := strings.Split(full, ".")
	if len(parts) < 2 {
		return ""
	}
	name := parts[len(parts)-1]
	name = strings.TrimSuffix(name, "-fm")
	if strings.HasPrefix(name, "func") && len(parts) > 2 {
		// anonymous closure: fall back to the enclosing function
		name = parts[len(parts)-2]
	}
	return strings.Trim(name, "(*)")
}
