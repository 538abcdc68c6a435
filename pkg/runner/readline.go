package runner

import (
	"errors"
	"fmt"

	"github.com/chzyer/readline"
)

// Completion supplies candidates for tab completion.
type Completion struct {
	// Commands lists every command name.
	Commands []string
	// Executables lists program names completed after exec-style commands.
	Executables func() []string
	// ExecCommands are the commands whose first argument is a program.
	ExecCommands []string
}

// ReadlineReader is a LineReader backed by chzyer/readline, with history
// and completion.
type ReadlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader opens a terminal reader. historyFile may be empty.
func NewReadlineReader(historyFile string, completion Completion) (*ReadlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:       historyFile,
		AutoComplete:      newCompleter(completion),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize line editor: %w", err)
	}
	return &ReadlineReader{rl: rl}, nil
}

func newCompleter(c Completion) *readline.PrefixCompleter {
	isExec := make(map[string]bool, len(c.ExecCommands))
	for _, name := range c.ExecCommands {
		isExec[name] = true
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(c.Commands))
	for _, name := range c.Commands {
		if isExec[name] && c.Executables != nil {
			items = append(items, readline.PcItem(name,
				readline.PcItemDynamic(func(string) []string { return c.Executables() })))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// ReadLine implements LineReader.
func (r *ReadlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return line, err
}

// SetPrompt implements LineReader.
func (r *ReadlineReader) SetPrompt(prompt string) {
	r.rl.SetPrompt(prompt)
}

// Close implements LineReader.
func (r *ReadlineReader) Close() error {
	return r.rl.Close()
}
