package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/yurixander/minimal/pkg/adapters/process"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

// exec runs a program in the working directory and streams its output as
// list items. Escape sequences on stdout are kept.
func (d *Deps) exec(ctx context.Context, args []string, state *domain.State) (*domain.State, error) {
	var buf output.LineBuffer
	err := d.runInto(ctx, &buf, args, state, true)
	d.Printer.WriteBuffer(&buf)
	return nil, err
}

// eval is exec without color passthrough.
func (d *Deps) eval(ctx context.Context, args []string, state *domain.State) (*domain.State, error) {
	var buf output.LineBuffer
	err := d.runInto(ctx, &buf, args, state, false)
	d.Printer.WriteBuffer(&buf)
	return nil, err
}

func (d *Deps) runInto(ctx context.Context, buf *output.LineBuffer, args []string, state *domain.State, preserve bool) error {
	if len(args) == 0 {
		return nil
	}
	if d.Process == nil {
		return errors.New("process execution is unavailable")
	}

	res, err := d.Process.Run(ctx, state.WorkingDirectory(), d.resolveExecutable(args[0]), args[1:]...)
	if err != nil && !errors.Is(err, process.ErrNonZeroExit) {
		return err
	}

	for _, line := range extractLines(res.Stdout) {
		buf.PushListItem(output.Line{Text: line, Level: domain.LogLevelInfo, PreserveColor: preserve})
	}
	for _, line := range extractLines(res.Stderr) {
		buf.PushListItem(output.Line{Text: line, Level: domain.LogLevelError})
	}
	return err
}

// resolveExecutable maps a bare program name through the executable index. Paths
// and unindexed names are returned unchanged.
func (d *Deps) resolveExecutable(name string) string {
	if d.Executables == nil || strings.ContainsAny(name, `/\`) {
		return name
	}
	if path, ok := d.Executables.Lookup(name); ok {
		return path
	}
	return name
}

// extractLines splits s into lines, dropping blank ones.
func extractLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
