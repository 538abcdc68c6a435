package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

// ErrNotDirectory is returned by cd when the target is not a directory.
var ErrNotDirectory = errors.New("not a directory")

func (d *Deps) list(_ context.Context, _ []string, state *domain.State) (*domain.State, error) {
	entries, err := os.ReadDir(state.WorkingDirectory())
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", state.WorkingDirectory(), err)
	}

	var folders, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	var buf output.LineBuffer
	for _, name := range folders {
		buf.PushListItem(output.Line{Text: name, Level: domain.LogLevelInfo, Color: output.ColorCyan})
	}
	for _, name := range files {
		buf.PushListItem(output.Line{Text: name, Level: domain.LogLevelInfo, Color: output.ColorWhite})
	}
	if buf.Len() == 0 {
		buf.Push("Directory is empty", domain.LogLevelVerbose)
	}
	d.Printer.WriteBuffer(&buf)
	return nil, nil
}

func (d *Deps) cd(_ context.Context, args []string, state *domain.State) (*domain.State, error) {
	target, err := d.resolve(state.WorkingDirectory(), args)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s does not exist", target)
		}
		return nil, fmt.Errorf("cannot access %s: %w", target, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", target, ErrNotDirectory)
	}

	if target == state.WorkingDirectory() {
		return nil, nil
	}
	return state.WithWorkingDirectory(target), nil
}

// resolve joins args onto base. Absolute paths replace base and a leading
// "~" expands to the home directory. No args means home.
func (d *Deps) resolve(base string, args []string) (string, error) {
	if len(args) == 0 {
		return d.homeDir()
	}
	joined := filepath.Join(args...)
	if joined == "~" || strings.HasPrefix(joined, "~"+string(filepath.Separator)) {
		home, err := d.homeDir()
		if err != nil {
			return "", err
		}
		joined = filepath.Join(home, strings.TrimPrefix(joined, "~"))
	}
	if filepath.IsAbs(joined) {
		return filepath.Clean(joined), nil
	}
	return filepath.Join(base, joined), nil
}
