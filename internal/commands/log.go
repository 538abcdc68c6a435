package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
)

// log prints the current level, or switches the session to a new one.
func (d *Deps) log(_ context.Context, args []string, state *domain.State) (*domain.State, error) {
	if len(args) == 0 {
		names := make([]string, 0, len(domain.LogLevels()))
		for _, l := range domain.LogLevels() {
			names = append(names, l.String())
		}
		d.Printer.Info(fmt.Sprintf("log level is %s (%s)", state.LogLevel(), strings.Join(names, ", ")))
		return nil, nil
	}

	level, err := domain.ParseLogLevel(args[0])
	if err != nil {
		return nil, err
	}
	if level == state.LogLevel() {
		return nil, nil
	}
	return state.WithLogLevel(level), nil
}
