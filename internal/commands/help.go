package commands

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yurixander/minimal/pkg/domain"
)

func (d *Deps) help(_ context.Context, _ []string, _ *domain.State) (*domain.State, error) {
	if d.Catalog == nil {
		return nil, errors.New("no commands registered")
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Command", "Usage", "Description"})
	for _, cmd := range d.Catalog.List() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		t.AppendRow(table.Row{cmd.Name, usage, cmd.Description})
	}
	d.Printer.Raw(t.Render() + "\n")
	return nil, nil
}
