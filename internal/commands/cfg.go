package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yurixander/minimal/internal/config"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

func (d *Deps) cfg(_ context.Context, args []string, _ *domain.State) (*domain.State, error) {
	if d.Config == nil {
		return nil, errors.New("configuration is unavailable")
	}
	if len(args) > 2 {
		return nil, fmt.Errorf("invalid number of arguments: expected 0-2, but got %d", len(args))
	}

	if len(args) == 0 {
		var buf output.LineBuffer
		for _, key := range d.Config.Keys() {
			value, _ := d.Config.Get(key)
			buf.PushListItem(output.Line{
				Text: fmt.Sprintf("%s: %s",
					d.Printer.Style(key, output.ColorWhite),
					d.Printer.Style(listValue(key, value), output.ColorGray)),
				Level:         domain.LogLevelInfo,
				PreserveColor: true,
			})
		}
		d.Printer.WriteBuffer(&buf)
		return nil, nil
	}

	key := args[0]
	value, ok := d.Config.Get(key)
	if !ok {
		return nil, fmt.Errorf("invalid config key: %s", key)
	}

	if len(args) == 1 {
		d.Printer.Info(fmt.Sprint(value))
		return nil, nil
	}

	if err := d.Config.Set(key, config.AutoParse(args[1])); err != nil {
		return nil, err
	}
	d.Printer.Verbose(fmt.Sprintf("%s set to %s", key, args[1]))
	return nil, nil
}

// secretMask replaces credentials in the full listing. Reading a single
// key still prints it.
const secretMask = "********"

func listValue(key string, value any) string {
	text := fmt.Sprint(value)
	if text != "" && isSecretKey(key) {
		return secretMask
	}
	return text
}

func isSecretKey(key string) bool {
	leaf := key[strings.LastIndex(key, ".")+1:]
	return leaf == "password" || leaf == "token" || strings.HasSuffix(leaf, "_key")
}
