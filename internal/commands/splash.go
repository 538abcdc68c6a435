package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

// SplashSettings controls the headlines shown by splash.
type SplashSettings struct {
	FetchHeadlines bool
	HeadlineCount  int
	Timeout        time.Duration
}

func (d *Deps) splash(ctx context.Context, _ []string, _ *domain.State) (*domain.State, error) {
	if d.Banner != nil {
		d.Printer.Raw(d.Banner())
	}

	var buf output.LineBuffer
	buf.PushLine(output.Line{
		Text:  fmt.Sprintf("%s is using minimal @ %s", d.username(), d.now().Format(time.TimeOnly)),
		Level: domain.LogLevelInfo,
		Color: output.ColorWhite,
	})

	for _, headline := range d.headlines(ctx) {
		buf.PushListItem(output.Line{Text: headline, Level: domain.LogLevelInfo, Clip: true})
	}

	d.Printer.WriteBuffer(&buf)
	return nil, nil
}

// headlines never fails; a slow or broken source just yields fewer lines.
func (d *Deps) headlines(ctx context.Context) []string {
	if d.News == nil || !d.Splash.FetchHeadlines || d.Splash.HeadlineCount <= 0 {
		return nil
	}
	if d.Splash.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Splash.Timeout)
		defer cancel()
	}

	headlines, err := d.News.Headlines(ctx, d.Splash.HeadlineCount)
	if err != nil {
		d.Printer.Debug(fmt.Sprintf("headlines unavailable: %v", err))
	}
	return headlines
}
