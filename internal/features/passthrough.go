package features

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/registry"
)

// NamePassthrough is the name of the passthrough feature.
const NamePassthrough = "passthrough"

// PathWarningThreshold is how many executables PATH may hold before the
// index build warns about startup cost.
const PathWarningThreshold = 5000

// Passthrough indexes the executables reachable through PATH so they can be
// completed and resolved by name.
type Passthrough struct {
	Logger *slog.Logger
	// Getenv reads PATH; os.Getenv when nil.
	Getenv    func(key string) string
	Threshold int

	mu    sync.RWMutex
	index map[string]string
}

// Feature returns the registry descriptor. The index is built in the
// background.
func (p *Passthrough) Feature() registry.Feature {
	return registry.Feature{
		Name:        NamePassthrough,
		Description: "Index the executables in PATH for completion.",
		Listener:    p.listen,
		Initializer: p.init,
	}
}

func (p *Passthrough) listen(context.Context, domain.Event, *domain.State, *domain.State) (*domain.State, error) {
	return nil, nil
}

func (p *Passthrough) init(ctx context.Context, _ *domain.State) (bool, error) {
	index := p.build(ctx)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	p.index = index
	p.mu.Unlock()
	return true, nil
}

func (p *Passthrough) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func (p *Passthrough) build(ctx context.Context) map[string]string {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = PathWarningThreshold
	}

	index := make(map[string]string)
	pathVar := getenv("PATH")
	if pathVar == "" {
		p.logger().Warn("no PATH environment variable defined; passthrough is limited to the working directory")
		return index
	}

	warned := false
	for _, dir := range filepath.SplitList(pathVar) {
		if ctx.Err() != nil {
			return index
		}
		// PATH commonly lists directories that are missing or unreadable.
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !isExecutable(entry) {
				continue
			}
			name := entry.Name()
			if first, dup := index[name]; dup {
				p.logger().Debug("duplicate executable in PATH, keeping the first",
					"name", name, "kept", first, "skipped", filepath.Join(dir, name))
				continue
			}
			index[name] = filepath.Join(dir, name)
			if !warned && len(index) >= threshold {
				p.logger().Warn("there are many files in the PATH; this may slow down startup", "count", len(index))
				warned = true
			}
		}
	}
	return index
}

func isExecutable(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	info, err := entry.Info()
	if err != nil {
		return false
	}
	// Symlinks such as python -> python3 are accepted without following them.
	if info.Mode()&fs.ModeSymlink != 0 {
		return true
	}
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Ext(entry.Name()), ".exe")
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// Lookup returns the full path of an indexed executable. Names shadowed
// by an earlier PATH entry resolve to that earlier entry.
func (p *Passthrough) Lookup(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	path, ok := p.index[name]
	return path, ok
}

// Names returns every indexed executable name, sorted. Empty until the
// index is built.
func (p *Passthrough) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.index))
	for name := range p.index {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
