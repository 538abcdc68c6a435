package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/yurixander/minimal/internal/adapters/file"
	"github.com/yurixander/minimal/internal/adapters/redis"
	"github.com/yurixander/minimal/internal/adapters/sqlite"
	"github.com/yurixander/minimal/internal/config"
	"github.com/yurixander/minimal/internal/logging"
	"github.com/yurixander/minimal/pkg/adapters/memory"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/persistence/middleware"
	"github.com/yurixander/minimal/pkg/ports"
)

// Storage backends accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled when one of sigs
// arrives. Unlike signal.NotifyContext it remembers which signal it was.
func NewSignalContext(parent context.Context, sigs ...os.Signal) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, sigs...)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger. Records go through the
// printer, so they follow the session log level. With logFile set they are
// written there instead, at debug level.
func createLogger(printer *output.Printer, logFile string) (*slog.Logger, func() error, error) {
	if logFile == "" {
		return slog.New(output.NewHandler(printer)), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.NewWithWriter(f, slog.LevelDebug), f.Close, nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandStart: func(ctx context.Context, e *domain.CommandTrace) {
			logger.DebugContext(ctx, "Command Start", "command", e.Command, "args", e.Args)
		},
		OnCommandEnd: func(ctx context.Context, e *domain.CommandTrace) {
			if e.Err != nil {
				logger.DebugContext(ctx, "Command End (Error)", "command", e.Command, "duration", e.Duration, "err", e.Err)
			} else {
				logger.DebugContext(ctx, "Command End", "command", e.Command, "duration", e.Duration, "changed", e.Changed)
			}
		},
		OnPass: func(ctx context.Context, e *domain.PassTrace) {
			logger.DebugContext(ctx, "Propagation Pass", "event", e.Event, "iteration", e.Iteration, "pending", e.Pending)
		},
		OnFeatureReturn: func(ctx context.Context, e *domain.FeatureTrace) {
			if e.Err != nil {
				logger.DebugContext(ctx, "Feature Return (Error)", "feature", e.Feature, "event", e.Event, "err", e.Err)
			} else {
				logger.DebugContext(ctx, "Feature Return", "feature", e.Feature, "event", e.Event, "changed", e.Changed)
			}
		},
	}
}

// openStore builds the ports.Store selected by storage.backend.
func openStore(ctx context.Context, cfg config.StorageConfig) (ports.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return file.New(cfg.Path), nil
	case BackendMemory:
		return memory.NewStore(), nil
	case BackendSQLite:
		return sqlite.Open(ctx, filepath.Join(cfg.Path, "minimal.db"))
	case BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// encryptStore wraps store with encryption when key is set.
func encryptStore(store ports.Store, key string) (ports.Store, error) {
	if key == "" {
		return store, nil
	}
	raw, err := middleware.ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid storage.encryption_key: %w", err)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})(store), nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the column count of w, or 0 when unknown.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
