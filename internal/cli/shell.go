package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/yurixander/minimal"
	"github.com/yurixander/minimal/internal/adapters/redis"
	"github.com/yurixander/minimal/internal/commands"
	"github.com/yurixander/minimal/internal/config"
	"github.com/yurixander/minimal/internal/features"
	"github.com/yurixander/minimal/internal/presentation/graph"
	"github.com/yurixander/minimal/internal/presentation/tui"
	"github.com/yurixander/minimal/pkg/adapters/process"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/observability"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/ports"
	"github.com/yurixander/minimal/pkg/registry"
	"github.com/yurixander/minimal/pkg/runner"
	"github.com/yurixander/minimal/pkg/storage"
)

// shutdownGrace bounds how long background initializers may delay exit.
const shutdownGrace = 2 * time.Second

// RunOptions configures a shell session.
type RunOptions struct {
	// ConfigPath overrides config.DefaultPath.
	ConfigPath string
	// Flags are layered over the config file (--debug, --log-level).
	Flags *pflag.FlagSet
	// LogFile redirects diagnostics away from the terminal.
	LogFile string
	// NoSplash skips the splash command at startup.
	NoSplash bool
	// Signals enables SIGINT handling for running commands.
	Signals bool

	Stdin  io.Reader
	Stdout io.Writer
}

func (o RunOptions) stdin() io.Reader {
	if o.Stdin == nil {
		return os.Stdin
	}
	return o.Stdin
}

func (o RunOptions) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// app is a fully wired shell that has not been started yet.
type app struct {
	cfg         config.Config
	printer     *output.Printer
	logger      *slog.Logger
	store       ports.Store
	metrics     *observability.Metrics
	passthrough *features.Passthrough
	shell       *minimal.Shell
	closers     []func() error
}

func setup(ctx context.Context, opts RunOptions) (*app, error) {
	manager, err := config.Load(opts.ConfigPath, opts.Flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := manager.Config()

	a := &app{cfg: cfg, printer: output.NewPrinter(opts.stdout())}

	logger, closeLog, err := createLogger(a.printer, opts.LogFile)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	locks := []storage.LocksOption{storage.WithLocksLogger(logger)}
	if rs, ok := store.(*redis.Store); ok {
		locks = append(locks, storage.WithLocker(rs.Locker()))
	}

	if store, err = encryptStore(store, cfg.Storage.EncryptionKey); err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	proc := process.NewRunner()
	out := opts.stdout()

	a.passthrough = &features.Passthrough{Logger: logger}

	deps := &commands.Deps{
		Printer:     a.printer,
		Config:      manager,
		Store:       store,
		Locks:       storage.NewLocks(locks...),
		Process:     proc,
		Executables: a.passthrough,
		Chat:        commands.NewGenAIClient(),
		News:        commands.NewHackerNews(),
		Render:      tui.NewRenderer(terminalWidth(out)),
		Banner:      func() string { return tui.Banner(termenv.NewOutput(out)) },
		GPT: commands.GPTSettings{
			Model:        cfg.GPT.Model,
			MaxTokens:    cfg.GPT.MaxTokens,
			MaxHistory:   cfg.GPT.MaxHistory,
			SystemPrompt: cfg.GPT.SystemPrompt,
		},
		Splash: commands.SplashSettings{
			FetchHeadlines: cfg.Splash.FetchHeadlines,
			HeadlineCount:  cfg.Splash.HeadlineCount,
			Timeout:        cfg.Splash.Timeout,
		},
	}

	git := &features.Git{Probe: features.CLIProbe{Runner: proc}, Styler: a.printer}
	a.metrics = observability.NewMetrics()

	a.shell = minimal.New(
		minimal.WithCommands(commands.Builtins(deps)...),
		minimal.WithFeatures(git.Feature(), a.passthrough.Feature()),
		minimal.WithLogger(logger),
		minimal.WithLifecycleHooks(a.metrics.Hooks()),
		minimal.WithLifecycleHooks(createDebugHooks(logger)),
		minimal.WithMaxIterations(cfg.Engine.MaxIterations),
		minimal.WithCommandTimeout(cfg.Engine.CommandTimeout),
		minimal.WithListenerTimeout(cfg.Engine.ListenerTimeout),
		minimal.WithInitTimeout(cfg.Engine.InitTimeout),
	)
	deps.Catalog = a.shell.Commands()
	return a, nil
}

// Close releases the store and log file.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func (a *app) initialState() (*domain.State, error) {
	level, err := domain.ParseLogLevel(a.cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return domain.NewState(wd, level), nil
}

func (a *app) reader(opts RunOptions) (runner.LineReader, error) {
	in := opts.stdin()
	if !isTerminal(in) {
		return runner.NewTextReader(in, opts.stdout()), nil
	}

	history := a.cfg.HistoryFile
	if history != "" {
		if err := os.MkdirAll(filepath.Dir(history), 0o755); err != nil {
			a.logger.Warn("history disabled", "path", history, "err", err)
			history = ""
		}
	}
	return runner.NewReadlineReader(history, runner.Completion{
		Commands:     a.shell.Commands().Names(),
		Executables:  a.passthrough.Names,
		ExecCommands: []string{commands.NameExec, commands.NameEval},
	})
}

// RunShell runs an interactive session until exit, EOF or ctx ends.
func RunShell(ctx context.Context, opts RunOptions) error {
	a, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	initial, err := a.initialState()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionID := uuid.NewString()
	a.logger.Debug("Session Created", "session_id", sessionID, "wd", initial.WorkingDirectory())

	state := a.shell.Start(ctx, initial).State

	runnerOpts := []runner.Option{
		runner.WithPrinter(a.printer),
		runner.WithLogger(a.logger),
		runner.WithSessionID(sessionID),
		runner.WithSignals(opts.Signals),
	}

	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := observability.NewServer(a.metrics, a.shell.Features(), a.logger)
		runnerOpts = append(runnerOpts, runner.WithStateObserver(srv.Publish))
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				a.logger.Error("metrics server stopped", "addr", addr, "err", err)
			}
		}()
	}

	if !opts.NoSplash {
		a.printer.SetLevel(state.LogLevel())
		outcome, err := a.shell.Execute(ctx, state, commands.NameSplash)
		if err != nil {
			a.printer.Error(err.Error())
		}
		state = outcome.State
	}

	reader, err := a.reader(opts)
	if err != nil {
		return err
	}
	defer reader.Close()
	runnerOpts = append(runnerOpts, runner.WithReader(reader))

	_, err = runner.NewRunner(runnerOpts...).Run(ctx, a.shell, state)

	// Stop background initializers before the store closes.
	cancel()
	waitCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
	defer stop()
	if werr := a.shell.Wait(waitCtx); werr != nil && !errors.Is(werr, context.Canceled) {
		a.logger.Debug("background features did not finish", "err", werr)
	}
	return err
}

// Graph prints a Mermaid diagram of the propagation wiring, colored by
// the status each feature reaches within the init timeout.
func Graph(ctx context.Context, opts RunOptions) error {
	a, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	initial, err := a.initialState()
	if err != nil {
		return err
	}
	a.shell.Start(ctx, initial)

	waitCtx := ctx
	if timeout := a.cfg.Engine.InitTimeout; timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := a.shell.Wait(waitCtx); err != nil {
		a.logger.Debug("features still pending", "err", err)
	}

	table := a.shell.Features()
	overlay := &graph.Overlay{Status: make(map[string]registry.Status)}
	for _, f := range table.All() {
		if status, ok := table.Status(f.Name); ok {
			overlay.Status[f.Name] = status
		}
	}

	_, err = fmt.Fprint(opts.stdout(), graph.GenerateMermaid(domain.DefaultDeltaPoints, table.All(), overlay))
	return err
}
