package minimal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yurixander/minimal/internal/engine"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/registry"
)

// ErrNotStarted is returned by Execute before Start.
var ErrNotStarted = errors.New("shell not started")

// Shell is the high-level entry point: command lookup, feature
// initialization and the propagation engine behind one API.
type Shell struct {
	commands    *registry.Commands
	featureDefs []registry.Feature
	features    *registry.Features
	engine      *engine.Engine

	commandDefs []registry.Command
	engineOpts  []engine.Option
	initTimeout time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	rootPrompt  string
}

// Option defines a functional option for configuring the Shell.
type Option func(*Shell)

// WithCommands registers commands. Later duplicates replace earlier ones.
func WithCommands(cmds ...registry.Command) Option {
	return func(s *Shell) {
		s.commandDefs = append(s.commandDefs, cmds...)
	}
}

// WithFeatures registers features in listener order.
func WithFeatures(features ...registry.Feature) Option {
	return func(s *Shell) {
		s.featureDefs = append(s.featureDefs, features...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Shell) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithMaxIterations caps propagation passes per command.
func WithMaxIterations(n int) Option {
	return func(s *Shell) {
		s.engineOpts = append(s.engineOpts, engine.WithMaxIterations(n))
	}
}

// WithCommandTimeout bounds every command handler.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Shell) {
		s.engineOpts = append(s.engineOpts, engine.WithCommandTimeout(d))
	}
}

// WithListenerTimeout bounds every feature listener call.
func WithListenerTimeout(d time.Duration) Option {
	return func(s *Shell) {
		s.engineOpts = append(s.engineOpts, engine.WithListenerTimeout(d))
	}
}

// WithInitTimeout bounds every feature initializer.
func WithInitTimeout(d time.Duration) Option {
	return func(s *Shell) {
		s.initTimeout = d
	}
}

// WithDeltaPoints replaces the field-to-event bindings.
func WithDeltaPoints(points []domain.DeltaPoint) Option {
	return func(s *Shell) {
		s.engineOpts = append(s.engineOpts, engine.WithDeltaPoints(points))
	}
}

// WithRootPrompt replaces the glyph the prompt starts with.
func WithRootPrompt(root string) Option {
	return func(s *Shell) {
		s.rootPrompt = root
	}
}

// New builds the command table. Features are initialized by Start.
func New(opts ...Option) *Shell {
	s := &Shell{rootPrompt: output.RootPrompt}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.commands = registry.NewCommands(s.logger, s.commandDefs...)
	return s
}

// Start initializes the features against initial and primes the state, so
// feature-derived fields such as the prompt exist before the first command.
// Background initializers keep running after Start returns.
func (s *Shell) Start(ctx context.Context, initial *domain.State) *domain.Outcome {
	s.features = registry.InitializeFeatures(ctx, initial, s.featureDefs,
		registry.WithFeatureLogger(s.logger),
		registry.WithInitTimeout(s.initTimeout),
	)

	opts := append([]engine.Option{
		engine.WithLogger(s.logger),
		engine.WithLifecycleHooks(s.hooks),
	}, s.engineOpts...)
	s.engine = engine.New(s.features, opts...)

	return s.engine.Prime(ctx, initial)
}

// Execute tokenizes line on whitespace and runs the named command. An
// unknown name returns an error wrapping domain.ErrUnknownCommand. The
// returned Outcome always carries the State to continue from.
func (s *Shell) Execute(ctx context.Context, state *domain.State, line string) (*domain.Outcome, error) {
	if s.engine == nil {
		return &domain.Outcome{State: state}, ErrNotStarted
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return &domain.Outcome{State: state}, nil
	}

	cmd, ok := s.commands.Lookup(tokens[0])
	if !ok {
		return &domain.Outcome{State: state}, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, tokens[0])
	}
	return s.engine.Transition(ctx, cmd, tokens[1:], state)
}

// Prompt renders the prompt for state.
func (s *Shell) Prompt(state *domain.State) string {
	return output.RenderPrompt(s.rootPrompt, state.Prompt())
}

// Commands returns the command table.
func (s *Shell) Commands() *registry.Commands { return s.commands }

// Features returns the feature table, or nil before Start.
func (s *Shell) Features() *registry.Features { return s.features }

// Wait blocks until background feature initializers finish.
func (s *Shell) Wait(ctx context.Context) error {
	if s.features == nil {
		return ErrNotStarted
	}
	return s.features.Wait(ctx)
}
