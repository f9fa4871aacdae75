package debot

import (
	"context"
	"log/slog"

	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/internal/runtime"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/aretw0/debot/pkg/runner"
)

// Engine is the high-level entry point for the debot library.
// It wraps the internal runtime and exposes the session operations.
type Engine struct {
	runtime     *runtime.Engine
	runtimeOpts []runtime.EngineOption
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithABI overrides the debot's own ABI used to decode self-addressed messages.
func WithABI(abi string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithABI(abi))
	}
}

// WithRoutines replaces the built-in routine registry used by CallEngine actions.
func WithRoutines(reg ports.RoutineRegistry) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRoutines(reg))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithMaxInstantSwitches caps consecutive instant transitions. Zero means unbounded.
func WithMaxInstantSwitches(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxInstantSwitches(n))
	}
}

// WithCheckpointStore persists the session position after every step.
func WithCheckpointStore(store ports.CheckpointStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithCheckpointStore(store))
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSessionID(id))
	}
}

// New creates an engine for the debot at addr. Nothing is fetched until
// Start, Resume or Fetch is called.
func New(addr string, service ports.CallService, browser ports.Browser, opts ...Option) (*Engine, error) {
	a, err := domain.ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	runtimeOpts := append([]runtime.EngineOption{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(a, service, browser, runtimeOpts...)
	return eng, nil
}

// Start fetches the debot and enters its initial context.
func (e *Engine) Start(ctx context.Context) error {
	return e.runtime.Start(ctx)
}

// Resume restores the session from the configured checkpoint store.
func (e *Engine) Resume(ctx context.Context) error {
	return e.runtime.Resume(ctx)
}

// Fetch reloads the debot state, options and context graph without entering a context.
func (e *Engine) Fetch(ctx context.Context) error {
	return e.runtime.Fetch(ctx)
}

// ExecuteAction runs an action the user picked from the presented ones.
func (e *Engine) ExecuteAction(ctx context.Context, act domain.Action) error {
	return e.runtime.ExecuteAction(ctx, act)
}

// Version returns the raw getVersion output of the debot.
func (e *Engine) Version(ctx context.Context) (map[string]any, error) {
	return e.runtime.Version(ctx)
}

// CurrentState returns the current context id, or EXIT.
func (e *Engine) CurrentState() domain.StateID { return e.runtime.CurrentState() }

// PreviousState returns the context the session came from.
func (e *Engine) PreviousState() domain.StateID { return e.runtime.PreviousState() }

// Graph returns the fetched context graph.
func (e *Engine) Graph() domain.Graph { return e.runtime.Graph() }

// AccountState returns a copy of the debot account snapshot held by the session.
func (e *Engine) AccountState() domain.AccountState { return e.runtime.AccountState() }

// Address returns the debot address.
func (e *Engine) Address() domain.Address { return e.runtime.Address() }

// SessionID returns the id used for checkpoints and log correlation.
func (e *Engine) SessionID() string { return e.runtime.SessionID() }

// Target returns the target contract address and ABI declared by the debot options.
func (e *Engine) Target() (*domain.Address, *string) { return e.runtime.Target() }

// NewInvoker returns a runner.Invoker that runs nested debots on a child of
// term: it fetches the nested debot, executes the invoking action and then
// presents its menus until the nested session exits.
func NewInvoker(service ports.CallService, term *runner.Terminal, opts ...Option) runner.Invoker {
	var invoke runner.Invoker
	invoke = func(ctx context.Context, addr domain.Address, action domain.Action) error {
		child := term.Nested()
		child.SetInvoker(invoke)
		eng, err := New(string(addr), service, child, opts...)
		if err != nil {
			return err
		}
		if err := eng.Fetch(ctx); err != nil {
			return err
		}
		if err := eng.ExecuteAction(ctx, action); err != nil {
			return err
		}
		return runner.New(child).Loop(ctx, eng)
	}
	return invoke
}
