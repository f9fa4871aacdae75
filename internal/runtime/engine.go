package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/aretw0/debot/pkg/routines"
	"github.com/google/uuid"
)

// Engine is the debot session interpreter.
// It is single-threaded: one session executes one action at a time.
type Engine struct {
	addr    domain.Address
	abi     string
	service ports.CallService
	browser ports.Browser

	routines ports.RoutineRegistry
	session  *Session

	graph    domain.Graph
	current  domain.StateID
	previous domain.StateID

	targetAddr *domain.Address
	targetABI  *string

	hooks              domain.LifecycleHooks
	logger             *slog.Logger
	maxInstantSwitches int
	store              ports.CheckpointStore
	sessionID          string
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithABI sets the self ABI used until the debot publishes its own.
func WithABI(abi string) EngineOption {
	return func(e *Engine) {
		if abi != "" {
			e.abi = abi
		}
	}
}

// WithRoutines replaces the routine registry used by CallEngine actions.
func WithRoutines(reg ports.RoutineRegistry) EngineOption {
	return func(e *Engine) {
		e.routines = reg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxInstantSwitches bounds the number of consecutive instant transitions a
// single switch may chain. Zero leaves the chain unbounded.
func WithMaxInstantSwitches(n int) EngineOption {
	return func(e *Engine) {
		e.maxInstantSwitches = n
	}
}

// WithCheckpointStore enables checkpoints after Start and ExecuteAction.
func WithCheckpointStore(store ports.CheckpointStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithSessionID sets the session id used for logs, events and checkpoints.
func WithSessionID(id string) EngineOption {
	return func(e *Engine) {
		if id != "" {
			e.sessionID = id
		}
	}
}

// NewEngine creates an engine for the debot at addr.
func NewEngine(addr domain.Address, service ports.CallService, browser ports.Browser, opts ...EngineOption) *Engine {
	e := &Engine{
		addr:      addr,
		abi:       domain.DefaultDebotABI,
		service:   service,
		browser:   browser,
		session:   NewSession(domain.AccountState{}),
		current:   domain.StateExit,
		previous:  domain.StateZero,
		logger:    logging.NewNop(),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.routines == nil {
		e.routines = routines.NewDefault(service)
	}
	e.logger = e.logger.With("session_id", e.sessionID, "debot", string(addr))
	return e
}

// Fetch loads the debot state and options, then replaces the context graph.
func (e *Engine) Fetch(ctx context.Context) error {
	graph, err := e.fetchGraph(ctx)
	if err != nil {
		return err
	}
	e.graph = graph
	e.previous = domain.StateExit
	return nil
}

func (e *Engine) fetchGraph(ctx context.Context) (domain.Graph, error) {
	if err := e.loadState(ctx); err != nil {
		return nil, err
	}
	res, err := e.runGet(ctx, fnFetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contexts: %w", err)
	}
	graph, err := dto.DecodeGraph(res.Output)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("graph fetched", "contexts", len(graph))
	return graph, nil
}

// Start fetches the debot and enters the initial context.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.Fetch(ctx); err != nil {
		return err
	}
	err := e.switchState(ctx, domain.StateZero, true)
	e.saveCheckpoint(ctx)
	return err
}

// ExecuteAction runs an action chosen by the user and moves to its target state.
// On failure the failure is logged and the session falls back to the previous state.
func (e *Engine) ExecuteAction(ctx context.Context, act domain.Action) error {
	_, err := e.handleAction(ctx, act, false)
	if err == nil {
		err = e.switchState(ctx, act.To, true)
	}
	if err != nil {
		e.logger.Debug("action failed, falling back", "action", act.Name, "err", err, "previous", e.previous.String())
		e.browser.Log(ctx, fmt.Sprintf("Action failed: %s. Return to previous state.\n", err))
		err = e.switchState(ctx, e.previous, false)
	}
	e.saveCheckpoint(ctx)
	return err
}

// Version returns the raw getVersion output.
func (e *Engine) Version(ctx context.Context) (map[string]any, error) {
	res, err := e.runGet(ctx, fnGetVersion)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// CurrentState returns the id of the last entered context, or EXIT.
func (e *Engine) CurrentState() domain.StateID { return e.current }

// PreviousState returns the id entered before the current one, or EXIT.
func (e *Engine) PreviousState() domain.StateID { return e.previous }

// Graph returns the fetched contexts.
func (e *Engine) Graph() domain.Graph { return e.graph }

// AccountState returns a copy of the cached account snapshot.
func (e *Engine) AccountState() domain.AccountState { return e.session.Snapshot().Clone() }

// Address returns the debot address.
func (e *Engine) Address() domain.Address { return e.addr }

// SessionID returns the id used for logs, events and checkpoints.
func (e *Engine) SessionID() string { return e.sessionID }

// Target returns the target address and ABI, when the debot declared them.
func (e *Engine) Target() (*domain.Address, *string) { return e.targetAddr, e.targetABI }
