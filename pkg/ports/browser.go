package ports

import (
	"context"

	"github.com/aretw0/debot/pkg/domain"
)

// Browser is the interactive front end driven by the engine.
// The engine holds exactly one Browser for its lifetime.
type Browser interface {
	// SwitchState notifies the front end that a context was entered, or that the
	// session ended when state is domain.StateExit.
	SwitchState(ctx context.Context, state domain.StateID)

	// Log shows a line of user-visible text.
	Log(ctx context.Context, msg string)

	// ShowAction presents an interactive action. The user's choice comes back
	// through the engine's ExecuteAction.
	ShowAction(ctx context.Context, action domain.Action)

	// Input collects a value from the user.
	Input(ctx context.Context, prompt string) (string, error)

	// LoadKey collects a signing key pair.
	LoadKey(ctx context.Context) (domain.KeyPair, error)

	// InvokeDebot runs a nested debot session starting with action.
	InvokeDebot(ctx context.Context, addr domain.Address, action domain.Action) error
}
