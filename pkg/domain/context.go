package domain

// Context is a node of the fetched state machine.
type Context struct {
	ID      uint8
	Desc    string
	Actions []Action
}

// State returns the StateID that enters this context.
func (c Context) State() StateID {
	return ContextID(c.ID)
}

// Graph is the ordered list of contexts returned by a debot.
type Graph []Context

// Find returns the context entered by state, if present.
func (g Graph) Find(state StateID) (Context, bool) {
	id, ok := state.Context()
	if !ok {
		return Context{}, false
	}
	for _, ctx := range g {
		if ctx.ID == id {
			return ctx, true
		}
	}
	return Context{}, false
}
