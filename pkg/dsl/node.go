package dsl

import (
	"strconv"
	"strings"

	"github.com/aretw0/debot/pkg/adapters/fixture"
)

// Transition targets understood by the fixture loader.
const (
	Current = "current"
	Prev    = "prev"
	Exit    = "exit"
)

// To returns the transition target of a context id.
func To(id uint8) string {
	return strconv.Itoa(int(id))
}

// ContextBuilder provides a fluent API for configuring a context.
type ContextBuilder struct {
	spec    fixture.ContextSpec
	builder *Builder
}

func (c *ContextBuilder) add(a fixture.ActionSpec) *ContextBuilder {
	c.spec.Actions = append(c.spec.Actions, a)
	c.builder.contexts[c.spec.ID] = c
	return c
}

// Action appends a raw action.
func (c *ContextBuilder) Action(a fixture.ActionSpec) *ContextBuilder {
	return c.add(a)
}

// Print appends a print action. Text may carry a {} placeholder filled by fargs.
func (c *ContextBuilder) Print(text, desc, to string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: text, Desc: desc, Kind: "print", To: to})
}

// Goto appends a transition-only action.
func (c *ContextBuilder) Goto(name, desc, to string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: name, Desc: desc, Kind: "goto", To: to})
}

// Run appends a run_action that calls the debot function name.
func (c *ContextBuilder) Run(name, desc, to string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: name, Desc: desc, Kind: "run_action", To: to})
}

// Method appends a run_method reading method from the target contract and
// handing the result to the debot function name.
func (c *ContextBuilder) Method(name, desc, method, to string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: name, Desc: desc, Kind: "run_method", To: to, Attrs: "func=" + method})
}

// Send appends a send_msg built by the debot function name.
func (c *ContextBuilder) Send(name, desc, to string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: name, Desc: desc, Kind: "send_msg", To: to})
}

// Invoke appends an action that starts a nested debot.
func (c *ContextBuilder) Invoke(name, desc string) *ContextBuilder {
	return c.add(fixture.ActionSpec{Name: name, Desc: desc, Kind: "invoke"})
}

// Engine appends a call_engine running routine name with arguments from
// getter and passing its result to setter.
func (c *ContextBuilder) Engine(name, getter, setter string) *ContextBuilder {
	attrs := "func=" + setter
	if getter != "" {
		attrs = "args=" + getter + "," + attrs
	}
	return c.add(fixture.ActionSpec{Name: name, Kind: "call_engine", Attrs: attrs})
}

// Instant marks the last action as instant, so it runs on entering the context.
func (c *ContextBuilder) Instant() *ContextBuilder {
	return c.with("instant")
}

// Args sets the fargs function formatting the last print action.
func (c *ContextBuilder) Args(fn string) *ContextBuilder {
	return c.with("fargs=" + fn)
}

// Misc attaches a serialized cell to the last action.
func (c *ContextBuilder) Misc(cell string) *ContextBuilder {
	if n := len(c.spec.Actions); n > 0 {
		c.spec.Actions[n-1].Misc = cell
	}
	return c
}

func (c *ContextBuilder) with(attr string) *ContextBuilder {
	n := len(c.spec.Actions)
	if n == 0 {
		return c
	}
	a := &c.spec.Actions[n-1]
	if a.Attrs == "" {
		a.Attrs = attr
	} else {
		a.Attrs = strings.Join([]string{attr, a.Attrs}, ",")
	}
	return c
}

// Build returns the underlying context spec.
func (c *ContextBuilder) Build() fixture.ContextSpec {
	return c.spec
}

// Done returns to the contract builder.
func (c *ContextBuilder) Done() *Builder {
	return c.builder
}
