package dsl

import (
	"fmt"

	"github.com/aretw0/debot/pkg/adapters/fixture"
	"gopkg.in/yaml.v3"
)

// Builder manages the construction of one contract.
type Builder struct {
	contract fixture.Contract
	contexts map[uint8]*ContextBuilder
	order    []uint8
}

// New creates a builder for the contract at addr.
func New(addr string) *Builder {
	return &Builder{
		contract: fixture.Contract{Address: addr},
		contexts: make(map[uint8]*ContextBuilder),
	}
}

// Name sets the name returned by getVersion.
func (b *Builder) Name(name string) *Builder {
	b.contract.Name = name
	return b
}

// Version sets the "major.minor.patch" version returned by getVersion.
func (b *Builder) Version(version string) *Builder {
	b.contract.Version = version
	return b
}

// ABI publishes the contract ABI.
func (b *Builder) ABI(abi string) *Builder {
	b.contract.ABI = abi
	return b
}

// Target links the debot to the contract it works with.
func (b *Builder) Target(addr string) *Builder {
	b.contract.Target = addr
	return b
}

// State sets a field of the initial account state.
func (b *Builder) State(key string, value any) *Builder {
	if b.contract.State == nil {
		b.contract.State = make(map[string]any)
	}
	b.contract.State[key] = value
	return b
}

// Function scripts a contract function.
func (b *Builder) Function(name string, fn fixture.Function) *Builder {
	if b.contract.Functions == nil {
		b.contract.Functions = make(map[string]fixture.Function)
	}
	b.contract.Functions[name] = fn
	return b
}

// Error registers the description getErrorDescription returns for code.
func (b *Builder) Error(code int, desc string) *Builder {
	if b.contract.Errors == nil {
		b.contract.Errors = make(map[int]string)
	}
	b.contract.Errors[code] = desc
	return b
}

// Context adds a context to the debot.
// If the context already exists, it returns the existing builder.
func (b *Builder) Context(id uint8, desc string) *ContextBuilder {
	if cb, ok := b.contexts[id]; ok {
		return cb
	}
	cb := &ContextBuilder{spec: fixture.ContextSpec{ID: id, Desc: desc}, builder: b}
	b.contexts[id] = cb
	b.order = append(b.order, id)
	return cb
}

// Contract returns the contract with its contexts in declaration order.
func (b *Builder) Contract() fixture.Contract {
	c := b.contract
	c.Contexts = make([]fixture.ContextSpec, 0, len(b.order))
	for _, id := range b.order {
		c.Contexts = append(c.Contexts, b.contexts[id].spec)
	}
	return c
}

// Build compiles the contracts into a validated fixture. The first builder is
// the entry debot.
func Build(entry *Builder, others ...*Builder) (*fixture.File, error) {
	f := fixture.File{Entry: entry.contract.Address}
	f.Contracts = append(f.Contracts, entry.Contract())
	for _, b := range others {
		f.Contracts = append(f.Contracts, b.Contract())
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fixture: %w", err)
	}
	out, err := fixture.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build fixture: %w", err)
	}
	return out, nil
}
