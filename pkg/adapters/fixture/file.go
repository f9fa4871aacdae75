package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/schema"
	"gopkg.in/yaml.v3"
)

// File is the YAML description of a simulated network.
type File struct {
	// Entry is the debot a session starts with. Defaults to the first contract.
	Entry     string           `yaml:"entry"`
	Contracts []Contract       `yaml:"contracts"`
	Accounts  []map[string]any `yaml:"accounts"`
}

// Contract is a debot or an ordinary contract. Debots declare contexts.
type Contract struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// ABI is published through getDebotOptions when set.
	ABI string `yaml:"abi"`
	// Target is the address of another contract in the file the debot works with.
	// Its ABI is published as the target ABI when that contract declares one.
	Target string `yaml:"target"`

	State     map[string]any      `yaml:"state"`
	Contexts  []ContextSpec       `yaml:"contexts"`
	Functions map[string]Function `yaml:"functions"`
	Errors    map[int]string      `yaml:"errors"`
}

// ContextSpec is a context with plain-text fields.
type ContextSpec struct {
	ID      uint8        `yaml:"id"`
	Desc    string       `yaml:"desc"`
	Actions []ActionSpec `yaml:"actions"`
}

// ActionSpec is an action with plain-text fields. Kind is a kind name such as
// "run_action" or a numeric code; To is a context id or current, prev, exit.
type ActionSpec struct {
	Name  string `yaml:"name"`
	Desc  string `yaml:"desc"`
	Kind  string `yaml:"kind"`
	To    string `yaml:"to"`
	Attrs string `yaml:"attrs"`
	Misc  string `yaml:"misc"`
}

// Function scripts one contract function.
// String values in Output and Account may use text/template with .args and .state.
type Function struct {
	Inputs  schema.Schema     `yaml:"inputs"`
	Output  map[string]any    `yaml:"output"`
	Account map[string]any    `yaml:"account"`
	Error   *ErrorSpec        `yaml:"error"`
}

// ErrorSpec is the call-service error a function fails with.
type ErrorSpec struct {
	Message string         `yaml:"message"`
	Code    int            `yaml:"code"`
	Data    map[string]any `yaml:"data"`
}

var kindCodes = map[string]uint8{
	"empty":       domain.CodeEmpty,
	"run_action":  domain.CodeRunAction,
	"run_method":  domain.CodeRunMethod,
	"send_msg":    domain.CodeSendMsg,
	"invoke":      domain.CodeInvoke,
	"print":       domain.CodePrint,
	"goto":        domain.CodeGoto,
	"call_engine": domain.CodeCallEngine,
}

// LoadFile reads and validates a fixture file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes and validates fixture YAML.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if len(f.Contracts) == 0 {
		return nil, fmt.Errorf("fixture declares no contracts")
	}
	seen := make(map[domain.Address]bool, len(f.Contracts))
	for i := range f.Contracts {
		c := &f.Contracts[i]
		addr, err := domain.ParseAddress(c.Address)
		if err != nil {
			return nil, fmt.Errorf("contract %d: %w", i, err)
		}
		if seen[addr] {
			return nil, fmt.Errorf("contract %s declared twice", addr)
		}
		seen[addr] = true
		c.Address = string(addr)
		if c.ABI != "" && !json.Valid([]byte(c.ABI)) {
			return nil, fmt.Errorf("contract %s: abi is not valid json", addr)
		}
		for _, ctx := range c.Contexts {
			if _, err := ctx.toContext(); err != nil {
				return nil, fmt.Errorf("contract %s: %w", addr, err)
			}
		}
	}
	if f.Entry == "" {
		f.Entry = f.Contracts[0].Address
	}
	entry, err := domain.ParseAddress(f.Entry)
	if err != nil {
		return nil, fmt.Errorf("entry: %w", err)
	}
	if !seen[entry] {
		return nil, fmt.Errorf("entry %s is not a declared contract", entry)
	}
	f.Entry = string(entry)
	return &f, nil
}

func (c ContextSpec) toContext() (domain.Context, error) {
	if c.ID > domain.MaxContextID {
		return domain.Context{}, fmt.Errorf("context id %d out of range", c.ID)
	}
	out := domain.Context{ID: c.ID, Desc: c.Desc, Actions: make([]domain.Action, 0, len(c.Actions))}
	for _, a := range c.Actions {
		act, err := a.toAction()
		if err != nil {
			return domain.Context{}, fmt.Errorf("context %d: %w", c.ID, err)
		}
		out.Actions = append(out.Actions, act)
	}
	return out, nil
}

func (a ActionSpec) toAction() (domain.Action, error) {
	code, err := parseKind(a.Kind)
	if err != nil {
		return domain.Action{}, fmt.Errorf("action %q: %w", a.Name, err)
	}
	to, err := parseState(a.To)
	if err != nil {
		return domain.Action{}, fmt.Errorf("action %q: %w", a.Name, err)
	}
	return domain.NewAction(a.Name, a.Desc, to, code, a.Attrs, a.Misc), nil
}

func parseKind(raw string) (uint8, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return domain.CodeEmpty, nil
	}
	if code, ok := kindCodes[raw]; ok {
		return code, nil
	}
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown action kind %q", raw)
	}
	return uint8(n), nil
}

func parseState(raw string) (domain.StateID, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", "current":
		return domain.StateCurrent, nil
	case "prev":
		return domain.StatePrev, nil
	case "exit":
		return domain.StateExit, nil
	}
	v, err := domain.ParseWireNumber(raw)
	if err != nil {
		return domain.StateID{}, fmt.Errorf("invalid target state %q", raw)
	}
	return domain.StateFromWire(v)
}

// semver packs "major.minor.patch" into the 24-bit form debots return.
func semver(raw string) (uint32, error) {
	if raw == "" {
		return 0, nil
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid version %q", raw)
	}
	var v uint32
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid version %q", raw)
		}
		v = v<<8 | uint32(n)
	}
	return v, nil
}
