package dto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
)

// DecodeGraph extracts the context graph from fetch output.
func DecodeGraph(output map[string]any) (domain.Graph, error) {
	raw, ok := output["contexts"]
	if !ok {
		return nil, fmt.Errorf("%w: fetch output has no contexts", domain.ErrMalformedOutput)
	}
	var wires []ContextWire
	if err := Decode(raw, &wires); err != nil {
		return nil, err
	}
	graph := make(domain.Graph, 0, len(wires))
	for _, w := range wires {
		ctx, err := w.ToContext()
		if err != nil {
			return nil, err
		}
		graph = append(graph, ctx)
	}
	return graph, nil
}

// DecodeActions decodes a list of wire actions.
func DecodeActions(raw any) ([]domain.Action, error) {
	var wires []ActionWire
	if err := Decode(raw, &wires); err != nil {
		return nil, err
	}
	actions := make([]domain.Action, 0, len(wires))
	for _, w := range wires {
		act, err := w.ToAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
	return actions, nil
}

// DecodeAction decodes a single wire action.
func DecodeAction(raw any) (domain.Action, error) {
	var w ActionWire
	if err := Decode(raw, &w); err != nil {
		return domain.Action{}, err
	}
	return w.ToAction()
}

// Version is the decoded getVersion output.
type Version struct {
	Name  string
	Major uint8
	Minor uint8
	Patch uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%s, version %d.%d.%d", v.Name, v.Major, v.Minor, v.Patch)
}

// DecodeVersion decodes getVersion output: a hex name and a 24-bit semver.
func DecodeVersion(output map[string]any) (Version, error) {
	var w VersionWire
	if err := Decode(output, &w); err != nil {
		return Version{}, err
	}
	name, err := format.HexToUTF8(w.Name)
	if err != nil {
		return Version{}, fmt.Errorf("%w: debot name: %v", domain.ErrMalformedOutput, err)
	}
	return Version{
		Name:  name,
		Major: uint8(w.Semver >> 16),
		Minor: uint8(w.Semver >> 8),
		Patch: uint8(w.Semver),
	}, nil
}

// Option bits returned by getDebotOptions.
const (
	OptionABI        = 1
	OptionTargetABI  = 2
	OptionTargetAddr = 4
)

// Options is the decoded getDebotOptions output. Pointers are nil when the
// matching bit is not set.
type Options struct {
	ABI        *string
	TargetABI  *string
	TargetAddr *domain.Address
}

// DecodeOptions decodes getDebotOptions output, reading only the fields enabled
// by the option bitmask.
func DecodeOptions(output map[string]any) (Options, error) {
	var w OptionsWire
	if err := Decode(output, &w); err != nil {
		return Options{}, err
	}
	var opts Options
	if w.Options&OptionABI != 0 {
		abi, err := format.HexToUTF8(w.DebotABI)
		if err != nil {
			return Options{}, fmt.Errorf("cannot convert hex string to debot abi: %w", err)
		}
		opts.ABI = &abi
	}
	if w.Options&OptionTargetABI != 0 {
		abi, err := format.HexToUTF8(w.TargetABI)
		if err != nil {
			return Options{}, fmt.Errorf("cannot convert hex string to target abi: %w", err)
		}
		opts.TargetABI = &abi
	}
	if w.Options&OptionTargetAddr != 0 {
		addr, err := domain.ParseAddress(w.TargetAddr)
		if err != nil {
			return Options{}, err
		}
		opts.TargetAddr = &addr
	}
	return opts, nil
}

// Message is the decoded output of a SendMsg debot function.
type Message struct {
	Dest  domain.Address
	Body  []byte
	State []byte // nil when no initial state is attached
}

// DecodeMessage decodes dest/body/state where body and state are base64.
func DecodeMessage(output map[string]any) (Message, error) {
	var w MessageWire
	if err := Decode(output, &w); err != nil {
		return Message{}, err
	}
	dest, err := domain.ParseAddress(w.Dest)
	if err != nil {
		return Message{}, err
	}
	body, err := base64.StdEncoding.DecodeString(w.Body)
	if err != nil {
		return Message{}, fmt.Errorf("cannot decode message body: %w", err)
	}
	msg := Message{Dest: dest, Body: body}
	if w.State != nil {
		state, err := base64.StdEncoding.DecodeString(*w.State)
		if err != nil {
			return Message{}, fmt.Errorf("cannot decode state: %w", err)
		}
		msg.State = state
	}
	return msg, nil
}

// DecodeInvoke decodes the nested debot address and the action to start it with.
func DecodeInvoke(output map[string]any) (domain.Address, domain.Action, error) {
	var w InvokeWire
	if err := Decode(output, &w); err != nil {
		return "", domain.Action{}, err
	}
	addr, err := domain.ParseAddress(w.Debot)
	if err != nil {
		return "", domain.Action{}, err
	}
	act, err := DecodeAction(w.Action)
	if err != nil {
		return "", domain.Action{}, err
	}
	return addr, act, nil
}

// ToMap converts a wire struct into the dynamically typed form call services return.
func ToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
