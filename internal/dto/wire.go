package dto

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// WireNumber is an integer that debots encode either as "0x" hex strings or as
// plain JSON numbers.
type WireNumber uint64

// ActionWire is the raw shape of an action in debot output.
// Text fields are hex encoded UTF-8.
type ActionWire struct {
	Desc       string     `json:"desc" mapstructure:"desc"`
	Name       string     `json:"name" mapstructure:"name"`
	ActionType WireNumber `json:"actionType" mapstructure:"actionType"`
	Attrs      string     `json:"attrs" mapstructure:"attrs"`
	To         WireNumber `json:"to" mapstructure:"to"`
	Misc       string     `json:"misc" mapstructure:"misc"`
}

// ContextWire is the raw shape of a context in fetch output.
type ContextWire struct {
	ID      WireNumber   `json:"id" mapstructure:"id"`
	Desc    string       `json:"desc" mapstructure:"desc"`
	Actions []ActionWire `json:"actions" mapstructure:"actions"`
}

// VersionWire is the output of getVersion.
type VersionWire struct {
	Name   string     `mapstructure:"name"`
	Semver WireNumber `mapstructure:"semver"`
}

// OptionsWire is the output of getDebotOptions. ABI and target fields are only
// meaningful when the matching option bit is set.
type OptionsWire struct {
	Options    WireNumber `mapstructure:"options"`
	DebotABI   string     `mapstructure:"debotAbi"`
	TargetABI  string     `mapstructure:"targetAbi"`
	TargetAddr string     `mapstructure:"targetAddr"`
}

// MessageWire is the output of the debot function behind a SendMsg action.
type MessageWire struct {
	Dest  string  `mapstructure:"dest"`
	Body  string  `mapstructure:"body"`
	State *string `mapstructure:"state"`
}

// InvokeWire is the output of the debot function behind an Invoke action.
type InvokeWire struct {
	Debot  string         `mapstructure:"debot"`
	Action map[string]any `mapstructure:"action"`
}

var wireNumberType = reflect.TypeOf(WireNumber(0))

// wireNumberHook converts hex strings and JSON numbers into WireNumber.
func wireNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != wireNumberType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		n, err := domain.ParseWireNumber(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return n, nil
	case json.Number:
		n, err := domain.ParseWireNumber(v.String())
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return n, nil
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return nil, fmt.Errorf("invalid number %v", v)
		}
		return uint64(v), nil
	}
	return data, nil
}

// Decode maps dynamically typed output onto a wire struct.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: wireNumberHook,
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	return nil
}

// ToAction converts the wire form into a domain action.
func (w ActionWire) ToAction() (domain.Action, error) {
	name, err := format.HexToUTF8(w.Name)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: action name: %v", domain.ErrMalformedOutput, err)
	}
	desc, err := format.HexToUTF8(w.Desc)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: action %q desc: %v", domain.ErrMalformedOutput, name, err)
	}
	attrs, err := format.HexToUTF8(w.Attrs)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: action %q attrs: %v", domain.ErrMalformedOutput, name, err)
	}
	to, err := domain.StateFromWire(uint64(w.To))
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: action %q: %v", domain.ErrMalformedOutput, name, err)
	}
	if w.ActionType > 0xff {
		return domain.Action{}, fmt.Errorf("%w: action %q: kind %d out of range", domain.ErrMalformedOutput, name, w.ActionType)
	}
	return domain.NewAction(name, desc, to, uint8(w.ActionType), attrs, w.Misc), nil
}

// FromAction converts a domain action into its wire form.
func FromAction(a domain.Action) ActionWire {
	return ActionWire{
		Desc:       format.UTF8ToHex(a.Desc),
		Name:       format.UTF8ToHex(a.Name),
		ActionType: WireNumber(a.Kind.Code()),
		Attrs:      format.UTF8ToHex(a.Attrs),
		To:         WireNumber(a.To.Wire()),
		Misc:       a.Misc,
	}
}

// ToContext converts the wire form into a domain context.
func (w ContextWire) ToContext() (domain.Context, error) {
	if w.ID > WireNumber(domain.MaxContextID) {
		return domain.Context{}, fmt.Errorf("%w: context id %d out of range", domain.ErrMalformedOutput, w.ID)
	}
	desc, err := format.HexToUTF8(w.Desc)
	if err != nil {
		return domain.Context{}, fmt.Errorf("%w: context %d desc: %v", domain.ErrMalformedOutput, w.ID, err)
	}
	ctx := domain.Context{
		ID:      uint8(w.ID),
		Desc:    desc,
		Actions: make([]domain.Action, 0, len(w.Actions)),
	}
	for _, aw := range w.Actions {
		act, err := aw.ToAction()
		if err != nil {
			return domain.Context{}, fmt.Errorf("context %d: %w", w.ID, err)
		}
		ctx.Actions = append(ctx.Actions, act)
	}
	return ctx, nil
}

// FromContext converts a domain context into its wire form.
func FromContext(c domain.Context) ContextWire {
	w := ContextWire{
		ID:      WireNumber(c.ID),
		Desc:    format.UTF8ToHex(c.Desc),
		Actions: make([]ActionWire, 0, len(c.Actions)),
	}
	for _, a := range c.Actions {
		w.Actions = append(w.Actions, FromAction(a))
	}
	return w
}
