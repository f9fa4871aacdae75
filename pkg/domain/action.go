package domain

import (
	"fmt"
	"strings"
)

// EmptyCell is the serialized empty cell debots use as the "no misc" marker.
const EmptyCell = "te6ccgEBAQEAAgAAAA=="

// Kind codes as declared by debot contracts.
const (
	CodeEmpty      uint8 = 0
	CodeRunAction  uint8 = 1
	CodeRunMethod  uint8 = 2
	CodeSendMsg    uint8 = 3
	CodeInvoke     uint8 = 4
	CodePrint      uint8 = 5
	CodeGoto       uint8 = 6
	CodeCallEngine uint8 = 10
)

// Kind is the closed set of action variants. Only types in this package implement it.
type Kind interface {
	// Code returns the numeric kind used on the wire.
	Code() uint8
	kind()
}

// Empty does nothing.
type Empty struct{}

// RunAction calls the debot function named by the action and replays any
// actions it returns.
type RunAction struct{}

// RunMethod calls Method on the target contract and hands its output to the
// debot function named by the action.
type RunMethod struct {
	Method string // func= attribute
	Getter string // args= attribute, optional
}

// SendMsg builds, signs and submits a message described by a debot function.
type SendMsg struct {
	SignByUser bool
}

// Invoke starts a nested debot session.
type Invoke struct{}

// Print logs the action name, optionally formatted with FormatArgs output.
type Print struct {
	FormatArgs string // fargs= attribute, optional
}

// Goto only transitions.
type Goto struct{}

// CallEngine runs a local routine and passes its result to Setter.
type CallEngine struct {
	Getter     string // args= attribute, optional
	Setter     string // func= attribute, required at execution time
	SignByUser bool
}

// Unsupported carries an unrecognized kind code.
type Unsupported struct {
	Raw uint8
}

func (Empty) Code() uint8 { return CodeEmpty }
func (RunAction) Code() uint8 { return CodeRunAction }
func (RunMethod) Code() uint8 { return CodeRunMethod }
func (SendMsg) Code() uint8 { return CodeSendMsg }
func (Invoke) Code() uint8 { return CodeInvoke }
func (Print) Code() uint8 { return CodePrint }
func (Goto) Code() uint8 { return CodeGoto }
func (CallEngine) Code() uint8 { return CodeCallEngine }
func (u Unsupported) Code() uint8 { return u.Raw }

func (Empty) kind() {}
func (RunAction) kind() {}
func (RunMethod) kind() {}
func (SendMsg) kind() {}
func (Invoke) kind() {}
func (Print) kind() {}
func (Goto) kind() {}
func (CallEngine) kind() {}
func (Unsupported) kind() {}

// KindName returns a stable lowercase label, used for logs and metrics.
func KindName(k Kind) string {
	switch k.(type) {
	case Empty:
		return "empty"
	case RunAction:
		return "run_action"
	case RunMethod:
		return "run_method"
	case SendMsg:
		return "send_msg"
	case Invoke:
		return "invoke"
	case Print:
		return "print"
	case Goto:
		return "goto"
	case CallEngine:
		return "call_engine"
	default:
		return "unsupported"
	}
}

// Action is a unit of work attached to a context.
type Action struct {
	Name    string
	Desc    string
	To      StateID
	Kind    Kind
	Misc    string
	Instant bool

	// Attrs is the attribute string the action was decoded from, kept so the
	// action can be handed to a nested session unchanged.
	Attrs string
}

// HasMisc reports whether Misc carries something other than the empty cell.
func (a Action) HasMisc() bool {
	return a.Misc != "" && a.Misc != EmptyCell
}

// IsEngineCall reports whether the action runs without user interaction but
// does not request a transition.
func (a Action) IsEngineCall() bool {
	_, ok := a.Kind.(CallEngine)
	return ok
}

// SignByUser reports whether the action needs a key pair from the front end.
func (a Action) SignByUser() bool {
	switch k := a.Kind.(type) {
	case SendMsg:
		return k.SignByUser
	case CallEngine:
		return k.SignByUser
	}
	return false
}

// ArgsGetter returns the debot function that computes call arguments, if any.
func (a Action) ArgsGetter() (string, bool) {
	switch k := a.Kind.(type) {
	case RunMethod:
		return k.Getter, k.Getter != ""
	case CallEngine:
		return k.Getter, k.Getter != ""
	}
	return "", false
}

// ResultHandler returns the debot function that interprets a RunMethod result.
func (a Action) ResultHandler() (string, bool) {
	if _, ok := a.Kind.(RunMethod); ok {
		return a.Name, a.Name != ""
	}
	return "", false
}

// FormatArgs returns the debot function that produces Print template parameters.
func (a Action) FormatArgs() (string, bool) {
	if k, ok := a.Kind.(Print); ok {
		return k.FormatArgs, k.FormatArgs != ""
	}
	return "", false
}

// Attributes is the parsed form of an action attribute string such as
// "instant,func=setValue,args=getArgs,sign=by_user".
type Attributes struct {
	Instant    bool
	Func       string
	Args       string
	FormatArgs string
	SignByUser bool
}

// ParseAttributes splits a comma separated attribute string. Unknown entries are ignored.
func ParseAttributes(raw string) Attributes {
	var attrs Attributes
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")
		switch key {
		case "instant":
			attrs.Instant = true
		case "func":
			attrs.Func = value
		case "args":
			attrs.Args = value
		case "fargs":
			attrs.FormatArgs = value
		case "sign":
			attrs.SignByUser = value == "by_user"
		}
	}
	return attrs
}

// NewKind builds the variant for a wire kind code and its attributes.
func NewKind(code uint8, attrs Attributes) Kind {
	switch code {
	case CodeEmpty:
		return Empty{}
	case CodeRunAction:
		return RunAction{}
	case CodeRunMethod:
		return RunMethod{Method: attrs.Func, Getter: attrs.Args}
	case CodeSendMsg:
		return SendMsg{SignByUser: attrs.SignByUser}
	case CodeInvoke:
		return Invoke{}
	case CodePrint:
		return Print{FormatArgs: attrs.FormatArgs}
	case CodeGoto:
		return Goto{}
	case CodeCallEngine:
		return CallEngine{Getter: attrs.Args, Setter: attrs.Func, SignByUser: attrs.SignByUser}
	default:
		return Unsupported{Raw: code}
	}
}

// NewAction builds an action from its wire fields.
func NewAction(name, desc string, to StateID, code uint8, attrs, misc string) Action {
	parsed := ParseAttributes(attrs)
	if misc == "" {
		misc = EmptyCell
	}
	return Action{
		Name:    name,
		Desc:    desc,
		To:      to,
		Kind:    NewKind(code, parsed),
		Misc:    misc,
		Instant: parsed.Instant,
		Attrs:   attrs,
	}
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s) -> %s", KindName(a.Kind), a.Name, a.To)
}
