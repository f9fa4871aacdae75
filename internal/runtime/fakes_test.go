package runtime_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
)

var (
	debotAddr  = domain.Address("0:" + strings.Repeat("1", 64))
	targetAddr = domain.Address("0:" + strings.Repeat("2", 64))
	nestedAddr = domain.Address("0:" + strings.Repeat("3", 64))
)

type handler func(call ports.LocalCall) (ports.LocalResult, error)

type submission struct {
	Msg      ports.EncodedMessage
	ABI      string
	Function string
	Args     map[string]any
	Keys     *domain.KeyPair
	State    []byte
}

// fakeService scripts debot functions by name. Emulated calls that do not set
// an account get the incoming state back, bumped by one "calls" counter.
type fakeService struct {
	handlers map[string]handler
	calls    []ports.LocalCall

	submitted    []submission
	pending      map[string]submission
	submitResult any
	submitErr    error
	createErr    error
}

func newFakeService(graph ...domain.Context) *fakeService {
	s := &fakeService{
		handlers: map[string]handler{},
		pending:  map[string]submission{},
	}
	s.on("getVersion", func(call ports.LocalCall) (ports.LocalResult, error) {
		return ports.LocalResult{
			Output:  map[string]any{"name": format.UTF8ToHex("Test"), "semver": "0x010203"},
			Account: domain.AccountState{"balance": "100"},
		}, nil
	})
	s.options(map[string]any{"options": "0x0"})
	s.graph(graph...)
	return s
}

func (s *fakeService) on(function string, h handler) {
	s.handlers[function] = h
}

// returns registers a function that always yields output.
func (s *fakeService) returns(function string, output map[string]any) {
	s.on(function, func(ports.LocalCall) (ports.LocalResult, error) {
		return ports.LocalResult{Output: output}, nil
	})
}

// fails registers a function that always fails with err.
func (s *fakeService) fails(function string, err error) {
	s.on(function, func(ports.LocalCall) (ports.LocalResult, error) {
		return ports.LocalResult{}, err
	})
}

func (s *fakeService) options(output map[string]any) {
	s.returns("getDebotOptions", output)
}

func (s *fakeService) graph(contexts ...domain.Context) {
	wires := make([]dto.ContextWire, 0, len(contexts))
	for _, c := range contexts {
		wires = append(wires, dto.FromContext(c))
	}
	out, err := dto.ToMap(struct {
		Contexts []dto.ContextWire `json:"contexts"`
	}{wires})
	if err != nil {
		panic(err)
	}
	s.returns("fetch", out)
}

func (s *fakeService) callsTo(function string) []ports.LocalCall {
	var out []ports.LocalCall
	for _, c := range s.calls {
		if c.Function == function {
			out = append(out, c)
		}
	}
	return out
}

func (s *fakeService) RunLocal(_ context.Context, call ports.LocalCall) (ports.LocalResult, error) {
	s.calls = append(s.calls, call)
	h, ok := s.handlers[call.Function]
	if !ok {
		return ports.LocalResult{}, &domain.CallError{Message: "function not found: " + call.Function, Code: 414}
	}
	res, err := h(call)
	if err != nil {
		return ports.LocalResult{}, err
	}
	if call.Emulate && res.Account == nil {
		next := call.State.Clone()
		if next == nil {
			next = domain.AccountState{}
		}
		n, _ := next["calls"].(float64)
		next["calls"] = n + 1
		res.Account = next
	}
	if res.Output == nil {
		res.Output = map[string]any{}
	}
	return res, nil
}

func (s *fakeService) CreateMessage(_ context.Context, addr domain.Address, abi, function string, args map[string]any, keys *domain.KeyPair) (ports.EncodedMessage, error) {
	if s.createErr != nil {
		return ports.EncodedMessage{}, s.createErr
	}
	msg := ports.EncodedMessage{ID: fmt.Sprintf("msg-%d", len(s.pending)+1), Body: []byte(function)}
	s.pending[msg.ID] = submission{Msg: msg, ABI: abi, Function: function, Args: args, Keys: keys}
	return msg, nil
}

func (s *fakeService) AttachInitialState(_ context.Context, msg ports.EncodedMessage, state []byte) (ports.EncodedMessage, error) {
	sub := s.pending[msg.ID]
	sub.State = state
	s.pending[msg.ID] = sub
	return msg, nil
}

// DecodeInputBody expects bodies produced by messageBody and requires the
// function to be named in the ABI.
func (s *fakeService) DecodeInputBody(_ context.Context, abi string, body []byte) (ports.DecodedBody, error) {
	var decoded ports.DecodedBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ports.DecodedBody{}, err
	}
	if !strings.Contains(abi, fmt.Sprintf("%q", decoded.Function)) {
		return ports.DecodedBody{}, fmt.Errorf("function %s is not in abi", decoded.Function)
	}
	return decoded, nil
}

func (s *fakeService) SubmitMessage(_ context.Context, msg ports.EncodedMessage, _ string, _ string) (any, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.submitted = append(s.submitted, s.pending[msg.ID])
	return s.submitResult, nil
}

func (s *fakeService) QueryAccounts(context.Context, map[string]any, string) ([]map[string]any, error) {
	return nil, nil
}

// messageBody encodes a body the fake service can decode.
func messageBody(function string, args map[string]any) string {
	data, _ := json.Marshal(ports.DecodedBody{Function: function, Args: args})
	return base64.StdEncoding.EncodeToString(data)
}

type invocation struct {
	Addr   domain.Address
	Action domain.Action
}

type fakeBrowser struct {
	states  []domain.StateID
	logs    []string
	shown   []domain.Action
	inputs  []string
	prompts []string
	keys    domain.KeyPair
	loaded  int
	invoked []invocation
}

func (b *fakeBrowser) SwitchState(_ context.Context, state domain.StateID) {
	b.states = append(b.states, state)
}

func (b *fakeBrowser) Log(_ context.Context, msg string) {
	b.logs = append(b.logs, msg)
}

func (b *fakeBrowser) ShowAction(_ context.Context, action domain.Action) {
	b.shown = append(b.shown, action)
}

func (b *fakeBrowser) Input(_ context.Context, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	if len(b.inputs) == 0 {
		return "", fmt.Errorf("no input left")
	}
	v := b.inputs[0]
	b.inputs = b.inputs[1:]
	return v, nil
}

func (b *fakeBrowser) LoadKey(context.Context) (domain.KeyPair, error) {
	b.loaded++
	return b.keys, nil
}

func (b *fakeBrowser) InvokeDebot(_ context.Context, addr domain.Address, action domain.Action) error {
	b.invoked = append(b.invoked, invocation{Addr: addr, Action: action})
	return nil
}

func (b *fakeBrowser) shownNames() []string {
	names := make([]string, 0, len(b.shown))
	for _, a := range b.shown {
		names = append(names, a.Name)
	}
	return names
}

func (b *fakeBrowser) logged(prefix string) bool {
	for _, l := range b.logs {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

type fakeRoutines struct {
	name string
	args string
	keys *domain.KeyPair
	out  string
	err  error
}

func (r *fakeRoutines) Call(_ context.Context, name, args string, keys *domain.KeyPair) (string, error) {
	r.name, r.args, r.keys = name, args, keys
	return r.out, r.err
}

func act(name string, code uint8, to domain.StateID, attrs string) domain.Action {
	return domain.NewAction(name, "", to, code, attrs, "")
}
