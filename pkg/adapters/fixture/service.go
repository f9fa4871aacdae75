package fixture

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/aretw0/debot/pkg/schema"
	"github.com/google/uuid"
)

// Error codes reported by the simulated service.
const (
	CodeAccountNotFound    = 404
	CodeFunctionNotFound   = 3014
	CodeWrongDataFormat    = 3012
	CodeContractException  = 3025
	CodeMessageDecodeError = 3015
)

// Submission records a processed external message.
type Submission struct {
	ID       string
	Dest     domain.Address
	Function string
	Args     map[string]any
	Signed   bool
	State    []byte
	Output   map[string]any
}

type pendingMessage struct {
	dest      domain.Address
	function  string
	args      map[string]any
	signature []byte
	state     []byte
}

// Service simulates the contract-call service from a fixture File.
// Safe for concurrent use.
type Service struct {
	file      *File
	contracts map[domain.Address]*Contract
	logger    *slog.Logger

	mu          sync.Mutex
	accounts    map[domain.Address]domain.AccountState
	pending     map[string]pendingMessage
	submissions []Submission
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a service from a parsed fixture.
func New(f *File, opts ...Option) *Service {
	s := &Service{
		file:      f,
		contracts: make(map[domain.Address]*Contract, len(f.Contracts)),
		logger:    logging.NewNop(),
		accounts:  make(map[domain.Address]domain.AccountState, len(f.Contracts)),
		pending:   make(map[string]pendingMessage),
	}
	for i := range f.Contracts {
		c := &f.Contracts[i]
		addr := domain.Address(c.Address)
		s.contracts[addr] = c
		state := domain.AccountState(c.State).Clone()
		if state == nil {
			state = domain.AccountState{}
		}
		s.accounts[addr] = state
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads a fixture file and creates a service from it.
func Load(path string, opts ...Option) (*Service, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(f, opts...), nil
}

// Entry returns the address of the debot a session starts with.
func (s *Service) Entry() domain.Address {
	return domain.Address(s.file.Entry)
}

// ABI returns the ABI declared for addr, or the default debot ABI.
func (s *Service) ABI(addr domain.Address) string {
	if c, ok := s.contracts[addr]; ok && c.ABI != "" {
		return c.ABI
	}
	return domain.DefaultDebotABI
}

// Submissions returns the messages processed so far.
func (s *Service) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Account returns a copy of the stored account state of addr.
func (s *Service) Account(addr domain.Address) domain.AccountState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[addr].Clone()
}

// RunLocal executes a scripted function. Emulated calls apply the function's
// account patch to the supplied state and return it; only submitted messages
// change stored accounts.
func (s *Service) RunLocal(ctx context.Context, call ports.LocalCall) (ports.LocalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[call.Address]
	if !ok {
		return ports.LocalResult{}, &domain.CallError{Message: "account not found: " + string(call.Address), Code: CodeAccountNotFound}
	}
	state := call.State
	if state == nil {
		state = s.accounts[call.Address]
	}
	s.logger.Debug("fixture call", "address", string(call.Address), "function", call.Function, "emulate", call.Emulate)

	output, patch, err := s.invoke(c, call.Function, call.Args, state)
	if err != nil {
		return ports.LocalResult{}, err
	}
	res := ports.LocalResult{Output: output}
	if call.Emulate {
		next := state.Clone()
		if next == nil {
			next = domain.AccountState{}
		}
		for k, v := range patch {
			next[k] = v
		}
		res.Account = next
	}
	return res, nil
}

// invoke resolves the scripted function or one of the built-in debot getters.
func (s *Service) invoke(c *Contract, function string, args map[string]any, state domain.AccountState) (map[string]any, map[string]any, error) {
	if fn, ok := c.Functions[function]; ok {
		return s.runScripted(fn, args, state)
	}
	switch function {
	case "getVersion":
		v, err := semver(c.Version)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{
			"name":   format.UTF8ToHex(c.Name),
			"semver": fmt.Sprintf("0x%06x", v),
		}, nil, nil
	case "getDebotOptions":
		return s.options(c), nil, nil
	case "fetch":
		return s.fetch(c)
	case "getErrorDescription":
		code, ok := intArg(args["error"])
		if !ok {
			return nil, nil, &domain.CallError{Message: "Wrong data format: error", Code: CodeWrongDataFormat}
		}
		desc, ok := c.Errors[int(code)]
		if !ok {
			return nil, nil, &domain.CallError{Message: fmt.Sprintf("no description for error %d", code), Code: CodeContractException}
		}
		return map[string]any{"desc": format.UTF8ToHex(desc)}, nil, nil
	}
	return nil, nil, &domain.CallError{
		Message: fmt.Sprintf("function %s is not found in contract %s", function, c.Address),
		Code:    CodeFunctionNotFound,
	}
}

func (s *Service) runScripted(fn Function, args map[string]any, state domain.AccountState) (map[string]any, map[string]any, error) {
	if fn.Error != nil {
		return nil, nil, &domain.CallError{Message: fn.Error.Message, Code: fn.Error.Code, Data: fn.Error.Data}
	}
	if err := schema.Validate(fn.Inputs, args); err != nil {
		return nil, nil, &domain.CallError{Message: "Wrong data format: " + err.Error(), Code: CodeWrongDataFormat}
	}
	data := map[string]any{"args": args, "state": map[string]any(state)}
	output, err := expand(fn.Output, data)
	if err != nil {
		return nil, nil, err
	}
	patch, err := expand(fn.Account, data)
	if err != nil {
		return nil, nil, err
	}
	return output, patch, nil
}

func (s *Service) options(c *Contract) map[string]any {
	var bits uint8
	out := map[string]any{}
	if c.ABI != "" {
		bits |= dto.OptionABI
		out["debotAbi"] = format.UTF8ToHex(c.ABI)
	}
	if c.Target != "" {
		if target, ok := s.contracts[domain.Address(c.Target)]; ok && target.ABI != "" {
			bits |= dto.OptionTargetABI
			out["targetAbi"] = format.UTF8ToHex(target.ABI)
		}
		bits |= dto.OptionTargetAddr
		out["targetAddr"] = c.Target
	}
	out["options"] = fmt.Sprintf("0x%x", bits)
	return out
}

func (s *Service) fetch(c *Contract) (map[string]any, map[string]any, error) {
	wires := make([]dto.ContextWire, 0, len(c.Contexts))
	for _, spec := range c.Contexts {
		ctx, err := spec.toContext()
		if err != nil {
			return nil, nil, err
		}
		wires = append(wires, dto.FromContext(ctx))
	}
	out, err := dto.ToMap(struct {
		Contexts []dto.ContextWire `json:"contexts"`
	}{wires})
	return out, nil, err
}

// CreateMessage builds a message whose body is the JSON {function, args}.
// With keys, the body is signed with the ed25519 secret seed.
func (s *Service) CreateMessage(ctx context.Context, addr domain.Address, abi, function string, args map[string]any, keys *domain.KeyPair) (ports.EncodedMessage, error) {
	if !abiHasFunction(abi, function) {
		return ports.EncodedMessage{}, &domain.CallError{Message: fmt.Sprintf("function %s is not found in abi", function), Code: CodeFunctionNotFound}
	}
	body, err := json.Marshal(ports.DecodedBody{Function: function, Args: args})
	if err != nil {
		return ports.EncodedMessage{}, err
	}
	pending := pendingMessage{dest: addr, function: function, args: args}
	if keys != nil {
		sig, err := sign(*keys, body)
		if err != nil {
			return ports.EncodedMessage{}, err
		}
		pending.signature = sig
	}

	msg := ports.EncodedMessage{ID: uuid.NewString(), Body: body}
	s.mu.Lock()
	s.pending[msg.ID] = pending
	s.mu.Unlock()
	return msg, nil
}

// AttachInitialState records a state init to deploy with the message.
func (s *Service) AttachInitialState(ctx context.Context, msg ports.EncodedMessage, state []byte) (ports.EncodedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[msg.ID]
	if !ok {
		return ports.EncodedMessage{}, fmt.Errorf("unknown message %s", msg.ID)
	}
	p.state = state
	s.pending[msg.ID] = p
	return msg, nil
}

// DecodeInputBody decodes a body built by CreateMessage, requiring the function
// to be declared in abi.
func (s *Service) DecodeInputBody(ctx context.Context, abi string, body []byte) (ports.DecodedBody, error) {
	var decoded ports.DecodedBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ports.DecodedBody{}, &domain.CallError{Message: "message body is not decodable: " + err.Error(), Code: CodeMessageDecodeError}
	}
	if !abiHasFunction(abi, decoded.Function) {
		return ports.DecodedBody{}, &domain.CallError{Message: fmt.Sprintf("function %s is not found in abi", decoded.Function), Code: CodeMessageDecodeError}
	}
	return decoded, nil
}

// SubmitMessage runs the message function on the destination as a real
// transaction and returns its output, or nil when it has none.
func (s *Service) SubmitMessage(ctx context.Context, msg ports.EncodedMessage, abi, function string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[msg.ID]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", msg.ID)
	}
	delete(s.pending, msg.ID)

	c, ok := s.contracts[p.dest]
	if !ok {
		if p.state == nil {
			return nil, &domain.CallError{Message: "account not found: " + string(p.dest), Code: CodeAccountNotFound}
		}
		// Deploying: the destination starts empty.
		c = &Contract{Address: string(p.dest)}
		s.contracts[p.dest] = c
		s.accounts[p.dest] = domain.AccountState{}
	}
	output, patch, err := s.invoke(c, p.function, p.args, s.accounts[p.dest])
	if err != nil {
		return nil, err
	}
	next := s.accounts[p.dest].Clone()
	if next == nil {
		next = domain.AccountState{}
	}
	for k, v := range patch {
		next[k] = v
	}
	s.accounts[p.dest] = next

	s.submissions = append(s.submissions, Submission{
		ID:       msg.ID,
		Dest:     p.dest,
		Function: p.function,
		Args:     p.args,
		Signed:   p.signature != nil,
		State:    p.state,
		Output:   output,
	})
	s.logger.Debug("message processed", "id", msg.ID, "dest", string(p.dest), "function", p.function)

	if len(output) == 0 {
		return nil, nil
	}
	return output, nil
}

// QueryAccounts supports the {"id": {"eq": addr}} filter over declared accounts.
func (s *Service) QueryAccounts(ctx context.Context, filter map[string]any, fields string) ([]map[string]any, error) {
	var want string
	if id, ok := filter["id"].(map[string]any); ok {
		want, _ = id["eq"].(string)
	}
	keep := strings.Fields(fields)

	var out []map[string]any
	for _, acc := range s.file.Accounts {
		if want != "" && fmt.Sprint(acc["id"]) != want {
			continue
		}
		rec := make(map[string]any, len(keep))
		for _, f := range keep {
			if v, ok := acc[f]; ok {
				rec[f] = v
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func intArg(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), n == float64(int64(n))
	case string:
		u, err := domain.ParseWireNumber(n)
		return int64(u), err == nil
	}
	return 0, false
}

// expand renders templated string values.
func expand(in map[string]any, data map[string]any) (map[string]any, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		str, ok := v.(string)
		if !ok || !strings.Contains(str, "{{") {
			out[k] = v
			continue
		}
		tmpl, err := template.New(k).Funcs(funcs).Option("missingkey=zero").Parse(str)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		// missingkey=zero still prints "<no value>" for absent map entries.
		out[k] = strings.ReplaceAll(buf.String(), "<no value>", "")
	}
	return out, nil
}

var funcs = template.FuncMap{
	// hex encodes text the way debots return strings.
	"hex": func(v any) string { return format.UTF8ToHex(fmt.Sprint(v)) },
	// unhex decodes debot hex strings, yielding "" on malformed input.
	"unhex": func(v any) string {
		s, err := format.HexToUTF8(fmt.Sprint(v))
		if err != nil {
			return ""
		}
		return s
	},
	// body builds a base64 message body: body "fn" "key" value ...
	"body": func(function string, kv ...any) (string, error) {
		if len(kv)%2 != 0 {
			return "", fmt.Errorf("body: odd number of key/value arguments")
		}
		args := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			args[fmt.Sprint(kv[i])] = kv[i+1]
		}
		data, err := json.Marshal(ports.DecodedBody{Function: function, Args: args})
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	},
	// add sums wire numbers and returns a 0x-prefixed hex result.
	"add": func(a, b any) string {
		x, _ := intArg(a)
		y, _ := intArg(b)
		return "0x" + strconv.FormatInt(x+y, 16)
	},
}

func abiHasFunction(abi, function string) bool {
	var doc struct {
		Functions []struct {
			Name string `json:"name"`
		} `json:"functions"`
	}
	if err := json.Unmarshal([]byte(abi), &doc); err != nil {
		return false
	}
	for _, f := range doc.Functions {
		if f.Name == function {
			return true
		}
	}
	return false
}

func sign(keys domain.KeyPair, body []byte) ([]byte, error) {
	seed, err := hex.DecodeString(keys.Secret)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid secret key")
	}
	return ed25519.Sign(ed25519.NewKeyFromSeed(seed), body), nil
}
