package runtime_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/internal/runtime"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failurePrefix = "Action failed: "

// twoMenus builds a graph where context 1 holds the actions under test and is
// entered from context 0, so failures have a previous context to fall back to.
func twoMenus(actions ...domain.Action) []domain.Context {
	return []domain.Context{
		{ID: 0, Desc: "Root", Actions: []domain.Action{act("open", domain.CodeGoto, domain.ContextID(1), "")}},
		{ID: 1, Desc: "Actions", Actions: actions},
	}
}

func startAt1(t *testing.T, svc *fakeService, b *fakeBrowser, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	engine := newEngine(svc, b, opts...)
	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))
	require.NoError(t, engine.ExecuteAction(ctx, engine.Graph()[0].Actions[0]))
	require.Equal(t, domain.ContextID(1), engine.CurrentState())
	return engine
}

func TestDispatch_PrintWithFormatArgs(t *testing.T) {
	greet := act("Hello, {}! You have {} tokens", domain.CodePrint, domain.StateCurrent, "fargs=getGreeting")
	svc := newFakeService(twoMenus(greet)...)
	svc.returns("getGreeting", map[string]any{
		"str0":    format.UTF8ToHex("Alice"),
		"number1": "0x2a",
	})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), greet))

	assert.Contains(t, b.logs, "Hello, Alice! You have 42 tokens")
	calls := svc.callsTo("getGreeting")
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Emulate)
	assert.Empty(t, calls[0].Args)
}

func TestDispatch_RunActionMiscPassthrough(t *testing.T) {
	const misc = "te6ccgEBAQEABgAACAAAAAE="
	run := domain.NewAction("setValue", "", domain.StateCurrent, domain.CodeRunAction, "", misc)
	svc := newFakeService(twoMenus(run)...)
	svc.returns("setValue", map[string]any{})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), run))

	assert.Empty(t, b.prompts)
	calls := svc.callsTo("setValue")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"misc": misc}, calls[0].Args)
}

func TestDispatch_RunActionPromptsForInputs(t *testing.T) {
	const abi = `{"ABI version": 2, "functions": [
		{"name": "setName", "inputs": [{"name": "name", "type": "bytes"}, {"name": "age", "type": "uint32"}], "outputs": []}
	]}`
	run := act("setName", domain.CodeRunAction, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(run)...)
	svc.returns("setName", map[string]any{})
	b := &fakeBrowser{inputs: []string{"abc", "30"}}
	engine := startAt1(t, svc, b, runtime.WithABI(abi))

	require.NoError(t, engine.ExecuteAction(context.Background(), run))

	assert.Equal(t, []string{"name", "age"}, b.prompts)
	calls := svc.callsTo("setName")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"name": "616263", "age": "30"}, calls[0].Args)
	assert.Equal(t, abi, calls[0].ABI)
}

func TestDispatch_RunActionUnknownFunction(t *testing.T) {
	run := act("missing", domain.CodeRunAction, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(run)...)
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), run))

	assert.Contains(t, b.logs, "Action failed: action not found. Return to previous state.\n")
	assert.Equal(t, domain.StateZero, engine.CurrentState())
}

func TestDispatch_RunActionFollowUps(t *testing.T) {
	setup := domain.NewAction("setup", "", domain.StateCurrent, domain.CodeRunAction, "instant", "te6ccgEBAQEABgAACAAAAAE=")
	svc := newFakeService(domain.Context{ID: 0, Actions: []domain.Action{setup}})

	wires := []any{}
	for _, a := range []domain.Action{
		act("Generated", domain.CodeEmpty, domain.StateCurrent, ""),
		act("Also generated", domain.CodeGoto, domain.StateExit, ""),
	} {
		m, err := dto.ToMap(dto.FromAction(a))
		require.NoError(t, err)
		wires = append(wires, m)
	}
	svc.returns("setup", map[string]any{"actions": wires})
	b := &fakeBrowser{}
	engine := newEngine(svc, b)

	require.NoError(t, engine.Start(context.Background()))

	assert.Equal(t, []string{"Generated", "Also generated"}, b.shownNames())
}

func TestDispatch_InvalidParameter(t *testing.T) {
	run := domain.NewAction("setValue", "", domain.StateCurrent, domain.CodeRunAction, "", "te6ccgEBAQEABgAACAAAAAE=")
	svc := newFakeService(twoMenus(run)...)
	svc.fails("setValue", &domain.CallError{Message: "Wrong data format: expected uint32", Code: 3012})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), run))

	assert.Contains(t, b.logs, "Action failed: invalid parameter. Return to previous state.\n")
	assert.Equal(t, domain.StateZero, engine.CurrentState())
	assert.Equal(t, domain.ContextID(1), engine.PreviousState())
	assert.Equal(t, []domain.StateID{domain.StateZero, domain.ContextID(1), domain.StateZero}, b.states)
}

func TestDispatch_ContractExceptionDescription(t *testing.T) {
	run := domain.NewAction("withdraw", "", domain.StateCurrent, domain.CodeRunAction, "", "te6ccgEBAQEABgAACAAAAAE=")
	exception := &domain.CallError{
		Message: "Contract execution was terminated with error",
		Code:    runtime.CodeContractException,
		Data:    map[string]any{"exit_code": float64(101)},
	}

	t.Run("Described by debot", func(t *testing.T) {
		svc := newFakeService(twoMenus(run)...)
		svc.fails("withdraw", exception)
		svc.on("getErrorDescription", func(call ports.LocalCall) (ports.LocalResult, error) {
			assert.Equal(t, map[string]any{"error": int64(101)}, call.Args)
			return ports.LocalResult{Output: map[string]any{"desc": format.UTF8ToHex("Not enough funds")}}, nil
		})
		b := &fakeBrowser{}
		engine := startAt1(t, svc, b)

		require.NoError(t, engine.ExecuteAction(context.Background(), run))
		assert.Contains(t, b.logs, "Action failed: Not enough funds. Return to previous state.\n")
	})

	t.Run("Lookup fails", func(t *testing.T) {
		svc := newFakeService(twoMenus(run)...)
		svc.fails("withdraw", exception)
		b := &fakeBrowser{}
		engine := startAt1(t, svc, b)

		require.NoError(t, engine.ExecuteAction(context.Background(), run))
		assert.Contains(t, b.logs, "Action failed: Contract execution was terminated with error. Return to previous state.\n")
	})

	t.Run("No exit code", func(t *testing.T) {
		svc := newFakeService(twoMenus(run)...)
		svc.fails("withdraw", &domain.CallError{Message: "Contract execution was terminated with error", Code: runtime.CodeContractException})
		b := &fakeBrowser{}
		engine := startAt1(t, svc, b)

		require.NoError(t, engine.ExecuteAction(context.Background(), run))
		assert.Contains(t, b.logs, "Action failed: Contract execution was terminated with error. Return to previous state.\n")
		assert.Empty(t, svc.callsTo("getErrorDescription"))
	})
}

func TestDispatch_SendMsgSelfDecodeFailure(t *testing.T) {
	send := act("buildMsg", domain.CodeSendMsg, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(send)...)
	svc.returns("buildMsg", map[string]any{
		"dest": string(debotAddr),
		"body": messageBody("notInDefaultAbi", nil),
	})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), send))

	require.True(t, b.logged(failurePrefix+"failed to decode msg body"), b.logs)
	assert.Empty(t, svc.submitted)
	assert.Equal(t, domain.StateZero, engine.CurrentState())
}

func TestDispatch_SendMsgToTarget(t *testing.T) {
	const targetABI = `{"functions": [{"name": "transfer", "inputs": [], "outputs": []}]}`
	send := domain.NewAction("buildTransfer", "", domain.StateCurrent, domain.CodeSendMsg, "sign=by_user", "te6ccgEBAQEABgAACAAAAAE=")
	svc := newFakeService(twoMenus(send)...)
	svc.options(map[string]any{
		"options":    "0x6",
		"targetAbi":  format.UTF8ToHex(targetABI),
		"targetAddr": string(targetAddr),
	})
	state := []byte("state-init")
	svc.returns("buildTransfer", map[string]any{
		"dest":  string(targetAddr),
		"body":  messageBody("transfer", map[string]any{"amount": "10"}),
		"state": base64.StdEncoding.EncodeToString(state),
	})
	svc.submitResult = map[string]any{"ok": true}
	keys := domain.KeyPair{Public: "aa", Secret: "bb"}
	b := &fakeBrowser{keys: keys}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), send))

	assert.Equal(t, 1, b.loaded)
	require.Len(t, svc.submitted, 1)
	sub := svc.submitted[0]
	assert.Equal(t, "transfer", sub.Function)
	assert.Equal(t, targetABI, sub.ABI)
	assert.Equal(t, map[string]any{"amount": "10"}, sub.Args)
	assert.Equal(t, &keys, sub.Keys)
	assert.Equal(t, state, sub.State)

	assert.Contains(t, b.logs, "sending message msg-1")
	assert.Contains(t, b.logs, "Transaction succeeded.")
	assert.Contains(t, b.logs, `Result: {"ok":true}`)
	assert.Equal(t, domain.ContextID(1), engine.CurrentState())

	calls := svc.callsTo("buildTransfer")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"misc": "te6ccgEBAQEABgAACAAAAAE="}, calls[0].Args)
}

func TestDispatch_SendMsgCreateFailure(t *testing.T) {
	send := act("buildMsg", domain.CodeSendMsg, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(send)...)
	svc.returns("buildMsg", map[string]any{
		"dest": string(debotAddr),
		"body": messageBody("getVersion", nil),
	})
	svc.createErr = &domain.CallError{Message: "invalid signing box"}
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), send))

	assert.Contains(t, b.logs, "Action failed: failed to create message. Return to previous state.\n")
}

func TestDispatch_TargetAddressOnly(t *testing.T) {
	method := act("onBalance", domain.CodeRunMethod, domain.StateCurrent, "func=getBalance")
	describe := act("getErrorDescription", domain.CodeRunAction, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(describe, method)...)
	svc.options(map[string]any{"options": "0x4", "targetAddr": string(targetAddr)})
	svc.returns("getErrorDescription", map[string]any{"desc": format.UTF8ToHex("none")})
	b := &fakeBrowser{inputs: []string{"7"}}
	engine := startAt1(t, svc, b)

	addr, abi := engine.Target()
	require.NotNil(t, addr)
	assert.Equal(t, targetAddr, *addr)
	assert.Nil(t, abi)

	// Self calls still prompt and run against the default debot ABI.
	require.NoError(t, engine.ExecuteAction(context.Background(), describe))
	assert.Equal(t, []string{"error"}, b.prompts)
	calls := svc.callsTo("getErrorDescription")
	require.Len(t, calls, 1)
	assert.Equal(t, domain.DefaultDebotABI, calls[0].ABI)
	assert.Equal(t, debotAddr, calls[0].Address)
	assert.Equal(t, map[string]any{"error": "7"}, calls[0].Args)
	assert.Equal(t, domain.ContextID(1), engine.CurrentState())

	require.NoError(t, engine.ExecuteAction(context.Background(), method))
	assert.Contains(t, b.logs, "Action failed: target abi is undefined. Return to previous state.\n")
}

func TestDispatch_RunMethod(t *testing.T) {
	const targetABI = `{"functions": [{"name": "getBalance", "inputs": [], "outputs": []}]}`
	method := act("onBalance", domain.CodeRunMethod, domain.StateCurrent, "func=getBalance,args=balanceArgs")
	svc := newFakeService(twoMenus(method)...)
	svc.options(map[string]any{
		"options":    "0x6",
		"targetAbi":  format.UTF8ToHex(targetABI),
		"targetAddr": string(targetAddr),
	})
	svc.returns("balanceArgs", map[string]any{"owner": "0x1"})
	svc.on("getBalance", func(call ports.LocalCall) (ports.LocalResult, error) {
		assert.Equal(t, targetAddr, call.Address)
		assert.Nil(t, call.State)
		assert.False(t, call.Emulate)
		assert.Equal(t, map[string]any{"owner": "0x1"}, call.Args)
		return ports.LocalResult{Output: map[string]any{"value0": "0x64"}}, nil
	})
	svc.returns("onBalance", map[string]any{})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), method))

	handler := svc.callsTo("onBalance")
	require.Len(t, handler, 1)
	assert.Equal(t, map[string]any{"value0": "0x64"}, handler[0].Args)
	assert.Equal(t, debotAddr, handler[0].Address)
	assert.Equal(t, domain.ContextID(1), engine.CurrentState())
}

func TestDispatch_RunMethodWithoutHandler(t *testing.T) {
	const targetABI = `{"functions": [{"name": "getBalance", "inputs": [], "outputs": []}]}`
	method := act("", domain.CodeRunMethod, domain.StateCurrent, "func=getBalance")
	svc := newFakeService(twoMenus(method)...)
	svc.options(map[string]any{
		"options":    "0x6",
		"targetAbi":  format.UTF8ToHex(targetABI),
		"targetAddr": string(targetAddr),
	})
	svc.returns("getBalance", map[string]any{"value0": "0x64"})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), method))

	assert.True(t, b.logged(failurePrefix+"malformed debot output"))
	assert.Empty(t, svc.callsTo("getBalance"))
	assert.Empty(t, svc.callsTo(""))
	assert.Equal(t, domain.StateZero, engine.CurrentState())
}

func TestDispatch_Invoke(t *testing.T) {
	invoke := act("startNested", domain.CodeInvoke, domain.StateCurrent, "")
	svc := newFakeService(twoMenus(invoke)...)
	nested := act("nestedEntry", domain.CodeRunAction, domain.StateExit, "")
	wire, err := dto.ToMap(dto.FromAction(nested))
	require.NoError(t, err)
	svc.returns("startNested", map[string]any{"debot": string(nestedAddr), "action": wire})
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), invoke))

	require.Len(t, b.invoked, 1)
	assert.Equal(t, nestedAddr, b.invoked[0].Addr)
	assert.Equal(t, "nestedEntry", b.invoked[0].Action.Name)
	assert.Equal(t, domain.StateExit, b.invoked[0].Action.To)
}

func TestDispatch_CallEngine(t *testing.T) {
	t.Run("Getter and setter", func(t *testing.T) {
		call := act("getBalance", domain.CodeCallEngine, domain.StateCurrent, "instant,args=balanceQuery,func=setBalance")
		svc := newFakeService(domain.Context{ID: 0, Actions: []domain.Action{call}})
		svc.returns("balanceQuery", map[string]any{"addr": string(targetAddr)})
		svc.returns("setBalance", map[string]any{})
		reg := &fakeRoutines{out: "1500"}
		engine := newEngine(svc, &fakeBrowser{}, runtime.WithRoutines(reg))

		require.NoError(t, engine.Start(context.Background()))

		assert.Equal(t, "getBalance", reg.name)
		assert.JSONEq(t, `{"addr":"`+string(targetAddr)+`"}`, reg.args)
		assert.Nil(t, reg.keys)
		setter := svc.callsTo("setBalance")
		require.Len(t, setter, 1)
		assert.Equal(t, map[string]any{"arg1": "1500"}, setter[0].Args)
	})

	t.Run("Desc as arguments", func(t *testing.T) {
		call := domain.NewAction("convertTokens", "1.5", domain.StateCurrent, domain.CodeCallEngine, "func=setTokens,sign=by_user", "")
		svc := newFakeService(domain.Context{ID: 0, Actions: []domain.Action{call}})
		svc.returns("setTokens", map[string]any{})
		reg := &fakeRoutines{out: "1500000000"}
		b := &fakeBrowser{keys: domain.KeyPair{Public: "01", Secret: "02"}}
		engine := newEngine(svc, b, runtime.WithRoutines(reg))

		require.NoError(t, engine.Start(context.Background()))

		assert.Equal(t, "1.5", reg.args)
		require.NotNil(t, reg.keys)
		assert.Equal(t, "01", reg.keys.Public)
		// CallEngine runs silently, never presented.
		assert.Empty(t, b.shown)
	})

	t.Run("Missing setter", func(t *testing.T) {
		call := act("convertTokens", domain.CodeCallEngine, domain.StateCurrent, "")
		// Context 2 is never entered, so the routine only runs when executed.
		graph := append(twoMenus(act("noop", domain.CodeEmpty, domain.StateCurrent, "")),
			domain.Context{ID: 2, Actions: []domain.Action{call}})
		svc := newFakeService(graph...)
		reg := &fakeRoutines{out: "1"}
		b := &fakeBrowser{}
		engine := startAt1(t, svc, b, runtime.WithRoutines(reg))

		require.NoError(t, engine.ExecuteAction(context.Background(), call))

		assert.Equal(t, "convertTokens", reg.name)
		assert.True(t, b.logged(failurePrefix+"routine callback is not specified"))
		assert.Equal(t, domain.StateZero, engine.CurrentState())
		assert.Equal(t, domain.ContextID(1), engine.PreviousState())
	})
}

func TestDispatch_Unsupported(t *testing.T) {
	odd := domain.NewAction("odd", "", domain.StateCurrent, 9, "", "")
	svc := newFakeService(twoMenus(odd)...)
	b := &fakeBrowser{}
	engine := startAt1(t, svc, b)

	require.NoError(t, engine.ExecuteAction(context.Background(), odd))

	assert.Contains(t, b.logs, "unsupported action type")
	assert.True(t, b.logged(failurePrefix+"unsupported action type"))
	assert.Equal(t, domain.StateZero, engine.CurrentState())
}
