package fixture_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/pkg/adapters/fixture"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	debotAddr   = domain.Address("0:" + strings.Repeat("1", 64))
	counterAddr = domain.Address("0:" + strings.Repeat("2", 64))
)

func loadCounter(t *testing.T) *fixture.Service {
	t.Helper()
	svc, err := fixture.Load("testdata/counter.yaml")
	require.NoError(t, err)
	return svc
}

func TestService_DebotGetters(t *testing.T) {
	svc := loadCounter(t)
	ctx := context.Background()
	assert.Equal(t, debotAddr, svc.Entry())

	t.Run("getVersion", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "getVersion", Emulate: true})
		require.NoError(t, err)
		v, err := dto.DecodeVersion(res.Output)
		require.NoError(t, err)
		assert.Equal(t, "Counter, version 1.2.0", v.String())
		assert.Equal(t, "737472616e676572", res.Account["name"])
	})

	t.Run("getDebotOptions", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "getDebotOptions"})
		require.NoError(t, err)
		assert.Equal(t, "0x7", res.Output["options"])
		assert.Nil(t, res.Account)

		opts, err := dto.DecodeOptions(res.Output)
		require.NoError(t, err)
		require.NotNil(t, opts.ABI)
		assert.Contains(t, *opts.ABI, "setName")
		require.NotNil(t, opts.TargetABI)
		assert.Contains(t, *opts.TargetABI, "increment")
		require.NotNil(t, opts.TargetAddr)
		assert.Equal(t, counterAddr, *opts.TargetAddr)
	})

	t.Run("fetch", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "fetch"})
		require.NoError(t, err)
		graph, err := dto.DecodeGraph(res.Output)
		require.NoError(t, err)
		require.Len(t, graph, 3)
		assert.Equal(t, "Counter debot", graph[0].Desc)
		first := graph[0].Actions[0]
		assert.True(t, first.Instant)
		assert.Equal(t, domain.Print{FormatArgs: "welcomeArgs"}, first.Kind)
		assert.Equal(t, domain.StateExit, graph[0].Actions[6].To)
		assert.Equal(t, domain.StatePrev, graph[1].Actions[1].To)
	})

	t.Run("getErrorDescription", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "getErrorDescription", Args: map[string]any{"error": int64(101)}})
		require.NoError(t, err)
		assert.Equal(t, "636f756e746572206973206c6f636b6564", res.Output["desc"])

		_, err = svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "getErrorDescription", Args: map[string]any{"error": 7}})
		assert.Error(t, err)
	})
}

func TestService_ScriptedFunctions(t *testing.T) {
	svc := loadCounter(t)
	ctx := context.Background()

	t.Run("Emulation does not persist", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{
			Address:  debotAddr,
			Function: "setName",
			Args:     map[string]any{"name": "426f62"},
			State:    domain.AccountState{"name": "00"},
			Emulate:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "426f62", res.Account["name"])
		assert.Equal(t, "737472616e676572", svc.Account(debotAddr)["name"])
	})

	t.Run("Templates read state", func(t *testing.T) {
		res, err := svc.RunLocal(ctx, ports.LocalCall{
			Address:  debotAddr,
			Function: "welcomeArgs",
			State:    domain.AccountState{"name": "426f62"},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"str0": "426f62"}, res.Output)
	})

	t.Run("Wrong data format", func(t *testing.T) {
		_, err := svc.RunLocal(ctx, ports.LocalCall{
			Address:  debotAddr,
			Function: "setName",
			Args:     map[string]any{"name": "not hex"},
		})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Contains(t, callErr.Message, "Wrong data format")
	})

	t.Run("Scripted error", func(t *testing.T) {
		_, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "reset"})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, fixture.CodeContractException, callErr.Code)
		assert.Equal(t, 101, callErr.Data["exit_code"])
	})

	t.Run("Unknown function", func(t *testing.T) {
		_, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "nope"})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, fixture.CodeFunctionNotFound, callErr.Code)
	})

	t.Run("Unknown account", func(t *testing.T) {
		_, err := svc.RunLocal(ctx, ports.LocalCall{Address: domain.Address("0:" + strings.Repeat("9", 64)), Function: "fetch"})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, fixture.CodeAccountNotFound, callErr.Code)
	})
}

func TestService_Messages(t *testing.T) {
	svc := loadCounter(t)
	ctx := context.Background()
	counterABI := svc.ABI(counterAddr)

	res, err := svc.RunLocal(ctx, ports.LocalCall{Address: debotAddr, Function: "sendIncrement", Emulate: true})
	require.NoError(t, err)
	body, err := base64.StdEncoding.DecodeString(res.Output["body"].(string))
	require.NoError(t, err)

	_, err = svc.DecodeInputBody(ctx, svc.ABI(debotAddr), body)
	assert.Error(t, err, "increment is not part of the debot abi")

	decoded, err := svc.DecodeInputBody(ctx, counterABI, body)
	require.NoError(t, err)
	assert.Equal(t, "increment", decoded.Function)
	assert.Equal(t, map[string]any{"delta": "0x1"}, decoded.Args)

	keys := &domain.KeyPair{Secret: strings.Repeat("ab", 32)}
	msg, err := svc.CreateMessage(ctx, counterAddr, counterABI, decoded.Function, decoded.Args, keys)
	require.NoError(t, err)
	msg, err = svc.AttachInitialState(ctx, msg, []byte{1, 2, 3})
	require.NoError(t, err)

	out, err := svc.SubmitMessage(ctx, msg, counterABI, decoded.Function)
	require.NoError(t, err)
	assert.Nil(t, out)

	subs := svc.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, counterAddr, subs[0].Dest)
	assert.True(t, subs[0].Signed)
	assert.Equal(t, []byte{1, 2, 3}, subs[0].State)
	assert.Equal(t, "0x1", svc.Account(counterAddr)["count"])

	// Re-submitting a processed message fails.
	_, err = svc.SubmitMessage(ctx, msg, counterABI, decoded.Function)
	assert.Error(t, err)

	_, err = svc.CreateMessage(ctx, counterAddr, counterABI, "increment", nil, &domain.KeyPair{Secret: "zz"})
	assert.Error(t, err)
}

func TestService_QueryAccounts(t *testing.T) {
	svc := loadCounter(t)

	accounts, err := svc.QueryAccounts(context.Background(),
		map[string]any{"id": map[string]any{"eq": string(counterAddr)}},
		"acc_type_name balance",
	)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, map[string]any{"acc_type_name": "Active", "balance": "0x3b9aca00"}, accounts[0])

	none, err := svc.QueryAccounts(context.Background(),
		map[string]any{"id": map[string]any{"eq": string(debotAddr)}}, "balance")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"No contracts", "contracts: []"},
		{"Bad address", "contracts:\n  - address: nope"},
		{"Duplicate", "contracts:\n  - address: \"0:" + strings.Repeat("1", 64) + "\"\n  - address: \"0:" + strings.Repeat("1", 64) + "\""},
		{"Bad kind", "contracts:\n  - address: \"0:" + strings.Repeat("1", 64) + "\"\n    contexts:\n      - id: 0\n        actions:\n          - name: x\n            kind: teleport"},
		{"Bad target state", "contracts:\n  - address: \"0:" + strings.Repeat("1", 64) + "\"\n    contexts:\n      - id: 0\n        actions:\n          - name: x\n            to: somewhere"},
		{"Unknown entry", "entry: \"0:" + strings.Repeat("2", 64) + "\"\ncontracts:\n  - address: \"0:" + strings.Repeat("1", 64) + "\""},
		{"Invalid abi", "contracts:\n  - address: \"0:" + strings.Repeat("1", 64) + "\"\n    abi: \"{not json\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.ParseFile([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
