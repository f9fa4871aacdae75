package runtime

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/aretw0/debot/pkg/domain"
)

type abiParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type abiFunction struct {
	Name   string     `json:"name"`
	Inputs []abiParam `json:"inputs"`
}

type abiDoc struct {
	Functions []abiFunction `json:"functions"`
}

// queryActionArgs builds the arguments of a RunAction call. A non-empty misc is
// passed through as is; otherwise the user is prompted once per ABI input.
func (e *Engine) queryActionArgs(ctx context.Context, act domain.Action) (map[string]any, error) {
	if act.HasMisc() {
		return map[string]any{"misc": act.Misc}, nil
	}

	var doc abiDoc
	if err := json.Unmarshal([]byte(e.abi), &doc); err != nil {
		return nil, fmt.Errorf("invalid debot abi: %w", err)
	}
	var fn *abiFunction
	for i := range doc.Functions {
		if doc.Functions[i].Name == act.Name {
			fn = &doc.Functions[i]
			break
		}
	}
	if fn == nil {
		return nil, fmt.Errorf("action not found")
	}

	args := make(map[string]any, len(fn.Inputs))
	for _, in := range fn.Inputs {
		value, err := e.browser.Input(ctx, in.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", in.Name, err)
		}
		if in.Type == "bytes" {
			value = hex.EncodeToString([]byte(value))
		}
		args[in.Name] = value
	}
	return args, nil
}
