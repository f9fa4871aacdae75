package routines

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
)

// Names of the built-in routines.
const (
	NameConvertTokens   = "convertTokens"
	NameGetBalance      = "getBalance"
	NameLoadBocFromFile = "loadBocFromFile"
)

// nanoDigits is the number of fractional digits of a token amount.
const nanoDigits = 9

// ConvertTokens converts a decimal token amount ("1.5") into nanotokens ("1500000000").
func ConvertTokens(_ context.Context, arg string, _ *domain.KeyPair) (string, error) {
	parts := strings.Split(arg, ".")
	if len(parts) > 2 {
		return "", errors.New("invalid amount value")
	}
	result := parts[0]
	if len(parts) == 2 {
		if len(parts[1]) > nanoDigits {
			return "", errors.New("invalid fractional part")
		}
		result += parts[1] + strings.Repeat("0", nanoDigits-len(parts[1]))
	} else {
		result += strings.Repeat("0", nanoDigits)
	}
	if _, err := strconv.ParseUint(result, 10, 64); err != nil {
		return "", fmt.Errorf("failed to parse amount: %w", err)
	}
	return result, nil
}

// GetBalance returns a routine that looks up the balance of {"addr": ...}.
func GetBalance(querier ports.AccountQuerier) Routine {
	return func(ctx context.Context, arg string, _ *domain.KeyPair) (string, error) {
		var params map[string]any
		if err := json.Unmarshal([]byte(arg), &params); err != nil {
			return "", fmt.Errorf("arguments is invalid json: %w", err)
		}
		addr, ok := params["addr"].(string)
		if !ok {
			return "", errors.New("addr not found")
		}
		if querier == nil {
			return "", errors.New("account queries are not available")
		}
		accounts, err := querier.QueryAccounts(ctx,
			map[string]any{"id": map[string]any{"eq": addr}},
			"acc_type_name balance",
		)
		if err != nil {
			return "", fmt.Errorf("account query failed: %w", err)
		}
		if len(accounts) == 0 {
			return "", errors.New("account not found")
		}
		balance, ok := accounts[0]["balance"].(string)
		if !ok {
			return "", errors.New("account has no balance")
		}
		return balance, nil
	}
}

// LoadBocFromFile reads a file and returns its content base64 encoded.
func LoadBocFromFile(_ context.Context, path string, _ *domain.KeyPair) (string, error) {
	boc, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read boc file %q: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(boc), nil
}
