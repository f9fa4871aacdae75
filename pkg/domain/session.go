package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AccountState is the account snapshot returned by simulated calls.
// A nil AccountState means "no state attached".
type AccountState map[string]any

// Clone returns a deep copy made through a JSON round trip.
func (s AccountState) Clone() AccountState {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		out := make(AccountState, len(s))
		for k, v := range s {
			out[k] = v
		}
		return out
	}
	var out AccountState
	_ = json.Unmarshal(data, &out)
	return out
}

// KeyPair is an ed25519 key pair in hex form.
type KeyPair struct {
	Public string `json:"public"`
	Secret string `json:"secret"`
}

// Address is a normalized contract address.
type Address string

var (
	rawAddress      = regexp.MustCompile(`^-?[0-9]+:[0-9a-fA-F]{64}$`)
	friendlyAddress = regexp.MustCompile(`^[A-Za-z0-9+/_-]{48}$`)
)

// ParseAddress validates raw ("wc:hex") and user-friendly (48 char base64) forms.
// Raw addresses are lowercased so that equal addresses compare equal.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	switch {
	case rawAddress.MatchString(s):
		wc, hex, _ := strings.Cut(s, ":")
		if _, err := strconv.ParseInt(wc, 10, 32); err != nil {
			return "", fmt.Errorf("failed to parse address: invalid workchain %q", wc)
		}
		return Address(wc + ":" + strings.ToLower(hex)), nil
	case friendlyAddress.MatchString(s):
		return Address(s), nil
	default:
		return "", fmt.Errorf("failed to parse address: %q", s)
	}
}

func (a Address) String() string { return string(a) }

// Checkpoint is the persisted view of a session.
type Checkpoint struct {
	SessionID string       `json:"session_id"`
	Address   Address      `json:"address"`
	Current   StateID      `json:"current"`
	Previous  StateID      `json:"previous"`
	State     AccountState `json:"state,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
