package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wire values reserved for the sentinels. Context ids occupy the rest of the byte range.
const (
	wireCurrent uint8 = 253
	wirePrev    uint8 = 254
	wireExit    uint8 = 255

	// MaxContextID is the highest id a real context may carry.
	MaxContextID uint8 = 252
)

type stateTag uint8

const (
	tagContext stateTag = iota
	tagCurrent
	tagPrev
	tagExit
)

// StateID identifies a context or one of the transition sentinels.
// The zero value is the initial context (StateZero).
type StateID struct {
	tag stateTag
	id  uint8
}

var (
	// StateZero is the initial context entered by Start.
	StateZero = StateID{}
	// StateExit terminates the session.
	StateExit = StateID{tag: tagExit}
	// StateCurrent resolves to the current state at transition time.
	StateCurrent = StateID{tag: tagCurrent}
	// StatePrev resolves to the previous state at transition time.
	StatePrev = StateID{tag: tagPrev}
)

// ContextID returns the StateID of a real context.
func ContextID(id uint8) StateID {
	return StateID{tag: tagContext, id: id}
}

// StateFromWire maps the numeric representation used by debot contracts.
func StateFromWire(v uint64) (StateID, error) {
	switch {
	case v == uint64(wireCurrent):
		return StateCurrent, nil
	case v == uint64(wirePrev):
		return StatePrev, nil
	case v == uint64(wireExit):
		return StateExit, nil
	case v <= uint64(MaxContextID):
		return ContextID(uint8(v)), nil
	default:
		return StateID{}, fmt.Errorf("state id %d out of range", v)
	}
}

// Wire returns the numeric representation used by debot contracts.
func (s StateID) Wire() uint8 {
	switch s.tag {
	case tagCurrent:
		return wireCurrent
	case tagPrev:
		return wirePrev
	case tagExit:
		return wireExit
	default:
		return s.id
	}
}

// Context returns the context id and true if s is not a sentinel.
func (s StateID) Context() (uint8, bool) {
	return s.id, s.tag == tagContext
}

// IsExit reports whether s is the EXIT sentinel.
func (s StateID) IsExit() bool { return s.tag == tagExit }

// IsCurrent reports whether s is the CURRENT sentinel.
func (s StateID) IsCurrent() bool { return s.tag == tagCurrent }

// IsPrev reports whether s is the PREV sentinel.
func (s StateID) IsPrev() bool { return s.tag == tagPrev }

// Resolve rewrites the CURRENT and PREV sentinels against the given states.
func (s StateID) Resolve(current, previous StateID) StateID {
	switch s.tag {
	case tagCurrent:
		return current
	case tagPrev:
		return previous
	default:
		return s
	}
}

func (s StateID) String() string {
	switch s.tag {
	case tagCurrent:
		return "CURRENT"
	case tagPrev:
		return "PREV"
	case tagExit:
		return "EXIT"
	default:
		return strconv.Itoa(int(s.id))
	}
}

// MarshalJSON encodes the wire number.
func (s StateID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Wire())
}

// UnmarshalJSON accepts a JSON number or a decimal/"0x"-prefixed hex string.
func (s *StateID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := ParseWireNumber(raw)
	if err != nil {
		return fmt.Errorf("invalid state id %s: %w", string(data), err)
	}
	id, err := StateFromWire(v)
	if err != nil {
		return err
	}
	*s = id
	return nil
}

// ParseWireNumber parses the integer encodings found in contract output:
// "0x"-prefixed hex or plain decimal.
func ParseWireNumber(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return strconv.ParseUint(raw[2:], 16, 64)
	}
	return strconv.ParseUint(raw, 10, 64)
}
