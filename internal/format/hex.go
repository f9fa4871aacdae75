package format

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// HexToUTF8 decodes a hex string (optionally "0x"-prefixed) into UTF-8 text.
func HexToUTF8(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid hex string: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("hex string is not valid utf-8")
	}
	return string(raw), nil
}

// UTF8ToHex is the inverse of HexToUTF8 (without prefix).
func UTF8ToHex(s string) string {
	return hex.EncodeToString([]byte(s))
}
