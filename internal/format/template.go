package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
)

// Placeholder separates template segments.
const Placeholder = "{}"

// Render substitutes the i-th "{}" of tmpl with the i-th parameter found in params.
// A template without placeholders is returned unchanged.
func Render(tmpl string, params map[string]any) string {
	parts := strings.Split(tmpl, Placeholder)
	var b strings.Builder
	b.Grow(len(tmpl))
	for i, part := range parts {
		b.WriteString(part)
		if i < len(parts)-1 {
			b.WriteString(Arg(params, i))
		}
	}
	return b.String()
}

// Arg resolves the i-th template parameter. Lookup order is param<i>, str<i>,
// number<i>, utime<i>; missing parameters render as the empty string.
func Arg(params map[string]any, i int) string {
	idx := strconv.Itoa(i)
	if v, ok := stringField(params, "param"+idx); ok {
		return v
	}
	if v, ok := stringField(params, "str"+idx); ok {
		text, err := HexToUTF8(v)
		if err != nil {
			return ""
		}
		return text
	}
	if v, ok := stringField(params, "number"+idx); ok {
		n, err := ParseHexNumber(v)
		if err != nil {
			return ""
		}
		return n.Dec()
	}
	if v, ok := stringField(params, "utime"+idx); ok {
		return FormatUnixTime(v)
	}
	return ""
}

// ParseHexNumber parses a hex encoded unsigned integer of up to 256 bits.
func ParseHexNumber(s string) (*uint256.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromHex("0x" + digits)
}

// FormatUnixTime renders a hex encoded 32-bit UNIX timestamp in local time.
// Zero renders as "undefined"; unparsable input renders as the empty string.
func FormatUnixTime(s string) string {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	utime, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return ""
	}
	if utime == 0 {
		return "undefined"
	}
	return time.Unix(int64(utime), 0).Local().Format(time.RFC1123Z)
}

func stringField(params map[string]any, key string) (string, bool) {
	if params == nil {
		return "", false
	}
	v, ok := params[key].(string)
	return v, ok
}
