// Package attrs reads values out of slog-style key/value attribute slices.
package attrs

import "fmt"

// ExtractString returns the value stored under key in a [key1, value1, key2, value2, ...]
// slice. Strings are returned as-is and fmt.Stringer values (typed ids) are rendered.
// Anything else, or a missing key, yields "".
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); !ok || k != key {
			continue
		}
		switch v := attrs[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
		return ""
	}
	return ""
}
