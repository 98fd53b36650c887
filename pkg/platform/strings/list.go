// Package strings parses list-valued settings.
package strings

import "strings"

// SplitList splits raw on sep, trims each item and drops blanks and repeats.
// First occurrence wins, so order is preserved.
//
//	SplitList(" b1:9092, ,b2:9092,b1:9092", ",") // [b1:9092 b2:9092]
func SplitList(raw, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(raw, sep) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
