// Package strings holds small string-slice helpers shared by services.
package strings

import "strings"

// DedupeAndTrim trims whitespace, drops empties, and removes duplicates
// while preserving first-seen order. Used to normalize caller-supplied
// claim and locale lists before resolution.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
