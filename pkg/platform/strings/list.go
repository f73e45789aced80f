// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitList splits a separated list, trimming each entry and dropping empty
// entries and repeats. Order of first occurrence is kept. Returns nil when
// nothing remains.
//
//	SplitList(" a, b,,a ", ",") // []string{"a", "b"}
func SplitList(v, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(v, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
