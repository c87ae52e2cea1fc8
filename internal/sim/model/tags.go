package model

import "fmt"

// Every closed-set tag in this package persists as its lowercase string tag,
// never as its ordinal, so appending a new value never reshuffles saves.

func tagOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseTag(kind string, names []string, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func validTag(names []string, i int) bool { return i >= 0 && i < len(names) }
