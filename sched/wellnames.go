package sched

// Deck name patterns support '*' (any run, including empty) and '?' (any
// single character). A pattern of exactly "*" matches every well; a
// longer pattern starting with '*' names a well list and is resolved
// through the list manager, not by globbing.

func patternMatch(pattern, name string) bool {
	p, n := 0, 0
	starP, starN := -1, 0
	for n < len(name) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == name[n]):
			p++
			n++
		case p < len(pattern) && pattern[p] == '*':
			starP = p
			starN = n
			p++
		case starP >= 0:
			p = starP + 1
			starN++
			n = starN
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

func hasWildcard(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' || pattern[i] == '?' {
			return true
		}
	}
	return false
}

// isListPattern reports whether pattern names a well list. List names
// start with '*' and carry at least one further character; the bare star
// is the match-everything glob.
func isListPattern(pattern string) bool {
	return len(pattern) > 1 && pattern[0] == '*'
}

// resolveNames expands pattern against names in insertion order. A
// non-wildcard pattern resolves to itself if present.
func resolveNames(pattern string, names []string) []string {
	if pattern == "*" {
		return append([]string(nil), names...)
	}
	if !hasWildcard(pattern) {
		for _, n := range names {
			if n == pattern {
				return []string{pattern}
			}
		}
		return nil
	}
	var out []string
	for _, n := range names {
		if patternMatch(pattern, n) {
			out = append(out, n)
		}
	}
	return out
}
