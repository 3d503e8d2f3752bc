package pathmatch

import "strings"

// Wildcard matches a single path segment against a pattern segment, where an asterisk
// stands for any (possibly empty) run of characters. The returned weight is the number of
// asterisks in the pattern, so the literal segment matches with zero weight. If the segment
// doesn't match, -1 is returned.
func Wildcard(pattern, segment string) int {
	stars := strings.Count(pattern, "*")
	if stars == 0 {
		if pattern == segment {
			return 0
		}

		return -1
	}

	var (
		p, s          int
		star, restart = -1, 0
	)

	for s < len(segment) {
		switch {
		case p < len(pattern) && pattern[p] == '*':
			star, restart = p, s
			p++
		case p < len(pattern) && pattern[p] == segment[s]:
			p++
			s++
		case star != -1:
			// let the last asterisk swallow one more character and retry
			restart++
			p, s = star+1, restart
		default:
			return -1
		}
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}

	if p != len(pattern) {
		return -1
	}

	return stars
}
