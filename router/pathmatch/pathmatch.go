// Package pathmatch matches request paths against route patterns. A pattern is a sequence
// of slash-separated segments, each being either a literal, a wildcard (containing
// asterisks) or a capture: {name}, or {} for an anonymous one.
package pathmatch

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPattern = errors.New(
		"pattern cannot be empty",
	)
	ErrNeedLeadingSlash = errors.New(
		"leading slash is compulsory",
	)
	ErrInvalidPartName = errors.New(
		"slashes, asterisks or figure braces are not allowed inside of the capture name",
	)
	ErrPartialCapture = errors.New(
		"a capture must occupy the whole segment",
	)
)

type Capture struct {
	Name, Value string
}

// Match is the result of matching a path against a pattern. Negative weight means the path
// doesn't match.
type Match struct {
	Weight   int
	Captures []Capture
}

var noMatch = Match{Weight: -1}

func (m Match) Matched() bool {
	return m.Weight >= 0
}

type segmentKind uint8

const (
	literal segmentKind = iota
	wildcard
	capture
)

type segment struct {
	kind  segmentKind
	value string
}

// Pattern is a parsed route pattern.
type Pattern struct {
	raw      string
	segments []segment
	// slots is the number of trailing capture segments
	slots   int
	literal int
}

func Parse(pattern string) (Pattern, error) {
	if len(pattern) == 0 {
		return Pattern{}, ErrEmptyPattern
	}

	if pattern[0] != '/' {
		return Pattern{}, ErrNeedLeadingSlash
	}

	parts := Split(pattern)
	p := Pattern{raw: "/" + strings.Join(parts, "/")}

	for _, raw := range parts {
		seg, err := parseSegment(raw)
		if err != nil {
			return Pattern{}, err
		}

		if seg.kind != capture {
			p.literal += len(seg.value) - strings.Count(seg.value, "*")
		}

		p.segments = append(p.segments, seg)
	}

	for i := len(p.segments) - 1; i >= 0 && p.segments[i].kind == capture; i-- {
		p.slots++
	}

	return p, nil
}

func MustParse(pattern string) Pattern {
	p, err := Parse(pattern)
	if err != nil {
		panic(err.Error())
	}

	return p
}

func parseSegment(raw string) (segment, error) {
	open := strings.IndexByte(raw, '{')
	if open == -1 {
		if strings.IndexByte(raw, '}') != -1 {
			return segment{}, ErrInvalidPartName
		}

		if strings.IndexByte(raw, '*') != -1 {
			return segment{kind: wildcard, value: raw}, nil
		}

		return segment{kind: literal, value: raw}, nil
	}

	if open != 0 || raw[len(raw)-1] != '}' {
		return segment{}, ErrPartialCapture
	}

	name := raw[1 : len(raw)-1]
	if strings.ContainsAny(name, "{}*") {
		return segment{}, ErrInvalidPartName
	}

	return segment{kind: capture, value: name}, nil
}

// Split splits the path into its segments, ignoring the leading and trailing slashes. The
// root path has no segments at all.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if len(path) == 0 {
		return nil
	}

	return strings.Split(path, "/")
}

// String returns the pattern without the trailing slash.
func (p Pattern) String() string {
	return p.raw
}

// Literal returns the number of literal characters in the pattern. Used to break ties
// between equally weighted matches: the more literal pattern is the more specific one.
func (p Pattern) Literal() int {
	return p.literal
}

// IsStatic reports whether the pattern consists of literal segments only.
func (p Pattern) IsStatic() bool {
	for _, seg := range p.segments {
		if seg.kind != literal {
			return false
		}
	}

	return true
}

// Match matches the path, splitting it into segments. See MatchSegments.
func (p Pattern) Match(path string) Match {
	return p.MatchSegments(Split(path))
}

// MatchSegments matches the path segments. The trailing capture slots take the trailing
// path segments, one per slot, whereas the rest of the pattern must match the rest of the
// path segment-wise. Captures inside the prefix take their segments as well, contributing
// no weight, same as literals.
func (p Pattern) MatchSegments(path []string) Match {
	if len(path) != len(p.segments) {
		return noMatch
	}

	prefix := len(p.segments) - p.slots
	weight, captures := matchPrefix(p.segments[:prefix], path[:prefix])
	if weight < 0 {
		return noMatch
	}

	for i, slot := range p.segments[prefix:] {
		captures = append(captures, Capture{Name: slot.value, Value: path[prefix+i]})
	}

	return Match{
		Weight:   weight,
		Captures: captures,
	}
}

func matchPrefix(pattern []segment, path []string) (weight int, captures []Capture) {
	for i, seg := range pattern {
		switch seg.kind {
		case capture:
			captures = append(captures, Capture{Name: seg.value, Value: path[i]})
		default:
			w := Wildcard(seg.value, path[i])
			if w < 0 {
				return -1, nil
			}

			weight += w
		}
	}

	return weight, captures
}
