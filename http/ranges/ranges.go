// Package ranges parses Range request headers and plans the corresponding responses,
// including multipart/byteranges bodies with their exact length known upfront.
package ranges

import (
	"strings"
	"unicode"

	"github.com/indigo-web/wire/http/status"
)

// Spec is a validated byte range. Both ends are inclusive.
type Spec struct {
	Begin, End int64
}

// Len returns the number of bytes in the range.
func (s Spec) Len() int64 {
	return s.End - s.Begin + 1
}

const unit = "bytes="

// Parse parses the value of a Range header against a resource of the given size. An empty
// value results in status.ErrRangeHeaderMalformed. Unsupported units, malformed or
// unsatisfiable ranges result in status.ErrRangeNotSatisfiable for the whole header, even
// if some of the ranges were valid. So does a header listing more than maxParts ranges,
// unless maxParts isn't positive.
func Parse(value string, size int64, maxParts int) ([]Spec, error) {
	value = stripSpaces(value)
	if len(value) == 0 {
		return nil, status.ErrRangeHeaderMalformed
	}

	if !strings.HasPrefix(value, unit) || len(value) == len(unit) {
		return nil, status.ErrRangeNotSatisfiable
	}

	list := value[len(unit):]
	if maxParts > 0 && strings.Count(list, ",") >= maxParts {
		return nil, status.ErrRangeNotSatisfiable
	}

	tokens := strings.Split(list, ",")
	specs := make([]Spec, len(tokens))

	for i, token := range tokens {
		spec, ok := parseSpec(token, size)
		if !ok {
			return nil, status.ErrRangeNotSatisfiable
		}

		specs[i] = spec
	}

	return specs, nil
}

// parseSpec parses a single begin-end, begin- or -suffix token.
func parseSpec(token string, size int64) (Spec, bool) {
	rawBegin, rawEnd, found := strings.Cut(token, "-")
	if !found {
		return Spec{}, false
	}

	if len(rawBegin) == 0 {
		suffix, ok := parseOffset(rawEnd)
		if !ok || suffix == 0 || suffix > size {
			return Spec{}, false
		}

		return Spec{Begin: size - suffix, End: size - 1}, true
	}

	begin, ok := parseOffset(rawBegin)
	if !ok {
		return Spec{}, false
	}

	end := size - 1
	if len(rawEnd) > 0 {
		if end, ok = parseOffset(rawEnd); !ok {
			return Spec{}, false
		}
	}

	if begin > end || end >= size {
		return Spec{}, false
	}

	return Spec{Begin: begin, End: end}, true
}

// parseOffset accepts decimal digits only, without signs.
func parseOffset(str string) (int64, bool) {
	if len(str) == 0 {
		return 0, false
	}

	var value int64
	for i := 0; i < len(str); i++ {
		char := str[i]
		if char < '0' || char > '9' {
			return 0, false
		}

		digit := int64(char - '0')
		if value > (1<<63-1-digit)/10 {
			return 0, false
		}

		value = value*10 + digit
	}

	return value, true
}

func stripSpaces(str string) string {
	if strings.IndexFunc(str, unicode.IsSpace) == -1 {
		return str
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, str)
}
