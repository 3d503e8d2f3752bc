package proto

import (
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

type Protocol uint8

const (
	Unknown Protocol = 0
	HTTP10  Protocol = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

func (p Protocol) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return ""
	}
}

// AtLeast11 reports whether the protocol supports HTTP/1.1 features, like chunked
// transfer encoding and persistent connections by default.
func (p Protocol) AtLeast11() bool {
	return p == HTTP11
}

const httpScheme = "HTTP/"

var majorMinorVersionLUT = [10][10]Protocol{
	1: {0: HTTP10, 1: HTTP11},
}

// FromBytes parses the protocol token. The scheme is matched case-insensitively, the
// version must be exactly one digit, a dot and another digit.
func FromBytes(raw []byte) Protocol {
	const (
		protoTokenLength   = len("HTTP/x.x")
		majorVersionOffset = len("HTTP/x") - 1
		dotOffset          = len("HTTP/x.") - 1
		minorVersionOffset = len("HTTP/x.x") - 1
	)

	if len(raw) != protoTokenLength || !HasScheme(raw) || raw[dotOffset] != '.' {
		return Unknown
	}

	return Parse(raw[majorVersionOffset]-'0', raw[minorVersionOffset]-'0')
}

// HasScheme reports whether the token starts with HTTP/ (case-insensitively).
func HasScheme(raw []byte) bool {
	return len(raw) >= len(httpScheme) && strcomp.EqualFold(uf.B2S(raw[:len(httpScheme)]), httpScheme)
}

func Parse(major, minor uint8) Protocol {
	if major > 9 || minor > 9 {
		return Unknown
	}

	return majorMinorVersionLUT[major][minor]
}
