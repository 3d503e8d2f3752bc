package uridecode

import (
	"bytes"
	"errors"

	"github.com/indigo-web/wire/internal/hexconv"
)

var ErrBadEscape = errors.New("malformed percent-encoded sequence")

// Decode normalizes the URI by translating escaped characters into their true form. The
// result is appended to buff, which may therefore be nil. Truncated or non-hex sequences
// result in ErrBadEscape.
func Decode(src, buff []byte) ([]byte, error) {
	for i := bytes.IndexByte(src, '%'); i != -1; i = bytes.IndexByte(src, '%') {
		if i+2 >= len(src) {
			return nil, ErrBadEscape
		}

		hi, lo := hexconv.Halfbyte[src[i+1]], hexconv.Halfbyte[src[i+2]]
		if hi == hexconv.Invalid || lo == hexconv.Invalid {
			return nil, ErrBadEscape
		}

		buff = append(buff, src[:i]...)
		buff = append(buff, hi<<4|lo)
		src = src[i+3:]
	}

	return append(buff, src...), nil
}

// DecodeLenient works as Decode, except malformed sequences are copied as is instead of
// failing the whole value.
func DecodeLenient(src, buff []byte) []byte {
	for i := bytes.IndexByte(src, '%'); i != -1; i = bytes.IndexByte(src, '%') {
		if i+2 < len(src) {
			hi, lo := hexconv.Halfbyte[src[i+1]], hexconv.Halfbyte[src[i+2]]
			if hi != hexconv.Invalid && lo != hexconv.Invalid {
				buff = append(buff, src[:i]...)
				buff = append(buff, hi<<4|lo)
				src = src[i+3:]
				continue
			}
		}

		buff = append(buff, src[:i+1]...)
		src = src[i+1:]
	}

	return append(buff, src...)
}
