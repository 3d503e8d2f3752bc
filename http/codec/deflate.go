package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

func NewDeflate() Codec {
	return coding{
		token: "deflate",
		newEncoder: func() encoder {
			return must(flate.NewWriter(nil, flate.DefaultCompression))
		},
		newDecoder: func() decoder {
			return flateReader{flate.NewReader(nil)}
		},
	}
}

// flateReader adapts the flate's resetter, which takes a dictionary as well.
type flateReader struct {
	io.ReadCloser
}

func (f flateReader) Reset(src io.Reader) error {
	return f.ReadCloser.(flate.Resetter).Reset(src, nil)
}
