package codec

import (
	"github.com/klauspost/compress/gzip"
)

func NewGZIP() Codec {
	return coding{
		token: "gzip",
		newEncoder: func() encoder {
			return gzip.NewWriter(nil)
		},
		newDecoder: func() decoder {
			return new(gzip.Reader)
		},
	}
}
