package codec

import (
	"github.com/klauspost/compress/zstd"
)

// NewZSTD returns the zstd coding. Both encoder and decoder are single-threaded, as an
// instance serves a single connection.
func NewZSTD() Codec {
	return coding{
		token: "zstd",
		newEncoder: func() encoder {
			return must(zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1)))
		},
		newDecoder: func() decoder {
			return must(zstd.NewReader(nil, zstd.WithDecoderConcurrency(1)))
		},
	}
}
