// Package codec provides content codings, applied to response bodies and removed from
// request bodies.
package codec

import (
	"io"

	"github.com/indigo-web/wire/http"
)

// Codec is a content coding, identified by its token. Instances aren't safe for concurrent
// use, so every connection creates its own.
type Codec interface {
	Token() string
	New() Instance
}

type Instance interface {
	Compressor
	Decompressor
}

type Compressor interface {
	io.WriteCloser
	// ResetCompressor makes the compressor write into w. Closing the compressor closes w
	// as well, if it's an io.Closer.
	ResetCompressor(w io.Writer)
}

type Decompressor interface {
	http.Retriever
	// ResetDecompressor makes the decompressor read the compressed data from the source.
	// Retrieved pieces are at most bufferSize long.
	ResetDecompressor(source http.Retriever, bufferSize int) error
}

// Default returns all the supported codecs.
func Default() []Codec {
	return []Codec{NewGZIP(), NewDeflate(), NewZSTD()}
}

type (
	encoder interface {
		io.WriteCloser
		Reset(dst io.Writer)
	}

	decoder interface {
		io.Reader
		Reset(src io.Reader) error
	}
)

// coding is a Codec made out of a streaming encoder and decoder pair.
type coding struct {
	token      string
	newEncoder func() encoder
	newDecoder func() decoder
}

func (c coding) Token() string {
	return c.token
}

func (c coding) New() Instance {
	return &instance{
		enc: c.newEncoder(),
		dec: c.newDecoder(),
	}
}

func must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}

	return value
}
