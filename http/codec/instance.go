package codec

import (
	"io"

	"github.com/indigo-web/wire/http"
)

var _ Instance = new(instance)

type instance struct {
	enc  encoder
	sink io.Closer
	dec  decoder
	src  source
	out  []byte
}

func (i *instance) ResetCompressor(w io.Writer) {
	i.enc.Reset(w)
	i.sink, _ = w.(io.Closer)
}

func (i *instance) Write(p []byte) (n int, err error) {
	return i.enc.Write(p)
}

// Close flushes the compressed stream.
func (i *instance) Close() error {
	err := i.enc.Close()
	if err == nil && i.sink != nil {
		err = i.sink.Close()
	}

	return err
}

func (i *instance) ResetDecompressor(retriever http.Retriever, bufferSize int) error {
	if cap(i.out) < bufferSize {
		i.out = make([]byte, bufferSize)
	}

	i.src = source{retriever: retriever}

	return i.dec.Reset(&i.src)
}

func (i *instance) Retrieve() ([]byte, error) {
	n, err := i.dec.Read(i.out[:cap(i.out)])
	return i.out[:n], err
}

// source reads the compressed stream from a retriever.
type source struct {
	retriever http.Retriever
	pending   []byte
	err       error
}

func (s *source) Read(b []byte) (int, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		s.pending, s.err = s.retriever.Retrieve()
	}

	n := copy(b, s.pending)
	s.pending = s.pending[n:]

	if len(s.pending) == 0 {
		return n, s.err
	}

	return n, nil
}
