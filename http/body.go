package http

import (
	"errors"
	"io"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"

	"github.com/indigo-web/wire/http/mime"
	"github.com/indigo-web/wire/http/status"
)

type BodyCallback func([]byte) error

type Retriever interface {
	// Retrieve reads and returns a piece of body available for processing. The last piece
	// comes along with io.EOF.
	Retrieve() ([]byte, error)
}

// Body is a lazy view over the request body. The body is read only on demand, so handlers
// that don't need it pay nothing. It can be consumed once by any of the methods, except
// Bytes and String, which cache the whole body.
type Body struct {
	source  Retriever
	request *Request
	whole   []byte
	cached  bool
	unread  []byte
	err     error
}

func NewBody(r *Request, source Retriever) *Body {
	return &Body{
		source:  source,
		request: r,
	}
}

// next retrieves the next piece, remembering the error. Once an error occurred, it's
// returned forever.
func (b *Body) next() []byte {
	if b.err != nil {
		return nil
	}

	if b.source == nil {
		b.err = io.EOF
		return nil
	}

	var piece []byte
	piece, b.err = b.source.Retrieve()

	return piece
}

// failure returns the recorded error, treating a complete body as no error.
func (b *Body) failure() error {
	if errors.Is(b.err, io.EOF) {
		return nil
	}

	return b.err
}

// Callback calls cb on every piece of the body as soon as it's available. An error returned
// by cb stops the reading and is returned as is.
func (b *Body) Callback(cb BodyCallback) error {
	for b.err == nil {
		piece := b.next()
		if b.err != nil && b.failure() != nil {
			break
		}

		if err := cb(piece); err != nil {
			b.err = err
			return err
		}
	}

	return b.failure()
}

// Bytes returns the whole body. The returned slice is valid until the next request.
func (b *Body) Bytes() ([]byte, error) {
	if b.cached {
		return b.whole, nil
	}

	for b.err == nil {
		b.whole = append(b.whole, b.next()...)
	}

	if err := b.failure(); err != nil {
		return nil, err
	}

	b.cached = true

	return b.whole, nil
}

// String returns the whole body as a string. The string shares the memory with Bytes.
func (b *Body) String() (string, error) {
	data, err := b.Bytes()
	return uf.B2S(data), err
}

// Read implements io.Reader.
func (b *Body) Read(p []byte) (int, error) {
	for len(b.unread) == 0 {
		if b.err != nil {
			return 0, b.err
		}

		b.unread = b.next()
	}

	n := copy(p, b.unread)
	b.unread = b.unread[n:]

	return n, nil
}

// JSON decodes the body into the model. Bodies declared with a Content-Type other than
// application/json are refused with status.ErrUnsupportedMediaType.
func (b *Body) JSON(model any) error {
	contentType := b.request.Headers.Value("content-type")
	if len(contentType) > 0 && !mime.Complies(mime.JSON, contentType) {
		return status.ErrUnsupportedMediaType
	}

	data, err := b.Bytes()
	if err != nil {
		return err
	}

	iter := json.ConfigDefault.BorrowIterator(data)
	defer json.ConfigDefault.ReturnIterator(iter)
	iter.ReadVal(model)

	return iter.Error
}

// Discard reads the rest of the body and throws it away.
func (b *Body) Discard() error {
	for b.err == nil {
		_ = b.next()
	}

	return b.failure()
}

// Error returns the error encountered while reading the body, if any. A completely read
// body reports io.EOF.
func (b *Body) Error() error {
	return b.err
}

// Reset prepares the body for the next request.
func (b *Body) Reset(source Retriever) {
	b.source = source
	b.whole = b.whole[:0]
	b.cached = false
	b.unread = nil
	b.err = nil
}
