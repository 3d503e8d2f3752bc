package response

import (
	"io"

	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/mime"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/kv"
)

const DefaultContentType = mime.HTML

// Fields is the response as seen by the serializer.
type Fields struct {
	Code            status.Code
	Status          status.Status
	ContentType     string
	ContentEncoding string
	Headers         []kv.Pair
	Cookies         []cookie.Cookie
	Body            []byte
	// Stream takes precedence over the Body. If it implements io.Closer, it's closed after
	// being written.
	Stream io.Reader
	// StreamSize is the exact number of bytes in the Stream. -1 means the size is unknown,
	// so the chunked transfer encoding is used.
	StreamSize int64
}

// Clear resets the fields, reusing the allocated space.
func (f *Fields) Clear() {
	f.Code = status.OK
	f.Status = ""
	f.ContentType = DefaultContentType
	f.ContentEncoding = ""
	f.Headers = f.Headers[:0]
	f.Cookies = f.Cookies[:0]
	f.Body = nil
	f.Stream = nil
	f.StreamSize = 0
}

// Size returns the length of the body, or -1 if it's a stream of unknown size.
func (f *Fields) Size() int64 {
	if f.Stream != nil {
		return f.StreamSize
	}

	return int64(len(f.Body))
}
