package http

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/mime"
	"github.com/indigo-web/wire/http/ranges"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/response"
	"github.com/indigo-web/wire/kv"
)

// most responses carry only a few headers besides the ones rendered by the serializer
const preallocRespHeaders = 8

// Response is a builder. There's a single instance per connection, reused for every request,
// so handlers must not retain it.
type Response struct {
	cfg    *config.Config
	fields *response.Fields
}

// NewResponse returns an empty 200 OK response. Handlers should use Request.Respond instead.
func NewResponse(cfg *config.Config) *Response {
	return &Response{
		cfg: cfg,
		fields: &response.Fields{
			Code:        status.OK,
			Headers:     make([]kv.Pair, 0, preallocRespHeaders),
			ContentType: response.DefaultContentType,
		},
	}
}

func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status overrides the reason phrase. Clients ignore it anyway.
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

func (r *Response) ContentType(value mime.MIME) *Response {
	r.fields.ContentType = value
	return r
}

// ContentEncoding compresses the body with the coding. Unsupported codings are ignored,
// leaving the body as is.
func (r *Response) ContentEncoding(token string) *Response {
	r.fields.ContentEncoding = token
	return r
}

// Header appends the values to the key. Content-Type and Content-Encoding are stored
// separately and take only the first value.
func (r *Response) Header(key string, values ...string) *Response {
	if len(values) == 0 {
		return r
	}

	switch {
	case strcomp.EqualFold(key, "content-type"):
		return r.ContentType(values[0])
	case strcomp.EqualFold(key, "content-encoding"):
		return r.ContentEncoding(values[0])
	}

	for _, value := range values {
		r.fields.Headers = append(r.fields.Headers, kv.Pair{Key: key, Value: value})
	}

	return r
}

func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the body. The slice isn't copied, so it must stay intact until the response
// is written.
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	r.fields.Stream = nil
	return r
}

// Write appends to the body. It never fails.
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// Stream sets the reader as a body. An unknown size (-1) results in chunked transfer
// encoding. The reader is closed after being written, if it's an io.Closer.
func (r *Response) Stream(reader io.Reader, size int64) *Response {
	r.fields.Stream = reader
	r.fields.StreamSize = size
	return r
}

// Cookie adds a Set-Cookie header per cookie.
func (r *Response) Cookie(cookies ...cookie.Cookie) *Response {
	r.fields.Cookies = append(r.fields.Cookies, cookies...)
	return r
}

// File responds with the whole file, advertising the range support. The Content-Type is
// guessed by the extension.
func (r *Response) File(path string) *Response {
	fd, size, err := openFile(path)
	if err != nil {
		return r.Error(err)
	}

	plan := ranges.FullPlan(size)

	return r.
		Header("Accept-Ranges", "bytes").
		ContentType(r.fileType(path)).
		Stream(readCloser{plan.Reader(fd), fd}, plan.ContentLength)
}

// FileRange responds with the parts of the file requested by the Range value: a single
// range as is, more as a multipart/byteranges body. A malformed value is answered with
// 400 and ranges all lying beyond the file with 416.
func (r *Response) FileRange(path, rangeHeader string) *Response {
	fd, size, err := openFile(path)
	if err != nil {
		return r.Error(err)
	}

	fileType := r.fileType(path)
	plan, err := ranges.NewPlan(rangeHeader, size, fileType, r.cfg.Ranges)
	if err != nil {
		_ = fd.Close()

		if errors.Is(err, status.ErrRangeNotSatisfiable) {
			r.Header("Content-Range", ranges.Unsatisfied(size))
		}

		return r.Error(err)
	}

	if plan.Kind == ranges.Single {
		r.Header("Content-Range", ranges.ContentRange(plan.Ranges[0], size))
	}

	return r.
		Code(plan.Status).
		ContentType(plan.ContentType(fileType)).
		Stream(readCloser{plan.Reader(fd), fd}, plan.ContentLength)
}

func (r *Response) fileType(path string) mime.MIME {
	if fileType := mime.ForPath(path); len(fileType) > 0 {
		return fileType
	}

	return r.cfg.Ranges.DefaultPartType
}

func openFile(path string) (*os.File, int64, error) {
	fd, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, 0, status.ErrNotFound
		}

		return nil, 0, status.ErrInternalServerError
	}

	stat, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, 0, status.ErrInternalServerError
	}

	if stat.IsDir() {
		_ = fd.Close()
		return nil, 0, status.ErrNotFound
	}

	return fd, stat.Size(), nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// TryJSON encodes the model into the body.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.fields.Body = r.fields.Body[:0]

	stream := json.ConfigDefault.BorrowStream(r)
	defer json.ConfigDefault.ReturnStream(stream)
	stream.WriteVal(model)

	if err := stream.Flush(); err != nil {
		return r, err
	}

	return r.ContentType(mime.JSON), nil
}

// JSON is TryJSON responding with the error instead of returning it.
func (r *Response) JSON(model any) *Response {
	if _, err := r.TryJSON(model); err != nil {
		return r.Error(err)
	}

	return r
}

// Error responds with the error. An HTTPError sets its own code and the status line as the
// body. Any other error is sent as text with the code passed, 500 otherwise. Nil errors
// change nothing.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	r.ContentType(mime.Plain)

	if httpErr := (status.HTTPError{}); errors.As(err, &httpErr) {
		return r.Code(httpErr.Code).String(statusLine(httpErr.Code))
	}

	c := status.InternalServerError
	if len(code) > 0 {
		c = code[0]
	}

	return r.Code(c).String(err.Error())
}

func statusLine(code status.Code) string {
	return strconv.Itoa(int(code)) + " " + string(status.Text(code))
}

// Expose returns the built fields, as consumed by the serializer.
func (r *Response) Expose() *response.Fields {
	return r.fields
}

func (r *Response) Clear() *Response {
	r.fields.Clear()
	return r
}

// Respond is the simplest handler, responding 200 OK with no body.
func Respond(request *Request) *Response {
	return request.Respond()
}

func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

func String(request *Request, str string) *Response {
	return request.Respond().String(str)
}

// File serves the file, respecting the request's Range header if there's one.
func File(request *Request, path string) *Response {
	if value, found := request.Range(); found {
		return request.Respond().FileRange(path, value)
	}

	return request.Respond().File(path)
}

func JSON(request *Request, model any) *Response {
	return request.Respond().JSON(model)
}

func Error(request *Request, err error, code ...status.Code) *Response {
	return request.Respond().Error(err, code...)
}
