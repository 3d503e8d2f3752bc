package http1

import (
	"bufio"
	"bytes"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/chunkedbody"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/codec"
	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/codecutil"
	"github.com/indigo-web/wire/internal/response"
	"github.com/indigo-web/wire/kv"
)

func newSerializer(defaultHeaders map[string]string, w io.Writer) *Serializer {
	cfg := config.Default()
	cfg.Headers.Default = defaultHeaders
	cfg.NET.WriteBufferSize.Default = 128

	return NewSerializer(cfg, w, codecutil.NewCache(codec.Default()))
}

func newFields() *response.Fields {
	fields := new(response.Fields)
	fields.Clear()
	return fields
}

func readResponse(t *testing.T, data []byte, m string) *stdhttp.Response {
	req, err := stdhttp.NewRequest(m, "/", nil)
	require.NoError(t, err)
	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
	require.NoError(t, err)

	return resp
}

// dechunk decodes the chunked body, requiring it to be terminated properly.
func dechunk(t *testing.T, data []byte) []byte {
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	var body []byte

	for len(data) > 0 {
		chunk, extra, err := parser.Parse(data, false)
		if err != nil {
			require.EqualError(t, err, io.EOF.Error())
			require.Empty(t, extra)
			return append(body, chunk...)
		}

		body = append(body, chunk...)
		data = extra
	}

	require.Fail(t, "chunked body isn't terminated")
	return nil
}

// onlyReader hides any other interfaces of the underlying reader.
type onlyReader struct {
	io.Reader
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestAppendResponseHead(t *testing.T) {
	t.Run("content length", func(t *testing.T) {
		head := AppendResponseHead(nil, proto.HTTP11, status.OK, "", []kv.Pair{
			{Key: "Server", Value: "wire"},
		}, nil, 13)
		require.Equal(t, "HTTP/1.1 200 OK\r\nServer: wire\r\nContent-Length: 13\r\n\r\n", string(head))
	})

	t.Run("chunked with a custom reason", func(t *testing.T) {
		head := AppendResponseHead(nil, proto.HTTP11, status.Accepted, "Queued", nil, nil, Chunked)
		require.Equal(t, "HTTP/1.1 202 Queued\r\nTransfer-Encoding: chunked\r\n\r\n", string(head))
	})

	t.Run("no framing for bodiless codes", func(t *testing.T) {
		for _, code := range []status.Code{status.Continue, status.NoContent, status.NotModified} {
			head := AppendResponseHead(nil, proto.HTTP11, code, "", nil, nil, 10)
			require.NotContains(t, string(head), "Content-Length", code)
			require.NotContains(t, string(head), "Transfer-Encoding", code)
		}
	})

	t.Run("unknown protocol", func(t *testing.T) {
		head := AppendResponseHead(nil, proto.Unknown, status.BadRequest, "", nil, nil, 0)
		require.Equal(t, "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n", string(head))
	})

	t.Run("cookies", func(t *testing.T) {
		cookies := []cookie.Cookie{
			cookie.New("session", "abc"),
			cookie.Build("theme", "dark").Path("/ui").HttpOnly(true).Cookie(),
		}

		head := AppendResponseHead(nil, proto.HTTP11, status.OK, "", nil, cookies, 0)
		resp := readResponse(t, head, stdhttp.MethodGet)
		require.Equal(t, []string{
			"session=abc; Path=/",
			"theme=dark; Path=/ui; HttpOnly",
		}, resp.Header["Set-Cookie"])
		require.Len(t, resp.Cookies(), 2)
		require.Equal(t, "/", resp.Cookies()[0].Path)
		require.True(t, resp.Cookies()[1].HttpOnly)
	})

	t.Run("appends to the buffer", func(t *testing.T) {
		head := AppendResponseHead([]byte("prefix"), proto.HTTP10, status.OK, "", nil, nil, 0)
		require.True(t, strings.HasPrefix(string(head), "prefixHTTP/1.0 200 OK\r\n"))
	})
}

func TestSerializer(t *testing.T) {
	t.Run("default response", func(t *testing.T) {
		var buff bytes.Buffer
		s := newSerializer(nil, &buff)
		require.NoError(t, s.Write(proto.HTTP11, method.GET, newFields()))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, 200, resp.StatusCode)
		require.Len(t, resp.Header, 2)
		require.Equal(t, "0", resp.Header.Get("Content-Length"))
		require.Equal(t, response.DefaultContentType, resp.Header.Get("Content-Type"))
		require.False(t, s.Closing())
	})

	t.Run("default headers", func(t *testing.T) {
		var buff bytes.Buffer
		s := newSerializer(map[string]string{
			"Server": "wire",
			"Lorem":  "ipsum, something else",
		}, &buff)

		for i := 0; i < 2; i++ {
			buff.Reset()
			fields := newFields()
			fields.Headers = append(fields.Headers,
				kv.Pair{Key: "Hello", Value: "nether"},
				kv.Pair{Key: "server", Value: "custom"},
			)
			require.NoError(t, s.Write(proto.HTTP11, method.GET, fields))

			resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
			require.Equal(t, []string{"nether"}, resp.Header["Hello"])
			require.Equal(t, []string{"custom"}, resp.Header["Server"])
			require.Equal(t, []string{"ipsum, something else"}, resp.Header["Lorem"])
		}
	})

	t.Run("explicit content type wins", func(t *testing.T) {
		var buff bytes.Buffer
		fields := newFields()
		fields.Headers = append(fields.Headers, kv.Pair{Key: "content-type", Value: "text/plain"})
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, []string{"text/plain"}, resp.Header["Content-Type"])
	})

	t.Run("body bigger than the buffer", func(t *testing.T) {
		body := uniuri.NewLen(1000)
		var buff bytes.Buffer
		fields := newFields()
		fields.Body = []byte(body)
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, int64(len(body)), resp.ContentLength)
		received, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(received))
	})

	t.Run("HEAD request", func(t *testing.T) {
		const body = "Hello, world!"
		var buff bytes.Buffer
		fields := newFields()
		fields.Body = []byte(body)
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.HEAD, fields))
		require.True(t, strings.HasSuffix(buff.String(), "\r\n\r\n"))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodHead)
		require.Equal(t, int64(len(body)), resp.ContentLength)
		received, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Empty(t, received)
	})

	t.Run("no content", func(t *testing.T) {
		var buff bytes.Buffer
		fields := newFields()
		fields.Code = status.NoContent
		fields.Body = []byte("ignored")
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))
		require.Equal(t, "HTTP/1.1 204 No Content\r\n\r\n", buff.String())
	})

	t.Run("sized stream", func(t *testing.T) {
		body := uniuri.NewLen(500)
		stream := &closeRecorder{Reader: strings.NewReader(body + "trailing garbage")}
		var buff bytes.Buffer
		fields := newFields()
		fields.Stream, fields.StreamSize = stream, int64(len(body))
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))
		require.True(t, stream.closed)

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, int64(len(body)), resp.ContentLength)
		received, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(received))
	})

	t.Run("short sized stream", func(t *testing.T) {
		var buff bytes.Buffer
		fields := newFields()
		fields.Stream, fields.StreamSize = onlyReader{strings.NewReader("short")}, 10
		err := newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("unsized stream", func(t *testing.T) {
		body := uniuri.NewLen(1000)
		var buff bytes.Buffer
		fields := newFields()
		fields.Stream, fields.StreamSize = onlyReader{strings.NewReader(body)}, -1
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

		head, encoded, found := strings.Cut(buff.String(), "\r\n\r\n")
		require.True(t, found)
		require.Contains(t, head, "Transfer-Encoding: chunked")
		require.Equal(t, body, string(dechunk(t, []byte(encoded))))
	})

	t.Run("unsized stream over HTTP/1.0", func(t *testing.T) {
		body := uniuri.NewLen(300)
		var buff bytes.Buffer
		s := newSerializer(nil, &buff)
		fields := newFields()
		fields.Stream, fields.StreamSize = onlyReader{strings.NewReader(body)}, -1
		require.NoError(t, s.Write(proto.HTTP10, method.GET, fields))
		require.True(t, s.Closing())

		head, received, found := strings.Cut(buff.String(), "\r\n\r\n")
		require.True(t, found)
		require.Contains(t, head, "Connection: close")
		require.NotContains(t, head, "Transfer-Encoding")
		require.NotContains(t, head, "Content-Length")
		require.Equal(t, body, received)

		// the flag is per response
		buff.Reset()
		require.NoError(t, s.Write(proto.HTTP10, method.GET, newFields()))
		require.False(t, s.Closing())
	})

	t.Run("keep-alive overridden by close delimiting", func(t *testing.T) {
		var buff bytes.Buffer
		s := newSerializer(nil, &buff)
		fields := newFields()
		fields.Headers = append(fields.Headers, kv.Pair{Key: "Connection", Value: "keep-alive"})
		fields.Stream, fields.StreamSize = onlyReader{strings.NewReader("hello")}, -1
		require.NoError(t, s.Write(proto.HTTP10, method.GET, fields))
		require.True(t, s.Closing())

		head, _, found := strings.Cut(buff.String(), "\r\n\r\n")
		require.True(t, found)
		require.Contains(t, head, "Connection: close")
		require.NotContains(t, head, "keep-alive")
		require.Len(t, fields.Headers, 1, "the response fields must stay untouched")
	})

	t.Run("gzip", func(t *testing.T) {
		body := strings.Repeat("compress me please ", 100)
		var buff bytes.Buffer
		fields := newFields()
		fields.Body = []byte(body)
		fields.ContentEncoding = "gzip"
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

		head, encoded, found := strings.Cut(buff.String(), "\r\n\r\n")
		require.True(t, found)
		require.Contains(t, head, "Content-Encoding: gzip")
		require.Contains(t, head, "Transfer-Encoding: chunked")

		compressed := dechunk(t, []byte(encoded))
		require.Less(t, len(compressed), len(body))
		r, err := gzip.NewReader(bytes.NewReader(compressed))
		require.NoError(t, err)
		plain, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, body, string(plain))
	})

	t.Run("unknown coding is ignored", func(t *testing.T) {
		var buff bytes.Buffer
		fields := newFields()
		fields.Body = []byte("plain")
		fields.ContentEncoding = "br"
		require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Empty(t, resp.Header.Get("Content-Encoding"))
		require.Equal(t, int64(5), resp.ContentLength)
	})

	t.Run("pipelined responses", func(t *testing.T) {
		var buff bytes.Buffer
		s := newSerializer(nil, &buff)
		bodies := []string{"first", "", uniuri.NewLen(200)}
		for _, body := range bodies {
			fields := newFields()
			fields.Body = []byte(body)
			require.NoError(t, s.Write(proto.HTTP11, method.GET, fields))
		}

		reader := bufio.NewReader(&buff)
		for _, body := range bodies {
			resp, err := stdhttp.ReadResponse(reader, nil)
			require.NoError(t, err)
			received, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, body, string(received))
		}
	})
}

func TestSerializerParserRoundTrip(t *testing.T) {
	body := uniuri.NewLen(2048)
	var buff bytes.Buffer
	fields := newFields()
	fields.Stream, fields.StreamSize = onlyReader{strings.NewReader(body)}, -1
	fields.Cookies = append(fields.Cookies, cookie.New("id", "42"))
	fields.Headers = append(fields.Headers, kv.Pair{Key: "X-Custom", Value: "value"})
	require.NoError(t, newSerializer(nil, &buff).Write(proto.HTTP11, method.GET, fields))

	p := NewResponseParser(config.Default())
	msg, err := feedAll(t, p, buff.String(), 17)
	require.NoError(t, err)
	require.True(t, p.IsFinished())
	require.Equal(t, status.OK, msg.Code)
	require.Equal(t, body, msg.Body)
	require.Equal(t, "value", msg.Headers["x-custom"])
	require.Equal(t, "42", msg.Cookies["id"])
}
