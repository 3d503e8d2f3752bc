package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http"
	"github.com/indigo-web/wire/http/codec"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/router"
	"github.com/indigo-web/wire/transport"
	"github.com/indigo-web/wire/transport/dummy"
)

type recorder struct {
	lines []string
}

func (r *recorder) Printf(format string, v ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func (r *recorder) String() string {
	return strings.Join(r.lines, "\n")
}

func getRouter() *router.Table {
	return router.New().
		Get("/hello", func(request *http.Request) *http.Response {
			return http.String(request, "hello")
		}).
		Post("/echo", func(request *http.Request) *http.Response {
			body, err := request.Body.String()
			if err != nil {
				return http.Error(request, err)
			}

			return http.String(request, body)
		}).
		Post("/ignore", http.Respond)
}

func serve(t *testing.T, client transport.Client) *recorder {
	logger := new(recorder)
	Serve(context.Background(), config.Default(), getRouter(), codec.Default(), logger, client)

	return logger
}

type response struct {
	*stdhttp.Response
	Body string
}

// responses parses the whole server's output. Methods correspond to the responses, missing
// ones default to GET.
func responses(t *testing.T, data string, methods ...string) []response {
	rd := bufio.NewReader(strings.NewReader(data))
	var resps []response

	for i := 0; ; i++ {
		if _, err := rd.Peek(1); err == io.EOF {
			return resps
		}

		m := stdhttp.MethodGet
		if i < len(methods) {
			m = methods[i]
		}

		req, err := stdhttp.NewRequest(m, "/", nil)
		require.NoError(t, err)
		resp, err := stdhttp.ReadResponse(rd, req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		resps = append(resps, response{Response: resp, Body: string(body)})
	}
}

// timeoutClient times out instead of reporting the end of the stream.
type timeoutClient struct {
	*dummy.Client
}

func (t timeoutClient) Read() ([]byte, error) {
	data, err := t.Client.Read()
	if err == io.EOF {
		err = os.ErrDeadlineExceeded
	}

	return data, err
}

func TestSession(t *testing.T) {
	t.Run("simple GET", func(t *testing.T) {
		client := dummy.NewClient([]byte("GET /hello HTTP/1.1\r\n\r\n"))
		logger := serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusOK, resps[0].StatusCode)
		require.Equal(t, "hello", resps[0].Body)
		require.Equal(t, []string{"GET /hello 200"}, logger.lines)
	})

	t.Run("pipelining", func(t *testing.T) {
		client := dummy.NewClient(
			[]byte("GET /hello HTTP/1.1\r\n\r\nGET /nothing HTTP/1.1\r\n\r\nGET /hel"),
			[]byte("lo HTTP/1.1\r\nAccept: */*\r\n\r\n"),
		)
		logger := serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 3)
		require.Equal(t, stdhttp.StatusOK, resps[0].StatusCode)
		require.Equal(t, stdhttp.StatusNotFound, resps[1].StatusCode)
		require.Equal(t, stdhttp.StatusOK, resps[2].StatusCode)
		require.Equal(t, "hello", resps[2].Body)
		require.Equal(t, []string{"GET /hello 200", "GET /nothing 404", "GET /hello 200"}, logger.lines)
	})

	t.Run("byte by byte", func(t *testing.T) {
		request := "POST /echo HTTP/1.1\r\nContent-Length: 13\r\n\r\nHello, world!GET /hello HTTP/1.1\r\n\r\n"
		pieces := make([][]byte, len(request))
		for i := range request {
			pieces[i] = []byte{request[i]}
		}

		client := dummy.NewClient(pieces...)
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 2)
		require.Equal(t, "Hello, world!", resps[0].Body)
		require.Equal(t, "hello", resps[1].Body)
	})

	t.Run("HTTP/1.0", func(t *testing.T) {
		client := dummy.NewClient([]byte("GET /hello HTTP/1.0\r\n\r\nGET /hello HTTP/1.0\r\n\r\n"))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, 0, resps[0].ProtoMinor)
	})

	t.Run("HTTP/1.0 keep-alive", func(t *testing.T) {
		request := "GET /hello HTTP/1.0\r\nConnection: Keep-Alive\r\n\r\n"
		client := dummy.NewClient([]byte(request + request))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 2)
		require.Equal(t, "keep-alive", resps[0].Header.Get("Connection"))
		require.Equal(t, "hello", resps[1].Body)
	})

	t.Run("connection close", func(t *testing.T) {
		client := dummy.NewClient([]byte(
			"GET /hello HTTP/1.1\r\nConnection: close\r\n\r\nGET /hello HTTP/1.1\r\n\r\n",
		))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		// net/http strips the header, reporting it through Close instead
		require.True(t, resps[0].Close)
		require.Contains(t, client.Written(), "\r\nConnection: close\r\n")
	})

	t.Run("malformed request", func(t *testing.T) {
		client := dummy.NewClient([]byte(
			"GET /hello HTTP/1.1\r\nno colon here\r\n\r\nGET /hello HTTP/1.1\r\n\r\n",
		))
		logger := serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusBadRequest, resps[0].StatusCode)
		// net/http strips the header, reporting it through Close instead
		require.True(t, resps[0].Close)
		require.Contains(t, client.Written(), "\r\nConnection: close\r\n")
		require.Contains(t, logger.String(), "connection aborted")
	})

	t.Run("unsupported protocol", func(t *testing.T) {
		client := dummy.NewClient([]byte("GET / HTTP/2.0\r\n\r\n"))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusHTTPVersionNotSupported, resps[0].StatusCode)
	})

	t.Run("too long request line", func(t *testing.T) {
		client := dummy.NewClient([]byte("GET /" + strings.Repeat("a", 2048) + " HTTP/1.1\r\n\r\n"))
		logger := serve(t, client)

		require.Empty(t, client.Written())
		require.Contains(t, logger.String(), status.ErrRequestLineTooLong.Error())
	})

	t.Run("chunked body", func(t *testing.T) {
		client := dummy.NewClient(
			[]byte("POST /echo HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nHello\r\n"),
			[]byte("8;ext=1\r\n, world!\r\n0\r\n\r\n"),
		)
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, "Hello, world!", resps[0].Body)
	})

	t.Run("unread body", func(t *testing.T) {
		client := dummy.NewClient(
			[]byte("POST /ignore HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello"),
			[]byte("worldGET /hello HTTP/1.1\r\n\r\n"),
		)
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 2)
		require.Equal(t, stdhttp.StatusOK, resps[0].StatusCode)
		require.Equal(t, "hello", resps[1].Body)
	})

	t.Run("interrupted body", func(t *testing.T) {
		client := dummy.NewClient([]byte("POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello"))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusInternalServerError, resps[0].StatusCode)
		require.Equal(t, io.ErrUnexpectedEOF.Error(), resps[0].Body)
	})

	t.Run("body too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 4
		client := dummy.NewClient([]byte("POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\nhelloworld"))
		Serve(context.Background(), cfg, getRouter(), codec.Default(), NopLogger, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusRequestEntityTooLarge, resps[0].StatusCode)
	})

	t.Run("gzip-encoded body", func(t *testing.T) {
		payload := strings.Repeat("Hello, world! ", 100)
		var compressed bytes.Buffer
		w := gzip.NewWriter(&compressed)
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		head := fmt.Sprintf(
			"POST /echo HTTP/1.1\r\nContent-Encoding: gzip\r\nContent-Length: %d\r\n\r\n", compressed.Len(),
		)
		client := dummy.NewClient([]byte(head), compressed.Bytes()[:10], compressed.Bytes()[10:])
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusOK, resps[0].StatusCode)
		require.Equal(t, payload, resps[0].Body)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		client := dummy.NewClient([]byte(
			"POST /echo HTTP/1.1\r\nContent-Encoding: br\r\nContent-Length: 5\r\n\r\nhello",
		))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusUnsupportedMediaType, resps[0].StatusCode)
		require.Equal(t, "gzip, deflate, zstd", resps[0].Header.Get("Accept-Encoding"))
	})

	t.Run("identity encoding", func(t *testing.T) {
		client := dummy.NewClient([]byte(
			"POST /echo HTTP/1.1\r\nContent-Encoding: identity\r\nContent-Length: 5\r\n\r\nhello",
		))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, "hello", resps[0].Body)
	})

	t.Run("HEAD", func(t *testing.T) {
		client := dummy.NewClient([]byte("HEAD /hello HTTP/1.1\r\n\r\nGET /hello HTTP/1.1\r\n\r\n"))
		serve(t, client)

		resps := responses(t, client.Written(), stdhttp.MethodHead)
		require.Len(t, resps, 2)
		require.Equal(t, int64(5), resps[0].ContentLength)
		require.Empty(t, resps[0].Body)
		require.Equal(t, "hello", resps[1].Body)
	})

	t.Run("method not allowed", func(t *testing.T) {
		client := dummy.NewClient([]byte("DELETE /hello HTTP/1.1\r\n\r\n"))
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusMethodNotAllowed, resps[0].StatusCode)
		require.Equal(t, "GET,HEAD", resps[0].Header.Get("Allow"))
	})

	t.Run("timeout mid-request", func(t *testing.T) {
		client := timeoutClient{dummy.NewClient([]byte("GET /hello HTTP/1.1\r\nAccept: "))}
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusRequestTimeout, resps[0].StatusCode)
	})

	t.Run("timeout while idle", func(t *testing.T) {
		client := timeoutClient{dummy.NewClient([]byte("GET /hello HTTP/1.1\r\n\r\n"))}
		serve(t, client)

		resps := responses(t, client.Written())
		require.Len(t, resps, 1)
		require.Equal(t, stdhttp.StatusOK, resps[0].StatusCode)
	})
}

func TestSessionLogging(t *testing.T) {
	client := dummy.NewClient([]byte("GET /caf%C3%A9 HTTP/1.1\r\n\r\n"))
	logger := serve(t, client)

	require.Equal(t, []string{`GET /caf\?\? 404`}, logger.lines)
}

func TestSessionContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "conn")

	r := router.New().Get("/ctx", func(request *http.Request) *http.Response {
		value, _ := request.Ctx.Value(key{}).(string)
		return http.String(request, value)
	})

	client := dummy.NewClient([]byte("GET /ctx HTTP/1.1\r\n\r\nGET /ctx HTTP/1.1\r\n\r\n"))
	Serve(ctx, config.Default(), r, codec.Default(), NopLogger, client)

	resps := responses(t, client.Written())
	require.Len(t, resps, 2)
	for _, resp := range resps {
		require.Equal(t, "conn", resp.Body)
	}
}
