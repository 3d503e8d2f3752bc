// Package requestgen generates raw requests for benchmarks.
package requestgen

import (
	"strconv"
	"strings"

	"github.com/indigo-web/wire/kv"
)

func Headers(n int) *kv.Storage {
	hdrs := kv.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), strings.Repeat("b", 100))
	}

	return hdrs.Add("Host", "localhost")
}

func HeadersBlock(hdrs *kv.Storage) (buff []byte) {
	for key, value := range hdrs.Pairs() {
		buff = append(buff, key+": "+value+"\r\n"...)
	}

	return buff
}

// Generate returns a GET request to the path with the headers.
func Generate(path string, hdrs *kv.Storage) (request []byte) {
	request = append(request, "GET /"+path+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)

	return append(request, '\r', '\n')
}

// Chunked returns a POST request with the body split into chunks of the size.
func Chunked(path string, body string, chunkSize int) (request []byte) {
	request = append(request, "POST /"+path+" HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"...)

	for len(body) > 0 {
		n := min(chunkSize, len(body))
		request = strconv.AppendInt(request, int64(n), 16)
		request = append(request, "\r\n"+body[:n]+"\r\n"...)
		body = body[n:]
	}

	return append(request, "0\r\n\r\n"...)
}

// Disperse splits the data into pieces of at most n bytes.
func Disperse(data []byte, n int) (pieces [][]byte) {
	for len(data) > 0 {
		end := min(n, len(data))
		pieces = append(pieces, data[:end])
		data = data[end:]
	}

	return pieces
}
