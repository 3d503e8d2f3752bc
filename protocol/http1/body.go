package http1

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/hexconv"
)

// frame decides how the body is framed, once the headers are complete. Content-Length takes
// precedence over the chunked encoding. A message having neither carries no body at all:
// reading until EOF is up to the transport.
func (p *Parser) frame() error {
	if p.response && !status.AllowsBody(p.code) {
		p.state = Finished
		return nil
	}

	if value, found := p.headers.Get("content-length"); found {
		length, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return status.ErrBadContentLength
		}

		if length > p.cfg.Body.MaxSize {
			return status.ErrBodyTooLarge
		}

		p.contentLength = length
		if length == 0 {
			p.state = Finished
		} else {
			p.state = ReadingFixedLength
		}

		return nil
	}

	if p.proto.AtLeast11() && isChunked(p.headers) {
		p.state = ChunkWaitSize
		return nil
	}

	p.state = Finished
	return nil
}

// parseChunkSize parses the chunk size line, ignoring extensions.
func (p *Parser) parseChunkSize(line []byte) (uint64, error) {
	if semicolon := bytes.IndexByte(line, ';'); semicolon != -1 {
		line = line[:semicolon]
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 || len(line) > p.cfg.Body.MaxChunkHexDigits {
		return 0, status.ErrChunkSizeMalformed
	}

	size, ok := hexconv.Parse(line)
	if !ok {
		return 0, status.ErrChunkSizeMalformed
	}

	return size, nil
}

// TakeBody consumes at most n buffered body bytes. The rest stays buffered. Calling it before
// the headers are ready is a bug.
func (p *Parser) TakeBody(n int) []byte {
	p.assertBody()
	return p.body.Take(n)
}

// TakeAll hands all the buffered body bytes over to the caller.
func (p *Parser) TakeAll() []byte {
	p.assertBody()
	return p.body.TakeAll()
}

// Buffered returns the number of body bytes, which may be taken right away.
func (p *Parser) Buffered() int {
	return p.body.Len()
}

func (p *Parser) assertBody() {
	if p.state <= ReadingHeaders {
		panic("BUG: body must not be read before the headers are ready")
	}
}
