package http1

import (
	"bytes"
	"strings"

	"github.com/indigo-web/utils/uf"
	"golang.org/x/net/http/httpguts"

	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/uridecode"
	"github.com/indigo-web/wire/kv"
)

// parseField splits a field line on the first colon. The key is lower-cased, the value is
// trimmed and percent-decoded, keeping malformed escapes as is.
func (p *Parser) parseField(line []byte) (key, value string, err error) {
	rawKey, rawValue, found := bytes.Cut(line, colon)
	if !found {
		return "", "", status.ErrInvalidHeaderLine
	}

	rawKey = bytes.TrimSpace(rawKey)
	if len(rawKey) == 0 || !httpguts.ValidHeaderFieldName(uf.B2S(rawKey)) {
		return "", "", status.ErrInvalidHeaderLine
	}

	p.decodeBuff = uridecode.DecodeLenient(bytes.TrimSpace(rawValue), p.decodeBuff[:0])

	return strings.ToLower(string(rawKey)), string(p.decodeBuff), nil
}

var colon = []byte(":")

// collectHeader stores the header line. Cookie lines are diverted into the jar and never
// reach the headers storage.
func (p *Parser) collectHeader(line []byte) error {
	p.headersNumber++
	if p.headersNumber > p.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	key, value, err := p.parseField(line)
	if err != nil {
		return err
	}

	switch key {
	case "cookie":
		if cookie.Parse(p.cookies, value) != nil {
			return status.ErrInvalidHeaderLine
		}
	case "set-cookie":
		c, err := cookie.ParseSetCookie(value)
		if err != nil {
			return status.ErrInvalidHeaderLine
		}

		p.cookies.Set(c)
	default:
		p.headers.Add(key, value)
	}

	return nil
}

func (p *Parser) collectTrailer(line []byte) error {
	p.headersNumber++
	if p.headersNumber > p.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	key, value, err := p.parseField(line)
	if err != nil {
		return err
	}

	p.trailers.Add(key, value)
	return nil
}

// isChunked reports whether the Transfer-Encoding is exactly chunked. Any other coding,
// including a list ending with chunked, isn't recognized.
func isChunked(headers *kv.Storage) bool {
	value, found := headers.Get("transfer-encoding")
	return found && strings.EqualFold(strings.TrimSpace(value), "chunked")
}
