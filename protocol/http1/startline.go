package http1

import (
	"bytes"
	"strings"

	"github.com/indigo-web/utils/uf"

	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/uridecode"
	"github.com/indigo-web/wire/kv"
)

// parseRequestLine parses METHOD SP request-target SP HTTP/M.N. Query parameters are
// written into params.
func (p *Parser) parseRequestLine(line []byte) error {
	methodToken, rest, found := bytes.Cut(line, space)
	if !found {
		return status.ErrInvalidRequestLine
	}

	target, protoToken, found := bytes.Cut(rest, space)
	if !found || bytes.IndexByte(protoToken, ' ') != -1 || len(methodToken) == 0 || len(target) == 0 {
		return status.ErrInvalidRequestLine
	}

	protocol := proto.FromBytes(protoToken)
	if protocol == proto.Unknown {
		if !proto.HasScheme(protoToken) {
			return status.ErrInvalidRequestLine
		}

		return status.ErrUnsupportedProtocol
	}

	p.method = method.Parse(uf.B2S(methodToken))
	if p.method == method.Unknown {
		return status.ErrInvalidMethod
	}

	decoded, err := uridecode.Decode(target, p.decodeBuff[:0])
	if err != nil {
		return status.ErrInvalidRequestPath
	}

	p.decodeBuff = decoded

	path, query, _ := bytes.Cut(decoded, question)
	p.path, err = normalizePath(path)
	if err != nil {
		return err
	}

	parseQuery(p.params, string(query))
	p.proto = protocol

	return nil
}

var (
	space    = []byte(" ")
	question = []byte("?")
)

// normalizePath validates the path and collapses consecutive slashes. The trailing slash is
// stripped, unless the path is the root itself.
func normalizePath(path []byte) (string, error) {
	if len(path) == 0 || path[0] != '/' {
		return "", status.ErrInvalidRequestPath
	}

	var b strings.Builder
	b.Grow(len(path))

	for i, char := range path {
		if char < 0x20 || char == 0x7f {
			return "", status.ErrInvalidRequestPath
		}

		if char == '/' && i > 0 && path[i-1] == '/' {
			continue
		}

		b.WriteByte(char)
	}

	normalized := b.String()
	if len(normalized) > 1 && normalized[len(normalized)-1] == '/' {
		normalized = normalized[:len(normalized)-1]
	}

	return normalized, nil
}

// parseQuery splits the query on ampersands and then each pair on the first equality sign.
// A pair without the sign is stored with its key as the value.
func parseQuery(params *kv.Storage, query string) {
	for len(query) > 0 {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if len(pair) == 0 {
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if !found {
			value = key
		}

		params.Add(key, value)
	}
}

// parseStatusLine parses HTTP/M.N SP code [SP reason].
func (p *Parser) parseStatusLine(line []byte) error {
	protoToken, rest, found := bytes.Cut(line, space)
	if !found {
		return status.ErrInvalidStatusLine
	}

	protocol := proto.FromBytes(protoToken)
	if protocol == proto.Unknown {
		if !proto.HasScheme(protoToken) {
			return status.ErrInvalidStatusLine
		}

		return status.ErrUnsupportedProtocol
	}

	codeToken, reason, _ := bytes.Cut(rest, space)
	if len(codeToken) != 3 {
		return status.ErrInvalidStatusCode
	}

	var code status.Code
	for _, char := range codeToken {
		if char < '0' || char > '9' {
			return status.ErrInvalidStatusCode
		}

		code = code*10 + status.Code(char-'0')
	}

	if !status.Known(code) {
		return status.ErrInvalidStatusCode
	}

	p.proto = protocol
	p.code = code
	p.reason = string(reason)

	return nil
}
