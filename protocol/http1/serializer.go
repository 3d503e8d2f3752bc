package http1

import (
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/indigo-web/utils/strcomp"

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

const (
	// Chunked passed as a length to AppendResponseHead results in the chunked transfer
	// encoding.
	Chunked int64 = -1
	// unframed bodies are delimited by the connection close.
	unframed int64 = -2
)

// AppendResponseHead renders the status line, the header fields, Set-Cookie lines and the
// framing header, terminated by an empty line. Responses, which can't have a body (1xx, 204
// and 304), get no framing header at all. Empty reason is replaced with the one from the
// status codes table.
func AppendResponseHead(
	buff []byte,
	protocol proto.Protocol,
	code status.Code,
	reason status.Status,
	headers []kv.Pair,
	cookies []cookie.Cookie,
	length int64,
) []byte {
	if protocol == proto.Unknown {
		// in case the request line was malformed, parser had no chance of reaching the
		// protocol
		protocol = proto.HTTP11
	}

	buff = append(buff, protocol.String()...)
	buff = append(buff, ' ')
	buff = strconv.AppendUint(buff, uint64(code), 10)
	buff = append(buff, ' ')
	if len(reason) == 0 {
		reason = status.Text(code)
	}

	buff = append(buff, reason...)
	buff = append(buff, crlf...)

	for _, header := range headers {
		buff = appendHeader(buff, header.Key, header.Value)
	}

	for _, c := range cookies {
		buff = append(buff, "Set-Cookie: "...)
		buff = c.Append(buff)
		buff = append(buff, crlf...)
	}

	if status.AllowsBody(code) {
		if length == Chunked {
			buff = append(buff, "Transfer-Encoding: chunked\r\n"...)
		} else if length >= 0 {
			buff = append(buff, "Content-Length: "...)
			buff = strconv.AppendInt(buff, length, 10)
			buff = append(buff, crlf...)
		}
	}

	return append(buff, crlf...)
}

func appendHeader(buff []byte, key, value string) []byte {
	buff = append(buff, key...)
	buff = append(buff, ':', ' ')
	buff = append(buff, value...)
	return append(buff, crlf...)
}

// Serializer writes responses into the writer, buffering small ones entirely.
type Serializer struct {
	cfg            *config.Config
	w              io.Writer
	buff           []byte
	streamBuff     []byte
	headers        []kv.Pair
	defaultHeaders []kv.Pair
	codecs         codecutil.Cache
	closing        bool
}

func NewSerializer(cfg *config.Config, w io.Writer, codecs codecutil.Cache) *Serializer {
	return &Serializer{
		cfg:            cfg,
		w:              w,
		buff:           make([]byte, 0, cfg.NET.WriteBufferSize.Default),
		defaultHeaders: sortedDefaults(cfg.Headers.Default),
		codecs:         codecs,
	}
}

func sortedDefaults(headers map[string]string) []kv.Pair {
	pairs := make([]kv.Pair, 0, len(headers))
	for key, value := range headers {
		pairs = append(pairs, kv.Pair{Key: key, Value: value})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Key < pairs[j].Key
	})

	return pairs
}

// Closing reports whether the connection must be closed after the last written response,
// as its body was delimited by the connection close itself.
func (s *Serializer) Closing() bool {
	return s.closing
}

// Write serializes the response to a request with the method over the protocol. HEAD
// responses carry headers only. Stream bodies are closed after being written, if they
// implement io.Closer.
func (s *Serializer) Write(protocol proto.Protocol, m method.Method, fields *response.Fields) (err error) {
	if c, ok := fields.Stream.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	length := fields.Size()
	hasBody := status.AllowsBody(fields.Code) && m != method.HEAD
	s.headers = s.appendFields(s.headers[:0], fields)

	var compressor codec.Compressor
	if len(fields.ContentEncoding) > 0 && length != 0 && status.AllowsBody(fields.Code) {
		if instance := s.codecs.Get(fields.ContentEncoding); instance != nil {
			compressor = instance
			s.headers = append(s.headers, kv.Pair{Key: "Content-Encoding", Value: fields.ContentEncoding})
			// the compressed size is unknown beforehand
			length = Chunked
		}
	}

	s.closing = false
	if length == Chunked && !protocol.AtLeast11() && protocol != proto.Unknown {
		// HTTP/1.0 has no chunked encoding, so the body is delimited by closing the connection
		s.closing = true
		length = unframed
		s.headers = slices.DeleteFunc(s.headers, func(pair kv.Pair) bool {
			return strcomp.EqualFold(pair.Key, "Connection")
		})
		s.headers = append(s.headers, kv.Pair{Key: "Connection", Value: "close"})
	}

	s.buff = AppendResponseHead(s.buff, protocol, fields.Code, fields.Status, s.headers, fields.Cookies, length)

	if !hasBody || fields.Size() == 0 {
		return s.flush()
	}

	var encoder io.WriteCloser = identityWriter{s}
	if length == Chunked {
		encoder = chunkedWriter{s}
	}

	if compressor != nil {
		compressor.ResetCompressor(encoder)
		encoder = compressor
	}

	if err = s.writeBody(encoder, fields, length); err != nil {
		return err
	}

	if err = encoder.Close(); err != nil {
		return err
	}

	return s.flush()
}

func (s *Serializer) writeBody(encoder io.Writer, fields *response.Fields, length int64) error {
	if fields.Stream == nil {
		_, err := encoder.Write(fields.Body)
		return err
	}

	if cap(s.streamBuff) == 0 {
		s.streamBuff = make([]byte, s.cfg.NET.WriteBufferSize.Default)
	}

	if length >= 0 {
		// the declared size was already committed into the Content-Length, so the stream
		// must provide exactly that much
		n, err := io.CopyBuffer(encoder, io.LimitReader(fields.Stream, length), s.streamBuff)
		if err == nil && n < length {
			err = io.ErrUnexpectedEOF
		}

		return err
	}

	_, err := io.CopyBuffer(encoder, fields.Stream, s.streamBuff)
	return err
}

// appendFields collects the response headers, its Content-Type and default headers, which
// weren't overridden.
func (s *Serializer) appendFields(headers []kv.Pair, fields *response.Fields) []kv.Pair {
	headers = append(headers, fields.Headers...)

	if len(fields.ContentType) > 0 && status.AllowsBody(fields.Code) && !hasKey(fields.Headers, "Content-Type") {
		headers = append(headers, kv.Pair{Key: "Content-Type", Value: fields.ContentType})
	}

	for _, header := range s.defaultHeaders {
		if !hasKey(fields.Headers, header.Key) {
			headers = append(headers, header)
		}
	}

	return headers
}

func hasKey(headers []kv.Pair, key string) bool {
	return slices.ContainsFunc(headers, func(pair kv.Pair) bool {
		return strcomp.EqualFold(pair.Key, key)
	})
}

// safeAppend appends the data into a limited capacity buffer. If the data is longer than
// the free space left, the buffer is filled till full and flushed.
func (s *Serializer) safeAppend(data []byte) error {
	for len(data) > 0 {
		freeSpace := cap(s.buff) - len(s.buff)

		if len(data) <= freeSpace {
			s.buff = append(s.buff, data...)
			return nil
		}

		s.buff = append(s.buff, data[:freeSpace]...)
		if err := s.flush(); err != nil {
			return err
		}

		data = data[freeSpace:]
	}

	return nil
}

func (s *Serializer) flush() (err error) {
	if len(s.buff) > 0 {
		_, err = s.w.Write(s.buff)
		s.buff = s.buff[:0]
	}

	if cap(s.buff) > s.cfg.NET.WriteBufferSize.Maximal {
		s.buff = make([]byte, 0, s.cfg.NET.WriteBufferSize.Default)
	}

	return err
}

type identityWriter struct {
	s *Serializer
}

func (i identityWriter) Write(b []byte) (n int, err error) {
	return len(b), i.s.safeAppend(b)
}

func (identityWriter) Close() error {
	return nil
}

// chunkedWriter encodes every write as a separate chunk. Empty writes are skipped, as an
// empty chunk would terminate the body.
type chunkedWriter struct {
	s *Serializer
}

func (c chunkedWriter) Write(b []byte) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}

	var sizeLine [18]byte
	size := strconv.AppendUint(sizeLine[:0], uint64(len(b)), 16)
	if err = c.s.safeAppend(append(size, crlf...)); err != nil {
		return 0, err
	}

	if err = c.s.safeAppend(b); err != nil {
		return 0, err
	}

	return len(b), c.s.safeAppend(crlf)
}

func (c chunkedWriter) Close() error {
	return c.s.safeAppend(lastChunk)
}

var lastChunk = []byte("0\r\n\r\n")
