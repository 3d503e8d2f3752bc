package http1

import (
	"math"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/buffer"
	"github.com/indigo-web/wire/kv"
)

// Outcome is the most advanced event, happened during a single Feed call.
type Outcome uint8

const (
	NeedMoreInput Outcome = iota
	BodyProgress
	HeadersReady
	MessageComplete
	Error
)

var outcomes = [...]string{
	NeedMoreInput:   "NeedMoreInput",
	BodyProgress:    "BodyProgress",
	HeadersReady:    "HeadersReady",
	MessageComplete: "MessageComplete",
	Error:           "Error",
}

func (o Outcome) String() string {
	if int(o) >= len(outcomes) {
		return "Outcome(?)"
	}

	return outcomes[o]
}

type State uint8

const (
	WaitingStartLine State = iota
	ReadingHeaders
	ReadingFixedLength
	ChunkWaitSize
	ChunkWaitContent
	ChunkWaitTrailers
	Finished
)

var states = [...]string{
	WaitingStartLine:   "WaitingStartLine",
	ReadingHeaders:     "ReadingHeaders",
	ReadingFixedLength: "ReadingFixedLength",
	ChunkWaitSize:      "ChunkWaitSize",
	ChunkWaitContent:   "ChunkWaitContent",
	ChunkWaitTrailers:  "ChunkWaitTrailers",
	Finished:           "Finished",
}

func (s State) String() string {
	if int(s) >= len(states) {
		return "State(?)"
	}

	return states[s]
}

// Parser is a restartable incremental parser of a single HTTP/1.x message. The input may be
// split across Feed calls arbitrarily, down to a single byte per call. The parser never does
// any I/O by itself and isn't safe for concurrent use.
type Parser struct {
	cfg        *config.Config
	response   bool
	state      State
	err        error
	lines      lineReader
	body       *buffer.Buffer
	leftover   []byte
	decodeBuff []byte

	method  method.Method
	path    string
	params  *kv.Storage
	proto   proto.Protocol
	code    status.Code
	reason  string
	headers *kv.Storage
	cookies *cookie.Jar

	trailers      *kv.Storage
	headersNumber int

	contentLength uint64
	received      uint64
	chunkLeft     uint64
	crlfLeft      int
}

// NewRequestParser returns a parser expecting requests. Every Feed call must be done
// sequentially.
func NewRequestParser(cfg *config.Config) *Parser {
	return newParser(cfg, false)
}

// NewResponseParser returns a parser expecting responses.
func NewResponseParser(cfg *config.Config) *Parser {
	return newParser(cfg, true)
}

func newParser(cfg *config.Config, response bool) *Parser {
	maxBody := math.MaxInt
	if cfg.Body.MaxSize < uint64(math.MaxInt) {
		maxBody = int(cfg.Body.MaxSize)
	}

	return &Parser{
		cfg:      cfg,
		response: response,
		lines:    newLineReader(max(cfg.URI.MaxLineLength, cfg.Headers.MaxLineLength)),
		body:     buffer.New(cfg.NET.ReadBufferSize, maxBody),
		params:   kv.NewPrealloc(cfg.URI.ParamsPrealloc),
		headers:  kv.NewPrealloc(cfg.Headers.Number.Default),
		cookies:  cookie.NewJarPrealloc(cfg.Headers.CookiesPrealloc),
		trailers: kv.New(),
	}
}

// Feed processes the next piece of the input. After an error is returned, the parser keeps
// returning it until Reset. Empty input and input after the message was complete are
// rejected without touching the state.
func (p *Parser) Feed(data []byte) (Outcome, error) {
	if p.cfg == nil {
		panic("BUG: parser must be instantiated via NewRequestParser or NewResponseParser")
	}

	if p.err != nil {
		return Error, p.err
	}

	if len(data) == 0 {
		return Error, status.ErrEmptyInputRejected
	}

	if p.state == Finished {
		return Error, status.ErrAlreadyFinished
	}

	outcome, err := p.feed(data)
	if err != nil {
		p.err = err
		return Error, err
	}

	return outcome, nil
}

func (p *Parser) feed(data []byte) (outcome Outcome, err error) {
	for len(data) > 0 && p.state != Finished {
		switch p.state {
		case WaitingStartLine:
			line, rest, st := p.lines.next(data, p.cfg.URI.MaxLineLength)
			switch st {
			case lineIncomplete:
				return outcome, nil
			case lineTooLong:
				return outcome, status.ErrRequestLineTooLong
			}

			data = rest
			if len(line) == 0 {
				// stray empty lines before the start line are tolerated
				continue
			}

			if err = p.parseStartLine(line); err != nil {
				return outcome, err
			}

			p.state = ReadingHeaders
		case ReadingHeaders:
			line, rest, st := p.lines.next(data, p.cfg.Headers.MaxLineLength)
			switch st {
			case lineIncomplete:
				return outcome, nil
			case lineTooLong:
				return outcome, status.ErrHeaderLineTooLong
			}

			data = rest
			if len(line) == 0 {
				if err = p.frame(); err != nil {
					return outcome, err
				}

				outcome = HeadersReady
				continue
			}

			if err = p.collectHeader(line); err != nil {
				return outcome, err
			}
		case ReadingFixedLength:
			n := min(p.contentLength-p.received, uint64(len(data)))
			if err = p.appendBody(data[:n]); err != nil {
				return outcome, err
			}

			data = data[n:]
			outcome = max(outcome, BodyProgress)
			if p.received == p.contentLength {
				p.state = Finished
			}
		case ChunkWaitSize:
			line, rest, st := p.lines.next(data, p.cfg.Headers.MaxLineLength)
			switch st {
			case lineIncomplete:
				return outcome, nil
			case lineTooLong:
				return outcome, status.ErrChunkSizeMalformed
			}

			data = rest
			var size uint64
			if size, err = p.parseChunkSize(line); err != nil {
				return outcome, err
			}

			if size == 0 {
				p.state = ChunkWaitTrailers
				continue
			}

			if size > p.cfg.Body.MaxSize-p.received {
				return outcome, status.ErrBodyTooLarge
			}

			p.chunkLeft = size
			p.crlfLeft = len(crlf)
			p.state = ChunkWaitContent
		case ChunkWaitContent:
			if p.chunkLeft > 0 {
				n := min(p.chunkLeft, uint64(len(data)))
				if err = p.appendBody(data[:n]); err != nil {
					return outcome, err
				}

				p.chunkLeft -= n
				data = data[n:]
				outcome = max(outcome, BodyProgress)
			}

			for ; len(data) > 0 && p.crlfLeft > 0; data = data[1:] {
				if data[0] != crlf[len(crlf)-p.crlfLeft] {
					return outcome, status.ErrBadChunk
				}

				p.crlfLeft--
			}

			if p.chunkLeft == 0 && p.crlfLeft == 0 {
				p.state = ChunkWaitSize
			}
		case ChunkWaitTrailers:
			line, rest, st := p.lines.next(data, p.cfg.Headers.MaxLineLength)
			switch st {
			case lineIncomplete:
				return outcome, nil
			case lineTooLong:
				return outcome, status.ErrHeaderLineTooLong
			}

			data = rest
			if len(line) == 0 {
				p.state = Finished
				continue
			}

			if err = p.collectTrailer(line); err != nil {
				return outcome, err
			}
		default:
			panic("BUG: unreachable parser state")
		}
	}

	if p.state != Finished {
		return outcome, nil
	}

	p.leftover = append(p.leftover[:0], data...)
	return MessageComplete, nil
}

func (p *Parser) parseStartLine(line []byte) error {
	if p.response {
		return p.parseStatusLine(line)
	}

	return p.parseRequestLine(line)
}

func (p *Parser) appendBody(data []byte) error {
	if !p.body.Append(data) {
		return status.ErrBodyTooLarge
	}

	p.received += uint64(len(data))
	return nil
}

// Method returns the request method. Always method.Unknown for responses.
func (p *Parser) Method() method.Method {
	return p.method
}

// Path returns the normalized and decoded request path.
func (p *Parser) Path() string {
	return p.path
}

// Params returns the query parameters.
func (p *Parser) Params() *kv.Storage {
	return p.params
}

func (p *Parser) Proto() proto.Protocol {
	return p.proto
}

// Code returns the response status code. Always zero for requests.
func (p *Parser) Code() status.Code {
	return p.code
}

// Reason returns the response reason phrase as it was received.
func (p *Parser) Reason() string {
	return p.reason
}

// Headers returns the headers storage. All the keys are lower-cased, however lookups are
// case-insensitive anyway.
func (p *Parser) Headers() *kv.Storage {
	return p.headers
}

func (p *Parser) Cookies() *cookie.Jar {
	return p.cookies
}

// Trailers returns the trailer fields of a chunked body. They're parsed the same way as
// headers, except Cookie trailers are kept here as is and never reach the Cookies jar.
func (p *Parser) Trailers() *kv.Storage {
	return p.trailers
}

func (p *Parser) State() State {
	return p.state
}

func (p *Parser) IsFinished() bool {
	return p.state == Finished
}

// CanStillReadBody reports whether more body bytes may arrive.
func (p *Parser) CanStillReadBody() bool {
	return p.state > ReadingHeaders && p.state < Finished
}

// IsExhausted reports whether there's neither buffered body nor more body to come.
func (p *Parser) IsExhausted() bool {
	return p.body.Len() == 0 && !p.CanStillReadBody()
}

// Leftover returns the bytes fed after the end of the message. They belong to the next
// pipelined message and are valid until the next Feed call.
func (p *Parser) Leftover() []byte {
	return p.leftover
}

// Reset brings the parser back to its initial state, so it can be reused for the next
// message on the same connection.
func (p *Parser) Reset() {
	p.state = WaitingStartLine
	p.err = nil
	p.lines.reset()
	p.body.Clear()
	p.leftover = p.leftover[:0]
	p.method = method.Unknown
	p.path = ""
	p.params.Clear()
	p.proto = proto.Unknown
	p.code = 0
	p.reason = ""
	p.headers.Clear()
	p.cookies.Clear()
	p.trailers.Clear()
	p.headersNumber = 0
	p.contentLength = 0
	p.received = 0
	p.chunkLeft = 0
	p.crlfLeft = 0
}
