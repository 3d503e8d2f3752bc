package server

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/indigo-web/utils/strcomp"
	"golang.org/x/net/http/httpguts"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http"
	"github.com/indigo-web/wire/http/codec"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/codecutil"
	"github.com/indigo-web/wire/protocol/http1"
	"github.com/indigo-web/wire/router"
	"github.com/indigo-web/wire/transport"
)

// Serve serves requests coming from the client until the connection must be closed. The
// client isn't closed afterward.
func Serve(
	ctx context.Context,
	cfg *config.Config,
	r router.Router,
	codecs []codec.Codec,
	logger Logger,
	client transport.Client,
) {
	s := newSession(ctx, cfg, r, codecs, logger, client)
	for s.serveOnce() {
	}
}

type session struct {
	ctx        context.Context
	cfg        *config.Config
	router     router.Router
	logger     Logger
	client     transport.Client
	parser     *http1.Parser
	serializer *http1.Serializer
	codecs     codecutil.Cache
	request    *http.Request
	body       *bodyReader
	pending    []byte
}

func newSession(
	ctx context.Context,
	cfg *config.Config,
	r router.Router,
	codecs []codec.Codec,
	logger Logger,
	client transport.Client,
) *session {
	cache := codecutil.NewCache(codecs)
	parser := http1.NewRequestParser(cfg)
	request := http.NewRequest(cfg, http.NewResponse(cfg), client.Remote())
	request.Ctx = ctx
	// the request is a view over the parser's storages
	request.Params = parser.Params()
	request.Headers = parser.Headers()
	request.Cookies = parser.Cookies()

	return &session{
		ctx:        ctx,
		cfg:        cfg,
		router:     r,
		logger:     logger,
		client:     client,
		parser:     parser,
		serializer: http1.NewSerializer(cfg, client, cache),
		codecs:     cache,
		request:    request,
		body:       newBodyReader(client, parser),
	}
}

// serveOnce serves a single request and reports whether the connection may be reused.
func (s *session) serveOnce() bool {
	for {
		data, err := s.client.Read()
		if err != nil {
			s.onReadError(err)
			return false
		}

		if len(data) == 0 {
			continue
		}

		outcome, err := s.parser.Feed(data)
		if err != nil {
			s.onParseError(err)
			return false
		}

		if outcome >= http1.HeadersReady {
			return s.handle()
		}
	}
}

func (s *session) handle() bool {
	p, request := s.parser, s.request
	request.Method = p.Method()
	request.Path = p.Path()
	request.Protocol = p.Proto()
	request.Body.Reset(s.body)
	keepAlive := s.keepAlive()

	if token, found := request.Headers.Get("content-encoding"); found && !strcomp.EqualFold(token, "identity") {
		decoder := s.codecs.Get(token)
		if decoder == nil {
			resp := notNil(request, s.router.OnError(request, status.ErrUnsupportedMediaType))
			s.abort(status.ErrUnsupportedMediaType, resp.Header("Accept-Encoding", s.codecs.AcceptEncoding()))
			return false
		}

		if err := decoder.ResetDecompressor(s.body, s.cfg.NET.ReadBufferSize); err != nil {
			s.abort(err, notNil(request, s.router.OnError(request, status.ErrBadRequest)))
			return false
		}

		request.Body.Reset(decoder)
	}

	resp := notNil(request, s.router.OnRequest(request))
	switch {
	case !keepAlive && request.Protocol.AtLeast11():
		resp.Header("Connection", "close")
	case keepAlive && !request.Protocol.AtLeast11():
		resp.Header("Connection", "keep-alive")
	}

	if err := s.serializer.Write(request.Protocol, request.Method, resp.Expose()); err != nil {
		s.logger.Printf("%s: failed to write the response: %s", s.client.Remote(), err)
		return false
	}

	// the path is decoded, so it might contain arbitrary bytes
	s.logger.Printf("%s %s %d", request.Method, http.Escape(request.Path), resp.Expose().Code)

	// whatever the handler didn't read must be consumed before the next request
	if err := s.body.drain(); err != nil {
		s.logger.Printf("%s: connection aborted: %s", s.client.Remote(), err)
		return false
	}

	if !keepAlive || s.serializer.Closing() {
		return false
	}

	// the leftover is owned by the parser and is gone after the reset
	s.pending = append(s.pending[:0], p.Leftover()...)
	if len(s.pending) > 0 {
		s.client.Pushback(s.pending)
	}

	p.Reset()
	request.Reset()

	return true
}

// keepAlive decides whether the connection persists after the current request.
func (s *session) keepAlive() bool {
	values := slices.Collect(s.request.Headers.Values("connection"))

	if s.request.Protocol.AtLeast11() {
		return !httpguts.HeaderValuesContainsToken(values, "close")
	}

	return httpguts.HeaderValuesContainsToken(values, "keep-alive")
}

func (s *session) onReadError(err error) {
	if s.parser.State() == http1.WaitingStartLine || s.ctx.Err() != nil {
		// idle connections are closed silently
		return
	}

	s.fillRequest()

	if errors.Is(err, os.ErrDeadlineExceeded) {
		s.abort(err, notNil(s.request, s.router.OnError(s.request, status.ErrRequestTimeout)))
		return
	}

	s.logger.Printf("%s: connection aborted: %s", s.client.Remote(), err)
}

func (s *session) onParseError(err error) {
	if status.IsSilent(err) {
		s.logger.Printf("%s: connection aborted: %s", s.client.Remote(), err)
		return
	}

	s.fillRequest()
	s.abort(err, notNil(s.request, s.router.OnError(s.request, err)))
}

// fillRequest fills the request with whatever the parser has managed to parse so far.
func (s *session) fillRequest() {
	s.request.Method = s.parser.Method()
	s.request.Path = s.parser.Path()

	if protocol := s.parser.Proto(); protocol != proto.Unknown {
		s.request.Protocol = protocol
	}
}

// abort writes the last response on the connection. Write errors don't matter anymore, as
// the connection is closed anyway.
func (s *session) abort(reason error, resp *http.Response) {
	s.logger.Printf("%s: connection aborted: %s", s.client.Remote(), reason)
	resp.Header("Connection", "close")
	_ = s.serializer.Write(s.request.Protocol, s.request.Method, resp.Expose())
}

func notNil(request *http.Request, resp *http.Response) *http.Response {
	if resp != nil {
		return resp
	}

	return http.Respond(request)
}
