package http

import (
	"context"
	"net"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/cookie"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
	Params  = *kv.Storage
	Vars    = *kv.Storage
)

// Request is a parsed request head along with the lazily read body. A single Request is
// reused for all the requests of a connection, so none of its fields may be retained after
// the handler returns.
type Request struct {
	Method method.Method
	// Path is decoded and normalized: no consecutive slashes and no trailing slash, unless
	// the path is the root.
	Path     string
	Params   Params
	Protocol proto.Protocol
	// Headers hold lower-cased keys. Cookie headers never end up here, see Cookies.
	Headers Headers
	Cookies *cookie.Jar
	// Vars are the values captured by the route pattern.
	Vars Vars
	// Remote may as well be a proxy.
	Remote net.Addr
	// Ctx is done as soon as the server is shutting down. It lives as long as the connection.
	Ctx  context.Context
	Env  Environment
	Body *Body

	response *Response
}

// Environment carries the router's verdict to error handlers.
type Environment struct {
	Error error
	// AllowedMethods is the Allow value, set on 405 Method Not Allowed only.
	AllowedMethods string
}

func NewRequest(cfg *config.Config, response *Response, remote net.Addr) *Request {
	r := &Request{
		Method:   method.Unknown,
		Protocol: proto.HTTP11,
		Params:   kv.NewPrealloc(cfg.URI.ParamsPrealloc),
		Headers:  kv.NewPrealloc(cfg.Headers.Number.Default),
		Cookies:  cookie.NewJar(),
		Vars:     kv.New(),
		Remote:   remote,
		Ctx:      context.Background(),
		response: response,
	}
	r.Body = NewBody(r, nil)

	return r
}

// Respond returns the response builder, cleared. There's one builder per connection, so any
// builder obtained earlier is cleared as well.
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

// Range returns the Range header value, if presented.
func (r *Request) Range() (value string, found bool) {
	return r.Headers.Get("range")
}

// Reset clears everything specific to a single request. Remote and Ctx are kept.
func (r *Request) Reset() {
	r.Method = method.Unknown
	r.Path = ""
	r.Params.Clear()
	r.Headers.Clear()
	r.Cookies.Clear()
	r.Vars.Clear()
	r.Env = Environment{}
}
