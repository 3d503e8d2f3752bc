package router

import (
	"strings"

	"github.com/indigo-web/wire/http"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/router/pathmatch"
)

// Router is the handler of parsed requests, as seen by the server.
type Router interface {
	OnRequest(request *http.Request) *http.Response
	// OnError is called when the request couldn't be processed. The request might be
	// only partially filled, or not filled at all.
	OnError(request *http.Request, err error) *http.Response
}

type (
	Handler func(*http.Request) *http.Response
	// Middleware works like a chain of nested calls, next may be even directly
	// handler. But if we are not a closing middleware, we will call next
	// middleware that is simply a partial middleware with already provided next
	Middleware func(next Handler, request *http.Request) *http.Response
)

type methodsMap [method.Count]Handler

// methodSet is a bitmask, where every bit corresponds to a method.Method value.
type methodSet uint16

func (m methodSet) String() string {
	var allowed []string
	for _, mtd := range method.List {
		if m&(1<<mtd) != 0 {
			allowed = append(allowed, mtd.String())
		}
	}

	return strings.Join(allowed, ",")
}

type route struct {
	pattern  pathmatch.Pattern
	handlers methodsMap
	allow    methodSet
}

// Table is the built-in Router implementation. Every registered pattern is matched against
// the request path; the lowest non-negative weight wins, ties are broken by preferring the
// more literal pattern, and then by the registration order.
type Table struct {
	root        *Table
	prefix      string
	middlewares []Middleware
	routes      []*route
	errHandlers map[status.Code]Handler
}

var _ Router = new(Table)

func New() *Table {
	t := &Table{
		errHandlers: newErrorHandlers(),
	}
	t.root = t

	return t
}

// OnRequest dispatches the request to the best matching handler. Captured segments are
// stored into request.Vars. HEAD requests fall back to GET handlers.
func (t *Table) OnRequest(request *http.Request) *http.Response {
	segments := pathmatch.Split(request.Path)

	var (
		best      *route
		bestMatch pathmatch.Match
		allow     methodSet
	)

	for _, r := range t.root.routes {
		match := r.pattern.MatchSegments(segments)
		if !match.Matched() {
			continue
		}

		if r.handler(request.Method) == nil {
			allow |= r.allow
			continue
		}

		if best == nil || better(match, r, bestMatch, best) {
			best, bestMatch = r, match
		}
	}

	if best == nil {
		if allow == 0 {
			return t.OnError(request, status.ErrNotFound)
		}

		request.Env.AllowedMethods = allow.String()
		return t.OnError(request, status.ErrMethodNotAllowed)
	}

	for _, c := range bestMatch.Captures {
		request.Vars.Add(c.Name, c.Value)
	}

	return best.handler(request.Method)(request)
}

func better(match pathmatch.Match, r *route, than pathmatch.Match, current *route) bool {
	if match.Weight != than.Weight {
		return match.Weight < than.Weight
	}

	return r.pattern.Literal() > current.pattern.Literal()
}

// OnError calls the error handler registered for the error's code, or the universal one.
func (t *Table) OnError(request *http.Request, err error) *http.Response {
	request.Env.Error = err

	handler, found := t.root.errHandlers[status.CodeOf(err)]
	if !found {
		handler = t.root.errHandlers[AllErrors]
	}

	return handler(request)
}

func (r *route) handler(m method.Method) Handler {
	if int(m) >= len(r.handlers) {
		return nil
	}

	if h := r.handlers[m]; h != nil || m != method.HEAD {
		return h
	}

	return r.handlers[method.GET]
}

func (r *route) updateAllow() {
	r.allow = 0
	for _, m := range method.List {
		if r.handler(m) != nil {
			r.allow |= 1 << m
		}
	}
}
