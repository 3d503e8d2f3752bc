package router

import (
	"fmt"

	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/router/pathmatch"
)

// AllErrors is used to be passed into Table.RouteError, indicating by that,
// that the handler must handle ALL errors (if concrete error's handler won't
// override it)
const AllErrors = status.Code(0)

// Route is a base method for registering handlers. The pattern consists of literal
// segments, wildcards (e.g. *.png) and captures: {name} or {}. Invalid patterns and
// duplicate registrations result in panicking.
func (t *Table) Route(m method.Method, pattern string, handler Handler, middlewares ...Middleware) *Table {
	if m == method.Unknown || int(m) >= len(methodsMap{}) {
		panic(fmt.Sprintf("cannot register a route for the method %d", m))
	}

	parsed, err := pathmatch.Parse(t.prefix + pattern)
	if err != nil {
		panic(fmt.Sprintf("%s: %s", pattern, err))
	}

	r := t.root.lookup(parsed.String())
	if r == nil {
		r = &route{pattern: parsed}
		t.root.routes = append(t.root.routes, r)
	}

	if r.handlers[m] != nil {
		panic(fmt.Sprintf("route already registered: %s %s", m, parsed))
	}

	all := append(append([]Middleware(nil), t.middlewares...), middlewares...)
	r.handlers[m] = compose(handler, all)
	r.updateAllow()

	return t
}

func (t *Table) lookup(pattern string) *route {
	for _, r := range t.routes {
		if r.pattern.String() == pattern {
			return r
		}
	}

	return nil
}

// RouteError adds an error handler for a corresponding HTTP error code. The error itself
// is available via request.Env.Error.
//
// Note: error codes are only 4xx and 5xx. Registering for other codes will result
// in panicking.
//
// WARNING: calling this method from groups will affect ALL routers, including root
func (t *Table) RouteError(handler Handler, codes ...status.Code) *Table {
	for _, code := range codes {
		if code != AllErrors && (code < 400 || code > 599) {
			panic(fmt.Sprintf("cannot route the %d code, as it isn't an error", code))
		}

		t.root.errHandlers[code] = handler
	}

	return t
}
