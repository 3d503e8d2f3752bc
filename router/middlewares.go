package router

import "github.com/indigo-web/wire/http"

// Use adds middlewares into the list of group middlewares. They are applied to the routes
// registered afterward only.
func (t *Table) Use(middlewares ...Middleware) *Table {
	t.middlewares = append(t.middlewares, middlewares...)
	return t
}

// compose makes a single Handler from a chain of middlewares and the handler in the end.
// The first middleware is the outermost one.
func compose(handler Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, next := middlewares[i], handler
		handler = func(request *http.Request) *http.Response {
			return mw(next, request)
		}
	}

	return handler
}
