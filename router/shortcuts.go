package router

import "github.com/indigo-web/wire/http/method"

// Get is a shortcut for registering GET-requests.
func (t *Table) Get(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.GET, path, handler, middlewares...)
}

// Head is a shortcut for registering HEAD-requests. By default, HEAD requests are served by
// GET handlers.
func (t *Table) Head(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.HEAD, path, handler, middlewares...)
}

// Post is a shortcut for registering POST-requests.
func (t *Table) Post(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.POST, path, handler, middlewares...)
}

// Put is a shortcut for registering PUT-requests.
func (t *Table) Put(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.PUT, path, handler, middlewares...)
}

// Delete is a shortcut for registering DELETE-requests.
func (t *Table) Delete(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.DELETE, path, handler, middlewares...)
}

// Options is a shortcut for registering OPTIONS-requests.
func (t *Table) Options(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.OPTIONS, path, handler, middlewares...)
}

// Patch is a shortcut for registering PATCH-requests.
func (t *Table) Patch(path string, handler Handler, middlewares ...Middleware) *Table {
	return t.Route(method.PATCH, path, handler, middlewares...)
}
