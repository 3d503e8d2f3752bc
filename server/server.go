// Package server drives HTTP/1.x connections: it accepts them, feeds the incoming bytes to
// the parser, dispatches complete request heads to the router and writes the responses back.
package server

import (
	"context"
	"log"
	"net"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/codec"
	"github.com/indigo-web/wire/router"
	"github.com/indigo-web/wire/transport"
)

// Logger receives one line per served request and one per aborted connection.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

// App is the entrypoint of the server. All of its methods are meant to be called before
// Serve.
type App struct {
	addrs  []string
	cfg    *config.Config
	codecs []codec.Codec
	logger Logger
	hooks  hooks
}

// New returns a new App instance, listening on the address.
func New(addr string) *App {
	return &App{
		addrs:  []string{addr},
		cfg:    config.Default(),
		codecs: codec.Default(),
		logger: log.Default(),
	}
}

// Tune replaces the default configuration.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Bind adds one more address to listen on.
func (a *App) Bind(addr string) *App {
	a.addrs = append(a.addrs, addr)
	return a
}

// Codec replaces the set of supported content codings. Passing none leaves identity
// the only acceptable coding.
func (a *App) Codec(codecs ...codec.Codec) *App {
	a.codecs = codecs
	return a
}

// Logger replaces log.Default().
func (a *App) Logger(logger Logger) *App {
	if logger == nil {
		logger = NopLogger
	}

	a.logger = logger
	return a
}

// NotifyOnStart calls the callback with the actual addresses, once all of them are bound.
// It isn't strongly guaranteed that they'll be able to accept new connections immediately.
func (a *App) NotifyOnStart(cb func(addrs []net.Addr)) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback as soon as all the listeners are closed and all the
// connections are served.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve runs the application until the context is done or any listener fails. If nil is
// passed instead of a router, an empty one is used, responding 404 to everything.
func (a *App) Serve(ctx context.Context, r router.Router) error {
	if r == nil {
		r = router.New()
	}

	sup := transport.NewSupervisor()
	for _, addr := range a.addrs {
		if err := sup.Add(addr, transport.NewTCP(), a.onConn(ctx, r)); err != nil {
			return err
		}
	}

	if a.hooks.OnStart != nil {
		a.hooks.OnStart(sup.Addrs())
	}

	err := sup.Run(ctx, a.cfg.NET)

	if a.hooks.OnStop != nil {
		a.hooks.OnStop()
	}

	return err
}

func (a *App) onConn(ctx context.Context, r router.Router) func(net.Conn) {
	return func(conn net.Conn) {
		client := transport.NewClient(ctx, conn, a.cfg.NET)
		Serve(ctx, a.cfg, r, a.codecs, a.logger, client)
		_ = client.Close()
	}
}

type hooks struct {
	OnStart func([]net.Addr)
	OnStop  func()
}
