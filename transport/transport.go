package transport

import (
	"net"

	"github.com/indigo-web/wire/config"
)

// Transport is a listening socket, driven by the Supervisor.
type Transport interface {
	// Bind opens the listener. It's called exactly once, before anything else.
	Bind(addr string) error
	// Addr returns the actually bound address, which differs from the requested one when
	// the port 0 was used.
	Addr() net.Addr
	// Listen accepts connections until stopped, serving each one by the callback in its own
	// goroutine. Returns nil if stopped, otherwise the error, which broke the loop.
	Listen(cfg config.NET, onConn func(conn net.Conn)) error
	// Stop makes Listen return as soon as possible. Connections being served aren't
	// affected.
	Stop()
	// Wait blocks until all the connection callbacks have returned.
	Wait()
	Close()
}
