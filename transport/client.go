package transport

import (
	"context"
	"net"
	"time"

	"github.com/indigo-web/wire/config"
)

// Client is the connection as seen by the server: a source of byte pieces, which may be
// partially returned back, and a sink for responses.
type Client interface {
	// Read returns the next piece of data. The piece is valid only until the next Read.
	Read() ([]byte, error)
	// Pushback returns the unprocessed part of the last piece, so the next Read returns it
	// again.
	Pushback([]byte)
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

var _ Client = new(conn)

type conn struct {
	sock      net.Conn
	ctx       context.Context
	interrupt func() bool
	idle      time.Duration
	buff      []byte
	unread    []byte
}

// NewClient wraps the connection. Once the context is done, a blocked Read is interrupted
// and all the following ones fail with the context's error.
func NewClient(ctx context.Context, c net.Conn, cfg config.NET) Client {
	interrupt := context.AfterFunc(ctx, func() {
		_ = c.SetReadDeadline(time.Now())
	})

	return &conn{
		sock:      c,
		ctx:       ctx,
		interrupt: interrupt,
		idle:      cfg.ReadTimeout,
		buff:      make([]byte, cfg.ReadBufferSize),
	}
}

// Read renews the deadline on every call, so only connections staying idle for too long
// time out.
func (c *conn) Read() ([]byte, error) {
	if unread := c.unread; len(unread) > 0 {
		c.unread = nil
		return unread, nil
	}

	if err := c.sock.SetReadDeadline(time.Now().Add(c.idle)); err != nil {
		return nil, err
	}

	// the interruption might have happened before the deadline was renewed
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	n, err := c.sock.Read(c.buff)

	return c.buff[:n], err
}

func (c *conn) Pushback(b []byte) {
	c.unread = b
}

func (c *conn) Write(b []byte) (int, error) {
	return c.sock.Write(b)
}

func (c *conn) Conn() net.Conn {
	return c.sock
}

func (c *conn) Remote() net.Addr {
	return c.sock.RemoteAddr()
}

func (c *conn) Close() error {
	c.interrupt()
	return c.sock.Close()
}
