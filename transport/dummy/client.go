package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/wire/transport"
)

var _ transport.Client = new(Client)

// Client returns the preset pieces one by one and io.EOF afterward, unless set to loop.
// All the written data is journaled, making it thereby a universal mock suitable for most
// of the tests.
type Client struct {
	pieces  [][]byte
	pointer int
	pending []byte
	loop    bool
	closed  bool
	conn    *Conn
}

func NewClient(pieces ...[]byte) *Client {
	return &Client{
		pieces: pieces,
		conn:   new(Conn),
	}
}

// NewNopClient returns a client, which has nothing to read.
func NewNopClient() *Client {
	return NewClient()
}

// LoopReads makes the client start over, once all the pieces are returned. Mainly used for
// benchmarking.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if len(c.pending) > 0 {
		data, c.pending = c.pending, nil
		return data, nil
	}

	if c.pointer >= len(c.pieces) {
		if !c.loop || len(c.pieces) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.pieces[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(b []byte) {
	c.pending = b
}

func (c *Client) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	return c.conn.Write(p)
}

// Written returns everything was written into the client.
func (c *Client) Written() string {
	return string(c.conn.Journal())
}

func (c *Client) Conn() net.Conn {
	return c.conn
}

func (c *Client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

func (c *Client) Closed() bool {
	return c.closed
}
