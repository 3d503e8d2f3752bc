package dummy

import (
	"bytes"
	"io"
	"net"
	"time"
)

var (
	_ net.Conn = new(Conn)

	localAddr  = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
	remoteAddr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
)

// Conn is a net.Conn, which has nothing to read and journals everything written, unless
// the journaling is disabled. Deadlines are accepted and ignored.
type Conn struct {
	journal bytes.Buffer
	discard bool
}

// Nop disables the journaling.
func (c *Conn) Nop() *Conn {
	c.discard = true
	return c
}

// Journal returns everything written so far.
func (c *Conn) Journal() []byte {
	return c.journal.Bytes()
}

func (c *Conn) Write(b []byte) (int, error) {
	if c.discard {
		return len(b), nil
	}

	return c.journal.Write(b)
}

func (*Conn) Read([]byte) (int, error)         { return 0, io.EOF }
func (*Conn) Close() error                     { return nil }
func (*Conn) LocalAddr() net.Addr              { return localAddr }
func (*Conn) RemoteAddr() net.Addr             { return remoteAddr }
func (*Conn) SetDeadline(time.Time) error      { return nil }
func (*Conn) SetReadDeadline(time.Time) error  { return nil }
func (*Conn) SetWriteDeadline(time.Time) error { return nil }
