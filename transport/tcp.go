package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/wire/config"
)

var _ Transport = new(TCP)

// TCP is a plain TCP listener.
type TCP struct {
	listener *net.TCPListener
	stopped  atomic.Bool
	conns    sync.WaitGroup
}

func NewTCP() *TCP {
	return new(TCP)
}

func (t *TCP) Bind(addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}

	t.listener = l.(*net.TCPListener)
	return nil
}

func (t *TCP) Addr() net.Addr {
	return t.listener.Addr()
}

// Listen runs the accept loop. The stop flag can't interrupt a blocked Accept by itself,
// so the listener wakes up every cfg.AcceptLoopInterruptPeriod to check it.
func (t *TCP) Listen(cfg config.NET, onConn func(conn net.Conn)) error {
	for {
		if t.stopped.Load() {
			return nil
		}

		deadline := time.Now().Add(cfg.AcceptLoopInterruptPeriod)
		if err := t.listener.SetDeadline(deadline); err != nil {
			return err
		}

		conn, err := t.listener.Accept()
		switch {
		case err == nil:
		case errors.Is(err, os.ErrDeadlineExceeded):
			continue
		case t.stopped.Load():
			return nil
		default:
			return err
		}

		t.conns.Add(1)
		go t.serve(conn, onConn)
	}
}

func (t *TCP) serve(conn net.Conn, onConn func(net.Conn)) {
	defer t.conns.Done()
	defer conn.Close()

	onConn(conn)
}

func (t *TCP) Stop() {
	t.stopped.Store(true)
	// wakes up the blocked Accept immediately
	_ = t.listener.SetDeadline(time.Now())
}

func (t *TCP) Wait() {
	t.conns.Wait()
}

func (t *TCP) Close() {
	if t.listener != nil {
		_ = t.listener.Close()
	}
}
