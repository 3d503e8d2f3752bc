package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/indigo-web/wire/config"
)

// Supervisor runs multiple transports at once. As soon as any of them returns or the context
// is done, all the transports are stopped, waited for and closed.
type Supervisor struct {
	listeners []listener
}

type listener struct {
	transport Transport
	onConn    func(conn net.Conn)
}

func NewSupervisor() *Supervisor {
	return new(Supervisor)
}

// Add binds the transport to the address. If the binding fails, all the transports bound
// so far are closed.
func (s *Supervisor) Add(addr string, transport Transport, onConn func(conn net.Conn)) error {
	if err := transport.Bind(addr); err != nil {
		s.closeAll()
		return fmt.Errorf("bind %q: %w", addr, err)
	}

	s.listeners = append(s.listeners, listener{
		transport: transport,
		onConn:    onConn,
	})

	return nil
}

// Addrs returns the addresses of all the bound transports, in order they were added.
func (s *Supervisor) Addrs() []net.Addr {
	addrs := make([]net.Addr, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.transport.Addr())
	}

	return addrs
}

// Run blocks until the context is done or the first transport returns. The error of that
// transport is returned. Run must be called at most once.
func (s *Supervisor) Run(ctx context.Context, cfg config.NET) error {
	if len(s.listeners) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		first   sync.Once
		failure error
		running sync.WaitGroup
	)

	for _, l := range s.listeners {
		running.Add(1)
		go func(l listener) {
			defer running.Done()

			err := l.transport.Listen(cfg, l.onConn)
			first.Do(func() {
				failure = err
				cancel()
			})
		}(l)
	}

	<-ctx.Done()
	// errors of the transports returning after being stopped are no longer of interest
	first.Do(func() {})

	for _, l := range s.listeners {
		l.transport.Stop()
	}

	running.Wait()

	for _, l := range s.listeners {
		l.transport.Wait()
	}

	s.closeAll()

	return failure
}

func (s *Supervisor) closeAll() {
	for _, l := range s.listeners {
		l.transport.Close()
	}
}
