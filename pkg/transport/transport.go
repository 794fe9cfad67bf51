// Package transport defines the byte-stream contract that the HTTP and
// WebSocket layers are built against. The core never depends on a concrete
// net.Conn: anything that can send, receive, and close a stream of bytes,
// plain TCP or TLS-wrapped, is a valid transport.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
)

// Transport is the minimal asynchronous byte-stream contract consumed by
// the protocol engine (spec §6.1). Send and Recv are suspending in the
// original coroutine design; in Go that maps to blocking calls a caller
// runs on its own goroutine, with ctx used for cancellation.
type Transport interface {
	// Send writes buf and returns the number of bytes written. A return of
	// 0 with a nil error indicates the peer closed the connection on the
	// write path.
	Send(ctx context.Context, buf []byte) (int, error)
	// Recv reads into buf and returns the number of bytes read. A return
	// of 0 with a nil error indicates peer EOF.
	Recv(ctx context.Context, buf []byte) (int, error)
	// Close performs a graceful shutdown of the underlying stream.
	Close() error
	// LocalAddr and RemoteAddr expose endpoint introspection.
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Conn adapts any net.Conn (TCP or a *tls.Conn) to the Transport contract.
// It is the only concrete Transport the core itself provides; the async
// I/O reactor and the TLS engine binding that produce the net.Conn are
// external collaborators (spec §1).
type Conn struct {
	nc net.Conn
}

// NewConn wraps an established net.Conn as a Transport.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// Send implements Transport. ctx cancellation is honored via the
// connection's deadline when the context carries one; the underlying
// net.Conn.Write call itself is not natively cancellable.
func (c *Conn) Send(ctx context.Context, buf []byte) (int, error) {
	if err := applyDeadline(ctx, c.nc); err != nil {
		return 0, err
	}
	return c.nc.Write(buf)
}

// Recv implements Transport.
func (c *Conn) Recv(ctx context.Context, buf []byte) (int, error) {
	if err := applyDeadline(ctx, c.nc); err != nil {
		return 0, err
	}
	n, err := c.nc.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

// Close implements Transport.
func (c *Conn) Close() error { return c.nc.Close() }

// LocalAddr implements Transport.
func (c *Conn) LocalAddr() net.Addr { return c.nc.LocalAddr() }

// RemoteAddr implements Transport.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

func applyDeadline(ctx context.Context, nc net.Conn) error {
	if ctx == nil {
		return nil
	}
	if dl, ok := ctx.Deadline(); ok {
		return nc.SetDeadline(dl)
	}
	return ctx.Err()
}

