// Package tcp implements the plain-TCP dialer used by the request engine.
// Encryption is an explicit Non-goal of the zunkdb wire protocol, so unlike
// its teacher this dialer never wraps the connection in TLS.
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/zunkfs/zunkdb-go/pkg/transport"
)

// Dialer implements transport.Dialer over plain TCP.
type Dialer struct {
	// Timeout bounds the TCP handshake itself; it is independent of the
	// request's overall deadline, which governs how long the engine waits
	// for the connect to complete.
	Timeout time.Duration
}

// New creates a TCP dialer with the teacher's own 30s connect timeout.
func New() transport.Dialer {
	return &Dialer{Timeout: 30 * time.Second}
}

// Name returns "tcp".
func (d *Dialer) Name() string {
	return "tcp"
}

// Dial establishes a plain TCP connection to addr.
func (d *Dialer) Dial(ctx context.Context, addr string) (transport.Conn, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	dialer := &net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp: dial %s: %w", addr, err)
	}
	return &Conn{conn: conn}, nil
}

// Conn wraps a *net.TCPConn to satisfy transport.Conn.
type Conn struct {
	conn net.Conn
}

func (c *Conn) Read(b []byte) (int, error)  { return c.conn.Read(b) }
func (c *Conn) Write(b []byte) (int, error) { return c.conn.Write(b) }
func (c *Conn) Close() error                { return c.conn.Close() }
func (c *Conn) LocalAddr() net.Addr         { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr        { return c.conn.RemoteAddr() }
func (c *Conn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}
