// Package transport abstracts how the request engine opens an outbound
// connection to a peer, so the node lifecycle in internal/peer does not
// need to know whether it is talking TCP or QUIC.
package transport

import (
	"context"
	"net"
	"time"
)

// Conn is the subset of net.Conn the node lifecycle and wire codec need.
// Both the TCP and QUIC dialers return a value satisfying this.
type Conn interface {
	Read(b []byte) (n int, err error)
	Write(b []byte) (n int, err error)
	Close() error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	SetDeadline(t time.Time) error
}

// Dialer opens an outbound connection to addr ("host:port"). This module
// is a client only (spec's Non-goals exclude server-side peer behaviour),
// so Dialer has no Listen side.
type Dialer interface {
	// Dial establishes a connection to addr.
	Dial(ctx context.Context, addr string) (Conn, error)

	// Name identifies the transport, e.g. "tcp" or "quic"; this is the
	// value accepted by the config spec's transport= option.
	Name() string
}

// Registry looks up a Dialer by name, used when a config spec names a
// transport explicitly (§6: "transport=<tcp|quic>").
type Registry struct {
	dialers map[string]Dialer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialers: make(map[string]Dialer)}
}

// Register adds a dialer under name.
func (r *Registry) Register(name string, d Dialer) {
	r.dialers[name] = d
}

// Get returns the dialer registered under name.
func (r *Registry) Get(name string) (Dialer, bool) {
	d, ok := r.dialers[name]
	return d, ok
}
