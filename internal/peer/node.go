package peer

import (
	"bufio"
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/zunkfs/zunkdb-go/pkg/transport"
	"github.com/zunkfs/zunkdb-go/pkg/wire"
)

// State is a node's position in the non-blocking-connect state machine
// described in spec §4.3/§9: a node is always in exactly one of these
// three states, driven by a single transition function rather than a
// callback graph.
type State int32

const (
	// StateConnecting is the node's initial state: the dial goroutine is
	// in flight and no bytes have been exchanged yet.
	StateConnecting State = iota
	// StateLive means the socket is connected; reads/writes are enabled.
	StateLive
	// StateDoomed means the connect attempt failed or the connection
	// errored; the node must be destroyed or dead-listed.
	StateDoomed
)

// EventKind distinguishes the events a Node delivers to whichever request
// currently owns it.
type EventKind int

const (
	EventConnected EventKind = iota
	EventConnectFailed
	EventFrame
	EventNodeError
)

// Event is one notification from a Node's background goroutines to the
// request event loop that currently owns it. It is the idiomatic-Go
// rendering of the readiness events a libevent-style watcher would deliver.
type Event struct {
	Node  *Node
	Kind  EventKind
	Frame wire.Frame
	Err   error
}

// Node is one peer connection: an address, a possibly-still-connecting
// socket, and the current request's event sink. Life stages match spec
// §4.3: Created/Connecting/Live/Released, collapsed here onto State plus
// cache membership (idle vs. dead-listed vs. attached).
type Node struct {
	Addr Address

	state atomic.Int32
	conn  transport.Conn

	mu   sync.Mutex
	sink chan<- Event // nil while idle or dead-listed; set while attached to a request

	// idleElem links this node into the cache's idle list; only the
	// cache package touches it, always under the cache mutex.
	idleElem *list.Element
}

// NewNode constructs a Node that has not yet begun connecting.
func NewNode(addr Address) *Node {
	n := &Node{Addr: addr}
	n.state.Store(int32(StateConnecting))
	return n
}

// State returns the node's current connect-state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Attach binds sink as the destination for this node's future events,
// transferring ownership from the cache (or from node creation) to a
// request. Must be called before Dial or before the node is handed to a
// request that will read/write it.
func (n *Node) Attach(sink chan<- Event) {
	n.mu.Lock()
	n.sink = sink
	n.mu.Unlock()
}

// Detach clears the event sink, the Go equivalent of spec §4.2's "disable
// its I/O" step performed when a node is released to the idle cache or
// dead-listed: any frame arriving after this call is silently dropped
// rather than delivered to a request that no longer owns the node.
func (n *Node) Detach() {
	n.mu.Lock()
	n.sink = nil
	n.mu.Unlock()
}

func (n *Node) emit(ev Event) {
	n.mu.Lock()
	sink := n.sink
	n.mu.Unlock()
	if sink != nil {
		sink <- ev
	}
}

// Dial starts the non-blocking connect in a background goroutine. payload,
// if non-empty, is the outbound request line; per spec §9 it is queued and
// flushed only after the socket transitions to Live, which this
// implementation achieves by writing it from the same goroutine
// immediately after a successful dial and before the node is reported
// connected.
func (n *Node) Dial(ctx context.Context, dialer transport.Dialer, payload []byte) {
	go func() {
		conn, err := dialer.Dial(ctx, n.Addr.String())
		if err != nil {
			n.state.Store(int32(StateDoomed))
			n.emit(Event{Node: n, Kind: EventConnectFailed, Err: err})
			return
		}
		if len(payload) > 0 {
			if _, werr := conn.Write(payload); werr != nil {
				n.state.Store(int32(StateDoomed))
				conn.Close()
				n.emit(Event{Node: n, Kind: EventConnectFailed, Err: werr})
				return
			}
		}
		n.conn = conn
		n.state.Store(int32(StateLive))
		n.emit(Event{Node: n, Kind: EventConnected})
		n.readLoop()
	}()
}

// readLoop runs for the lifetime of a live connection, across however many
// requests reuse the node via the idle cache; emit() silently drops frames
// delivered while the node has no current owner.
func (n *Node) readLoop() {
	r := wire.NewReader(bufio.NewReader(n.conn))
	for {
		frame, err := r.ReadFrame()
		if err != nil {
			n.state.Store(int32(StateDoomed))
			n.emit(Event{Node: n, Kind: EventNodeError, Err: err})
			return
		}
		n.emit(Event{Node: n, Kind: EventFrame, Frame: frame})
	}
}

// Send writes payload to an already-live node. Called when a cache hit
// attaches an already-connected node to a new request.
func (n *Node) Send(payload []byte) error {
	_, err := n.conn.Write(payload)
	return err
}

// Close releases the underlying socket, if any. Safe to call more than
// once and on a node that never finished connecting.
func (n *Node) Close() error {
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
