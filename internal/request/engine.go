// Package request implements the per-call request engine: the bounded
// fan-out dispatcher described in spec §4.4, the core of the zunkdb
// client. One Execute call owns a private event loop and a private set of
// attached nodes for the duration of a single read_chunk or write_chunk
// call; the node cache is the only state it shares with other concurrent
// calls.
package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zunkfs/zunkdb-go/internal/peer"
	"github.com/zunkfs/zunkdb-go/pkg/constants"
	"github.com/zunkfs/zunkdb-go/pkg/digest"
	"github.com/zunkfs/zunkdb-go/pkg/transport"
	"github.com/zunkfs/zunkdb-go/pkg/wire"
)

// Sentinel errors matching the taxonomy of spec §7. InvalidConfig and
// NoMemory are not engine-level concerns (they belong to spec parsing and
// to Go's own allocator respectively) and so have no sentinel here; the
// façade package surfaces InvalidConfig from ParseSpec directly.
var (
	// ErrTimeout is returned when the overall request deadline fires
	// before any peer produced a verified result.
	ErrTimeout = errors.New("request: deadline exceeded")

	// ErrIO is returned when the candidate address set is exhausted with
	// no verified answer and the deadline had not yet fired.
	ErrIO = errors.New("request: no peer produced a verified result")
)

// Config carries everything one Execute call needs that is not specific
// to the particular read/write it is performing.
type Config struct {
	StartAddr      peer.Address
	ExtraAddrs     []peer.Address // seeded from the peer directory, if any
	Timeout        time.Duration
	MaxConcurrency int
	Dialer         transport.Dialer
	Cache          *peer.Cache
	Verify         digest.Verifier
	// OnSuccess, if set, is called with the address of each in-flight node
	// that sends a request_done matching the digest, so the façade can
	// record it in the peer directory. It is called when the frame arrives,
	// whether or not the call itself then succeeds.
	OnSuccess func(peer.Address)
}

// Execute runs the request engine's main loop (spec §4.4) for one call.
// chunkOut is nil for a write (only a request_done echo is expected);
// otherwise it must be a buffer of length constants.ChunkSize that is
// filled in place on success.
func Execute(ctx context.Context, cfg Config, payload []byte, dig [constants.DigestSize]byte, chunkOut []byte) error {
	if chunkOut != nil && len(chunkOut) != constants.ChunkSize {
		return fmt.Errorf("request: chunkOut must be %d bytes, got %d", constants.ChunkSize, len(chunkOut))
	}

	e := &engine{
		cfg:      cfg,
		digest:   dig,
		payload:  payload,
		chunkOut: chunkOut,
		events:   make(chan peer.Event, 16),
		inFlight: make(map[*peer.Node]peer.Address),
	}
	e.addrs = append(e.addrs, cfg.StartAddr)
	for _, a := range cfg.ExtraAddrs {
		e.addAddr(a)
	}

	deadline := time.NewTimer(cfg.Timeout)
	defer deadline.Stop()

	return e.run(ctx, deadline.C)
}

type engine struct {
	cfg      Config
	digest   [constants.DigestSize]byte
	payload  []byte
	chunkOut []byte // nil => write path

	addrs  []peer.Address
	cursor int

	inFlight      map[*peer.Node]peer.Address
	inFlightCount int
	done          int
	captured      bool // a read candidate body is sitting in chunkOut, unverified

	events chan peer.Event
}

func (e *engine) addAddr(a peer.Address) {
	for _, existing := range e.addrs {
		if existing == a {
			return
		}
	}
	e.addrs = append(e.addrs, a)
}

func (e *engine) run(ctx context.Context, deadlineC <-chan time.Time) error {
	for {
		e.dispatch(ctx)

		select {
		case <-deadlineC:
			e.releaseAll()
			return ErrTimeout
		default:
		}
		if len(e.inFlight) == 0 && e.cursor >= len(e.addrs) {
			return ErrIO
		}

		select {
		case <-deadlineC:
			e.releaseAll()
			return ErrTimeout
		case ev := <-e.events:
			e.handle(ev)
		}

		if e.done > 0 {
			if e.chunkOut == nil {
				return nil // write succeeds on the first request_done echo
			}
			if e.captured && e.cfg.Verify(e.chunkOut, e.digest) {
				return nil
			}
			// Captured body was wrong, or not yet received: keep waiting.
			e.captured = false
			e.done--
		}
	}
}

// dispatch implements spec §4.4's dispatch step: while there is room in
// the fan-out window and candidates remain, send the payload to the next
// address.
func (e *engine) dispatch(ctx context.Context) {
	for e.cursor < len(e.addrs) && e.inFlightCount < e.cfg.MaxConcurrency {
		addr := e.addrs[e.cursor]
		e.cursor++
		e.inFlightCount++ // consumed regardless of dispatch outcome, see spec §7

		node, result := e.cfg.Cache.Acquire(addr)
		switch result {
		case peer.Dead:
			// Slot already counted against in_flight above; no node to
			// track, so this slot is never refunded (preserves the
			// source's documented behaviour, spec §7).
		case peer.Hit:
			node.Attach(e.events)
			e.inFlight[node] = addr
			if err := node.Send(e.payload); err != nil {
				e.destroyNode(node)
			}
		case peer.Miss:
			node = peer.NewNode(addr)
			node.Attach(e.events)
			e.inFlight[node] = addr
			node.Dial(ctx, e.cfg.Dialer, e.payload)
		}
	}
}

func (e *engine) handle(ev peer.Event) {
	switch ev.Kind {
	case peer.EventConnected:
		// Payload was already written by Node.Dial before this event was
		// emitted; nothing further to do here.

	case peer.EventConnectFailed:
		e.releaseNode(ev.Node)

	case peer.EventNodeError:
		e.destroyNode(ev.Node)

	case peer.EventFrame:
		e.handleFrame(ev.Node, ev.Frame)
	}
}

func (e *engine) handleFrame(node *peer.Node, frame wire.Frame) {
	switch frame.Kind {
	case wire.KindStoreChunk:
		if e.chunkOut != nil && !e.captured {
			body, err := wire.DecodeChunkBody(frame.Arg)
			if err == nil && len(body) == constants.ChunkSize {
				copy(e.chunkOut, body)
				e.captured = true
			}
			// A malformed or wrong-length body leaves chunkOut available
			// for a later peer, per spec §7.
		}

	case wire.KindRequestDone:
		dig, err := wire.DecodeDigest(frame.Arg)
		if err != nil || dig != e.digest {
			// Ignored; node stays attached (spec §9 open question).
			return
		}
		if addr, ok := e.inFlight[node]; ok {
			if e.cfg.OnSuccess != nil {
				e.cfg.OnSuccess(addr)
			}
		}
		e.done++
		e.releaseNode(node)

	case wire.KindStoreNode:
		if addr, err := peer.ParseAddress(frame.Arg); err == nil {
			e.addAddr(addr)
		}

	default:
		// Unknown verbs are discarded.
	}
}

func (e *engine) releaseNode(n *peer.Node) {
	if _, ok := e.inFlight[n]; ok {
		delete(e.inFlight, n)
		e.inFlightCount--
	}
	e.cfg.Cache.Release(n)
}

func (e *engine) destroyNode(n *peer.Node) {
	if _, ok := e.inFlight[n]; ok {
		delete(e.inFlight, n)
		e.inFlightCount--
	}
	e.cfg.Cache.Destroy(n)
}

// releaseAll returns every still-attached node to the cache on timeout,
// per spec §5.
func (e *engine) releaseAll() {
	for n := range e.inFlight {
		e.cfg.Cache.Release(n)
	}
	e.inFlight = make(map[*peer.Node]peer.Address)
	e.inFlightCount = 0
}
