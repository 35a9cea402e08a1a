// Package zunkdb is the public façade over the chunk back-end client
// described in spec §4.5: it wires a parsed Config to a shared node cache,
// an optional peer directory, and a transport registry, and exposes the two
// operations an application actually calls: ReadChunk and WriteChunk.
package zunkdb

import (
	"context"
	"errors"

	"github.com/zunkfs/zunkdb-go/internal/peer"
	"github.com/zunkfs/zunkdb-go/internal/request"
	"github.com/zunkfs/zunkdb-go/pkg/constants"
	"github.com/zunkfs/zunkdb-go/pkg/digest"
	"github.com/zunkfs/zunkdb-go/pkg/transport"
	"github.com/zunkfs/zunkdb-go/pkg/transport/quic"
	"github.com/zunkfs/zunkdb-go/pkg/transport/tcp"
	"github.com/zunkfs/zunkdb-go/pkg/wire"
)

// Mode gates which operations an opened Backend exposes, per spec §4.5's
// "ctor(mode, spec)" and §6: write_chunk is present iff mode is ReadWrite.
type Mode int

const (
	// ReadOnly permits ReadChunk only; WriteChunk fails with InvalidConfig.
	ReadOnly Mode = iota
	// ReadWrite permits both ReadChunk and WriteChunk.
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Backend is one configured connection to the storage overlay. A single
// Backend's node cache and peer directory are shared by every ReadChunk and
// WriteChunk call made through it; callers needing isolation should use
// separate Backends.
type Backend struct {
	cfg       Config
	mode      Mode
	cache     *peer.Cache
	directory *peer.Directory
	dialer    transport.Dialer
	verify    digest.Verifier
}

// Open builds a Backend from a spec string of the form documented in §6,
// gated to the given mode. A ReadOnly backend's WriteChunk always fails.
func Open(spec string, mode Mode) (*Backend, error) {
	cfg, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}

	directory, err := peer.OpenDirectory(cfg.PeerDirPath)
	if err != nil {
		return nil, newError(KindIoError, "failed to open peer directory", err)
	}

	registry := transport.NewRegistry()
	registry.Register("tcp", tcp.New())
	registry.Register("quic", quic.New())
	dialer, ok := registry.Get(cfg.Transport)
	if !ok {
		return nil, newError(KindInvalidConfig, "unknown transport "+cfg.Transport, nil)
	}

	return &Backend{
		cfg:       cfg,
		mode:      mode,
		cache:     peer.NewCache(),
		directory: directory,
		dialer:    dialer,
		verify:    digest.Verify,
	}, nil
}

// OpenReadOnly is a convenience wrapper around Open(spec, ReadOnly).
func OpenReadOnly(spec string) (*Backend, error) {
	return Open(spec, ReadOnly)
}

// OpenReadWrite is a convenience wrapper around Open(spec, ReadWrite).
func OpenReadWrite(spec string) (*Backend, error) {
	return Open(spec, ReadWrite)
}

// ReadChunk fetches the chunk identified by dig from the overlay, per spec
// §4.1's find_chunk/store_chunk exchange. The returned slice is exactly
// constants.ChunkSize bytes and has been verified against dig.
func (b *Backend) ReadChunk(ctx context.Context, dig [constants.DigestSize]byte) ([]byte, error) {
	chunkOut := make([]byte, constants.ChunkSize)
	payload := wire.FormatFindChunk(dig)

	err := request.Execute(ctx, b.requestConfig(), payload, dig, chunkOut)
	if err != nil {
		return nil, b.translate(err)
	}
	return chunkOut, nil
}

// WriteChunk stores chunk (whose digest must equal dig) in the overlay, per
// spec §4.1's store_chunk/request_done exchange. The call succeeds on the
// first request_done echo received for dig; it does not wait for every
// dispatched peer to answer. WriteChunk fails with an InvalidConfig error
// if the Backend was opened ReadOnly.
func (b *Backend) WriteChunk(ctx context.Context, chunk []byte, dig [constants.DigestSize]byte) error {
	if b.mode != ReadWrite {
		return newError(KindInvalidConfig, "write_chunk requires a backend opened in read-write mode", nil)
	}
	payload := wire.FormatStoreChunk(chunk)

	err := request.Execute(ctx, b.requestConfig(), payload, dig, nil)
	if err != nil {
		return b.translate(err)
	}
	return nil
}

func (b *Backend) requestConfig() request.Config {
	var extra []peer.Address
	if b.directory != nil {
		extra = b.directory.Known()
	}
	return request.Config{
		StartAddr:      b.cfg.StartAddr,
		ExtraAddrs:     extra,
		Timeout:        b.cfg.Timeout,
		MaxConcurrency: b.cfg.MaxConcurrency,
		Dialer:         b.dialer,
		Cache:          b.cache,
		Verify:         b.verify,
		OnSuccess: func(addr peer.Address) {
			if b.directory != nil {
				b.directory.Record(addr)
			}
		},
	}
}

func (b *Backend) translate(err error) error {
	switch {
	case errors.Is(err, request.ErrTimeout):
		return newError(KindTimeout, "request deadline exceeded", err)
	default:
		return newError(KindIoError, "no peer produced a verified result", err)
	}
}
