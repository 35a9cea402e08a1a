// Package wire implements the zunkdb line protocol: ASCII frames of the
// form "<verb> <rest>\r\n" exchanged with peer storage nodes.
package wire

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zunkfs/zunkdb-go/pkg/constants"
)

// Kind identifies which of the four recognised verbs a Frame carries.
// Unknown verbs decode to KindUnknown and are otherwise discarded by
// callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindFindChunk
	KindStoreChunk
	KindRequestDone
	KindStoreNode
)

// Frame is one parsed line of the wire protocol.
type Frame struct {
	Kind Kind
	Arg  string
}

// ParseFrame classifies a single already-delimited line (without its
// trailing "\r\n") into a Frame. Lines with no space-separated argument or
// with an unrecognised verb parse as KindUnknown; callers discard those.
func ParseFrame(line string) Frame {
	verb, arg, ok := strings.Cut(line, " ")
	if !ok {
		return Frame{Kind: KindUnknown}
	}
	switch verb {
	case constants.VerbFindChunk:
		return Frame{Kind: KindFindChunk, Arg: arg}
	case constants.VerbStoreChunk:
		return Frame{Kind: KindStoreChunk, Arg: arg}
	case constants.VerbRequestDone:
		return Frame{Kind: KindRequestDone, Arg: arg}
	case constants.VerbStoreNode:
		return Frame{Kind: KindStoreNode, Arg: arg}
	default:
		return Frame{Kind: KindUnknown}
	}
}

// Reader streams Frames out of an underlying connection, one per
// "\r\n"-terminated line.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r for line-oriented frame decoding.
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{br: r}
}

// ReadFrame blocks until the next "\r\n"-terminated line is available and
// returns its parsed Frame. It returns the underlying read error (including
// io.EOF) unchanged so callers can distinguish a clean peer close from a
// protocol error.
func (r *Reader) ReadFrame() (Frame, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		return Frame{}, err
	}
	line = strings.TrimRight(line, "\r\n")
	return ParseFrame(line), nil
}

// FormatFindChunk renders an outbound "find_chunk <hex-digest>" line.
func FormatFindChunk(digest [constants.DigestSize]byte) []byte {
	return []byte(fmt.Sprintf("%s %s\r\n", constants.VerbFindChunk, hex.EncodeToString(digest[:])))
}

// FormatStoreChunk renders an outbound "store_chunk <base64>" line.
func FormatStoreChunk(chunk []byte) []byte {
	return []byte(fmt.Sprintf("%s %s\r\n", constants.VerbStoreChunk, base64.StdEncoding.EncodeToString(chunk)))
}

// FormatRequestDone renders a "request_done <hex-digest>" line, the frame a
// peer sends when it has finished with a digest.
func FormatRequestDone(digest [constants.DigestSize]byte) []byte {
	return []byte(fmt.Sprintf("%s %s\r\n", constants.VerbRequestDone, hex.EncodeToString(digest[:])))
}

// FormatStoreNode renders a "store_node <ip>:<port>" referral line.
func FormatStoreNode(addr string) []byte {
	return []byte(fmt.Sprintf("%s %s\r\n", constants.VerbStoreNode, addr))
}

// DecodeDigest parses a hex-digest argument into its 32-byte form.
func DecodeDigest(s string) ([constants.DigestSize]byte, error) {
	var out [constants.DigestSize]byte
	if len(s) != constants.HexDigestLen {
		return out, fmt.Errorf("wire: digest %q has length %d, want %d", s, len(s), constants.HexDigestLen)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("wire: invalid hex digest: %w", err)
	}
	copy(out[:], b)
	return out, nil
}

// EncodeDigest renders a digest as lowercase hex.
func EncodeDigest(digest [constants.DigestSize]byte) string {
	return hex.EncodeToString(digest[:])
}

// DecodeChunkBody base64-decodes a store_chunk argument.
func DecodeChunkBody(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
