// Package digest provides the default chunk-verification predicate used by
// the zunkdb façade. The request engine uses only the Verifier type from
// this package and never calls Verify or Sum itself: it accepts a Verifier
// function value, treating digest verification as an external collaborator,
// but a concrete implementation must exist somewhere for the façade to be
// usable standalone.
package digest

import (
	"crypto/subtle"

	"lukechampine.com/blake3"

	"github.com/zunkfs/zunkdb-go/pkg/constants"
)

// Verifier reports whether chunk hashes to digest under the scheme it
// implements.
type Verifier func(chunk []byte, digest [constants.DigestSize]byte) bool

// Verify is the default Verifier: BLAKE3-256 over the chunk bytes.
func Verify(chunk []byte, digest [constants.DigestSize]byte) bool {
	sum := blake3.Sum256(chunk)
	return subtle.ConstantTimeCompare(sum[:], digest[:]) == 1
}

// Sum computes the default digest of chunk.
func Sum(chunk []byte) [constants.DigestSize]byte {
	return blake3.Sum256(chunk)
}
