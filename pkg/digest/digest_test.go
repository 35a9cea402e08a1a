package digest

import "testing"

func TestVerifyMatchingChunk(t *testing.T) {
	chunk := []byte("the quick brown fox")
	d := Sum(chunk)

	if !Verify(chunk, d) {
		t.Error("Verify should accept a chunk against its own digest")
	}
}

func TestVerifyRejectsTamperedChunk(t *testing.T) {
	chunk := []byte("the quick brown fox")
	d := Sum(chunk)

	tampered := append([]byte(nil), chunk...)
	tampered[0] ^= 0xff

	if Verify(tampered, d) {
		t.Error("Verify should reject a chunk that does not match the digest")
	}
}
