package cborcanon

import (
	"testing"
)

type sample struct {
	B string `cbor:"b"`
	A int    `cbor:"a"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := sample{B: "hello", A: 7}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out sample
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	in := sample{B: "x", A: 1}

	first, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("expected deterministic encoding, got %x and %x", first, second)
	}
}
