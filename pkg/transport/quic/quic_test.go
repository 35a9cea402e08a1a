package quic

import "testing"

func TestDialer_Name(t *testing.T) {
	d := New()
	if d.Name() != "quic" {
		t.Errorf("Name() = %q, want %q", d.Name(), "quic")
	}
}
