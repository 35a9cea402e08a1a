package peer

import (
	"path/filepath"
	"testing"
)

func TestDirectoryRecordAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peers.cbor")

	d, err := OpenDirectory(path)
	if err != nil {
		t.Fatalf("OpenDirectory failed: %v", err)
	}

	addr := Address{IP: "127.0.0.1", Port: 7000}
	if err := d.Record(addr); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	reloaded, err := OpenDirectory(path)
	if err != nil {
		t.Fatalf("reload OpenDirectory failed: %v", err)
	}

	known := reloaded.Known()
	if len(known) != 1 || known[0] != addr {
		t.Errorf("Known() = %v, want [%v]", known, addr)
	}
}

func TestDirectoryMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.cbor")

	d, err := OpenDirectory(path)
	if err != nil {
		t.Fatalf("OpenDirectory on missing file should not error: %v", err)
	}
	if len(d.Known()) != 0 {
		t.Errorf("expected empty directory, got %v", d.Known())
	}
}

func TestDirectoryEmptyPathDisablesPersistence(t *testing.T) {
	d, err := OpenDirectory("")
	if err != nil {
		t.Fatalf("OpenDirectory(\"\") failed: %v", err)
	}
	addr := Address{IP: "10.0.0.1", Port: 9000}
	if err := d.Record(addr); err != nil {
		t.Fatalf("Record should succeed even without persistence: %v", err)
	}
	if len(d.Known()) != 1 {
		t.Errorf("in-memory record should still be visible via Known()")
	}
}
