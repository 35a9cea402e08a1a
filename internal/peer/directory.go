package peer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zunkfs/zunkdb-go/pkg/codec/cborcanon"
)

// Record is one persisted directory entry: an address that has served a
// request_done at least once, and when.
type Record struct {
	IP         string    `cbor:"ip"`
	Port       uint16    `cbor:"port"`
	LastGood   time.Time `cbor:"last_good"`
}

// Directory is the supplemental peer-directory feature described in
// SPEC_FULL.md §11: a small on-disk set of addresses known to have
// answered successfully, so a fresh Backend does not always have to start
// fan-out from a single configured seed address. Modeled on
// internal/dht/bootstrap.go's seed-file persistence, switched from JSON to
// the project's own canonical CBOR encoding.
type Directory struct {
	mu      sync.Mutex
	path    string
	records map[Address]time.Time
}

// OpenDirectory loads path if it exists, or starts empty if it does not.
// An empty path disables persistence: Record/Known still work in-memory
// for the lifetime of the Directory, but nothing is written to disk.
func OpenDirectory(path string) (*Directory, error) {
	d := &Directory{path: path, records: make(map[Address]time.Time)}
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("peer: failed to read directory %s: %w", path, err)
	}
	var records []Record
	if err := cborcanon.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("peer: failed to decode directory %s: %w", path, err)
	}
	for _, r := range records {
		d.records[Address{IP: r.IP, Port: r.Port}] = r.LastGood
	}
	return d, nil
}

// Record marks addr as having just served a successful request.
func (d *Directory) Record(addr Address) error {
	d.mu.Lock()
	d.records[addr] = time.Now()
	d.mu.Unlock()
	return d.save()
}

// Known returns every address the directory currently holds, in no
// particular order. The request engine seeds its candidate address list
// with these in addition to the configured start node.
func (d *Directory) Known() []Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Address, 0, len(d.records))
	for addr := range d.records {
		out = append(out, addr)
	}
	return out
}

// save persists the directory to disk. Must be called without d.mu held.
func (d *Directory) save() error {
	if d.path == "" {
		return nil
	}
	d.mu.Lock()
	records := make([]Record, 0, len(d.records))
	for addr, lastGood := range d.records {
		records = append(records, Record{IP: addr.IP, Port: addr.Port, LastGood: lastGood})
	}
	d.mu.Unlock()

	data, err := cborcanon.Marshal(records)
	if err != nil {
		return fmt.Errorf("peer: failed to encode directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("peer: failed to create directory path: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return fmt.Errorf("peer: failed to write directory %s: %w", d.path, err)
	}
	return nil
}
