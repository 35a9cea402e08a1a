package zunkdb

import "testing"

func TestParseSpecMinimal(t *testing.T) {
	cfg, err := ParseSpec("zunkdb:127.0.0.1:7000")
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	if cfg.StartAddr.String() != "127.0.0.1:7000" {
		t.Errorf("StartAddr = %v, want 127.0.0.1:7000", cfg.StartAddr)
	}
	if cfg.Transport != "tcp" {
		t.Errorf("Transport = %q, want tcp (default)", cfg.Transport)
	}
	if cfg.PeerDirPath != "" {
		t.Errorf("PeerDirPath = %q, want empty", cfg.PeerDirPath)
	}
}

func TestParseSpecAllOptions(t *testing.T) {
	cfg, err := ParseSpec("zunkdb:10.0.0.1:9000,timeout=5,concurrency=3,transport=quic,peerdir=/tmp/peers.cbor")
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	if cfg.Timeout.Seconds() != 5 {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", cfg.MaxConcurrency)
	}
	if cfg.Transport != "quic" {
		t.Errorf("Transport = %q, want quic", cfg.Transport)
	}
	if cfg.PeerDirPath != "/tmp/peers.cbor" {
		t.Errorf("PeerDirPath = %q, want /tmp/peers.cbor", cfg.PeerDirPath)
	}
}

func TestParseSpecRejectsMissingPrefix(t *testing.T) {
	if _, err := ParseSpec("127.0.0.1:7000"); err == nil {
		t.Error("expected error for missing zunkdb: prefix")
	} else if !IsInvalidConfig(err) {
		t.Errorf("expected InvalidConfig error, got %v", err)
	}
}

func TestParseSpecRejectsMissingPort(t *testing.T) {
	if _, err := ParseSpec("zunkdb:127.0.0.1"); err == nil {
		t.Error("expected error for missing port")
	}
}

func TestParseSpecRejectsUnknownOption(t *testing.T) {
	if _, err := ParseSpec("zunkdb:127.0.0.1:7000,bogus=1"); err == nil {
		t.Error("expected error for unrecognised option")
	}
}

func TestParseSpecRejectsZeroTimeout(t *testing.T) {
	if _, err := ParseSpec("zunkdb:127.0.0.1:7000,timeout=0"); err == nil {
		t.Error("expected error for timeout=0")
	}
}

func TestParseSpecRejectsBadTransport(t *testing.T) {
	if _, err := ParseSpec("zunkdb:127.0.0.1:7000,transport=carrier-pigeon"); err == nil {
		t.Error("expected error for unrecognised transport")
	}
}
