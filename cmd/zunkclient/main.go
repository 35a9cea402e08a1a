// Package main implements the zunkclient CLI: a thin wrapper around
// pkg/zunkdb exposing the read and write operations from a shell.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/zunkfs/zunkdb-go/pkg/constants"
	"github.com/zunkfs/zunkdb-go/pkg/zunkdb"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "read":
		if err := readCommand(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "write":
		if err := writeCommand(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`zunkclient - ZunkDB chunk back-end client

Usage:
  zunkclient read  <spec> <digest-hex> <outfile>
  zunkclient write <spec> <digest-hex> <infile>

<spec> is a back-end config spec, e.g.:
  zunkdb:198.51.100.7:8900
  zunkdb:198.51.100.7:8900,timeout=30,concurrency=64,transport=quic,peerdir=peers.cbor

Examples:
  zunkclient read  zunkdb:198.51.100.7:8900 3a7f...e91c chunk.out
  zunkclient write zunkdb:198.51.100.7:8900 3a7f...e91c chunk.bin

`)
}

func parseDigest(s string) ([constants.DigestSize]byte, error) {
	var out [constants.DigestSize]byte
	if len(s) != constants.HexDigestLen {
		return out, fmt.Errorf("digest must be %d hex characters, got %d", constants.HexDigestLen, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex digest: %w", err)
	}
	copy(out[:], b)
	return out, nil
}

func readCommand() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: zunkclient read <spec> <digest-hex> <outfile>")
	}
	spec, digestHex, outfile := os.Args[2], os.Args[3], os.Args[4]

	dig, err := parseDigest(digestHex)
	if err != nil {
		return err
	}

	backend, err := zunkdb.OpenReadOnly(spec)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Fetching chunk %s...\n", digestHex)
	chunk, err := backend.ReadChunk(ctx, dig)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	if err := os.WriteFile(outfile, chunk, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outfile, err)
	}
	fmt.Printf("Saved %d bytes to %s\n", len(chunk), outfile)
	return nil
}

func writeCommand() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: zunkclient write <spec> <digest-hex> <infile>")
	}
	spec, digestHex, infile := os.Args[2], os.Args[3], os.Args[4]

	dig, err := parseDigest(digestHex)
	if err != nil {
		return err
	}

	chunk, err := os.ReadFile(infile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", infile, err)
	}
	if len(chunk) != constants.ChunkSize {
		return fmt.Errorf("%s is %d bytes, chunks must be exactly %d bytes", infile, len(chunk), constants.ChunkSize)
	}

	backend, err := zunkdb.OpenReadWrite(spec)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Storing chunk %s...\n", digestHex)
	if err := backend.WriteChunk(ctx, chunk, dig); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	fmt.Println("Stored.")
	return nil
}
