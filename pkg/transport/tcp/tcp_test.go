package tcp

import (
	"context"
	"net"
	"testing"
)

func TestDialer_Name(t *testing.T) {
	d := New()
	if d.Name() != "tcp" {
		t.Errorf("Name() = %q, want %q", d.Name(), "tcp")
	}
}

func TestDialer_DialAndCommunicate(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	acceptDone := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			acceptDone <- nil
			return
		}
		acceptDone <- conn
	}()

	d := New()
	conn, err := d.Dial(context.Background(), listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	serverConn := <-acceptDone
	if serverConn == nil {
		t.Fatal("accept failed")
	}
	defer serverConn.Close()

	msg := []byte("find_chunk deadbeef\r\n")
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	buf := make([]byte, len(msg))
	if _, err := serverConn.Read(buf); err != nil {
		t.Fatalf("server read failed: %v", err)
	}
	if string(buf) != string(msg) {
		t.Errorf("server read %q, want %q", buf, msg)
	}
}

func TestDialer_DialRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close() // nothing listening now

	d := New()
	if _, err := d.Dial(context.Background(), addr); err == nil {
		t.Error("expected dial to a closed port to fail")
	}
}

func TestDialer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New()
	if _, err := d.Dial(ctx, "127.0.0.1:12345"); err == nil {
		t.Error("expected dial with cancelled context to fail")
	}
}
