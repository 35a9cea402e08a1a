package peer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/zunkfs/zunkdb-go/pkg/transport/tcp"
	"github.com/zunkfs/zunkdb-go/pkg/wire"
)

func TestNodeDialDeliversConnectedThenFrame(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, len("find_chunk aa\r\n"))
		conn.Read(buf)
		conn.Write([]byte("store_node 127.0.0.1:7001\r\n"))
	}()

	addr, err := ParseAddress(listener.Addr().String())
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}

	events := make(chan Event, 8)
	n := NewNode(addr)
	n.Attach(events)
	n.Dial(context.Background(), tcp.New(), []byte("find_chunk aa\r\n"))

	select {
	case ev := <-events:
		if ev.Kind != EventConnected {
			t.Fatalf("expected EventConnected first, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventConnected")
	}

	if n.State() != StateLive {
		t.Errorf("State() = %v, want StateLive", n.State())
	}

	select {
	case ev := <-events:
		if ev.Kind != EventFrame || ev.Frame.Kind != wire.KindStoreNode {
			t.Fatalf("expected a store_node frame event, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame event")
	}

	<-serverDone
	n.Close()
}

func TestNodeDialFailureDoomsNode(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addrStr := listener.Addr().String()
	listener.Close()

	addr, err := ParseAddress(addrStr)
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}

	events := make(chan Event, 1)
	n := NewNode(addr)
	n.Attach(events)
	n.Dial(context.Background(), tcp.New(), nil)

	select {
	case ev := <-events:
		if ev.Kind != EventConnectFailed {
			t.Fatalf("expected EventConnectFailed, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventConnectFailed")
	}

	if n.State() != StateDoomed {
		t.Errorf("State() = %v, want StateDoomed", n.State())
	}
}

func TestNodeDetachDropsEvents(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(50 * time.Millisecond)
		conn.Write([]byte("store_node 127.0.0.1:7002\r\n"))
	}()

	addr, err := ParseAddress(listener.Addr().String())
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}

	events := make(chan Event, 8)
	n := NewNode(addr)
	n.Attach(events)
	n.Dial(context.Background(), tcp.New(), nil)

	<-events // EventConnected
	n.Detach()

	select {
	case ev := <-events:
		t.Fatalf("expected no events after Detach, got %+v", ev)
	case <-time.After(200 * time.Millisecond):
		// expected: detached node drops the later frame
	}
	n.Close()
}
