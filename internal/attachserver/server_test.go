package attachserver

import (
	"net"
	"os"
	"testing"
	"time"

	"vtmux/internal/attachproto"
)

func TestStartAndConnect(t *testing.T) {
	dir := t.TempDir()
	info := attachproto.SessionInfoPayload{SessionID: "sess_test0001", Program: "bash", Pid: 1, Rows: 24, Cols: 80}
	s, err := Start(dir, "sess_test0001", func() attachproto.SessionInfoPayload { return info }, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Shutdown()

	conn, err := net.Dial("unix", s.SocketPath())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := attachproto.ReadMessage(conn)
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if msg.Type != attachproto.MsgInfo || msg.Info.SessionID != "sess_test0001" {
		t.Fatalf("got %+v", msg)
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	dir := t.TempDir()
	s, err := Start(dir, "sess_test0002", func() attachproto.SessionInfoPayload { return attachproto.SessionInfoPayload{} }, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Shutdown()

	conn, err := net.Dial("unix", s.SocketPath())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// drain the Info message sent on connect
	if _, err := attachproto.ReadMessage(conn); err != nil {
		t.Fatalf("read info: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.Broadcast([]byte("hello"))
	msg, err := attachproto.ReadMessage(conn)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if msg.Type != attachproto.MsgOutput || string(msg.Output) != "hello" {
		t.Fatalf("got %+v", msg)
	}
}

func TestClientInputForwarded(t *testing.T) {
	dir := t.TempDir()
	s, err := Start(dir, "sess_test0003", func() attachproto.SessionInfoPayload { return attachproto.SessionInfoPayload{} }, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Shutdown()

	conn, err := net.Dial("unix", s.SocketPath())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := attachproto.ReadMessage(conn); err != nil {
		t.Fatalf("read info: %v", err)
	}

	if err := attachproto.WriteMessage(conn, attachproto.NewInput([]byte("ls\n"))); err != nil {
		t.Fatalf("write input: %v", err)
	}

	select {
	case in := <-s.Input():
		if string(in.Data) != "ls\n" {
			t.Fatalf("got %q", in.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for input")
	}
}

func TestShutdownRemovesSocket(t *testing.T) {
	dir := t.TempDir()
	s, err := Start(dir, "sess_test0004", func() attachproto.SessionInfoPayload { return attachproto.SessionInfoPayload{} }, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	path := s.SocketPath()
	s.Shutdown()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, got err=%v", err)
	}
}

func TestListSockets(t *testing.T) {
	dir := t.TempDir()
	s, err := Start(dir, "sess_test0005", func() attachproto.SessionInfoPayload { return attachproto.SessionInfoPayload{} }, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Shutdown()

	ids, err := ListSockets(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == "sess_test0005" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sess_test0005 in %v", ids)
	}
}
