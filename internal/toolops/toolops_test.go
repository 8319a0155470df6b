package toolops

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"vtmux/internal/sessionmgr"
)

func testOps(t *testing.T) *Ops {
	t.Helper()
	mgr := sessionmgr.New(sessionmgr.Config{
		MaxSessions: 4,
		DefaultRows: 24,
		DefaultCols: 80,
	}, slog.Default())
	t.Cleanup(mgr.Shutdown)
	return New(mgr, nil)
}

// S1: create a /bin/cat session, send "hello\n", read it back via the
// Screen view in Plain format.
func TestCreateSendReadEcho(t *testing.T) {
	ops := testOps(t)

	created, err := ops.Create(CreateInput{Program: "/bin/cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.SessionID == "" || created.Pid == 0 {
		t.Fatalf("got %+v", created)
	}

	if _, err := ops.Send(SendInput{SessionID: created.SessionID, Text: "hello\n"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	read, err := ops.Read(ReadInput{
		SessionID:  created.SessionID,
		View:       "screen",
		Format:     "plain",
		WaitIdleMs: 100,
		TimeoutMs:  2000,
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(read.Content, "hello") {
		t.Errorf("expected content to contain hello, got %q", read.Content)
	}
	if read.Cursor == nil {
		t.Error("expected cursor for screen view")
	}
}

// S2: process exit code propagates through read.
func TestReadReportsExitCode(t *testing.T) {
	ops := testOps(t)

	created, err := ops.Create(CreateInput{Program: "/bin/sh", Args: []string{"-c", "exit 42"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	read, err := ops.Read(ReadInput{SessionID: created.SessionID, TimeoutMs: 2000})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !read.Exited && time.Now().Before(deadline) {
		read, err = ops.Read(ReadInput{SessionID: created.SessionID, TimeoutMs: 200})
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	if !read.Exited || read.ExitCode == nil || *read.ExitCode != 42 {
		t.Errorf("got exited=%v exit_code=%v", read.Exited, read.ExitCode)
	}
}

// S3: sending ctrl+c to a live session succeeds. The 0x03 byte it encodes
// to is checked by inputencode's TestCtrlC.
func TestSendCtrlC(t *testing.T) {
	ops := testOps(t)

	created, err := ops.Create(CreateInput{Program: "/bin/cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := ops.Send(SendInput{SessionID: created.SessionID, Text: "c", Ctrl: true}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	_, _ = ops.Destroy(DestroyInput{SessionID: created.SessionID, Force: true})
}

func TestSendNoInputReturnsNoInputError(t *testing.T) {
	ops := testOps(t)
	created, err := ops.Create(CreateInput{Program: "/bin/cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = ops.Send(SendInput{SessionID: created.SessionID})
	toolErr, ok := err.(*Error)
	if !ok || toolErr.Code != CodeNoInput {
		t.Fatalf("expected NO_INPUT error, got %v", err)
	}
}

func TestOperationsOnUnknownSessionReturnSessionNotFound(t *testing.T) {
	ops := testOps(t)

	_, err := ops.Read(ReadInput{SessionID: "sess_missing1"})
	toolErr, ok := err.(*Error)
	if !ok || toolErr.Code != CodeSessionNotFound {
		t.Fatalf("expected SESSION_NOT_FOUND, got %v", err)
	}

	_, err = ops.Destroy(DestroyInput{SessionID: "sess_missing1"})
	toolErr, ok = err.(*Error)
	if !ok || toolErr.Code != CodeSessionNotFound {
		t.Fatalf("expected SESSION_NOT_FOUND, got %v", err)
	}
}

func TestListAndDestroy(t *testing.T) {
	ops := testOps(t)

	created, err := ops.Create(CreateInput{Program: "/bin/cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list := ops.List()
	if list.Count != 1 || len(list.Sessions) != 1 {
		t.Fatalf("got %+v", list)
	}

	destroyed, err := ops.Destroy(DestroyInput{SessionID: created.SessionID, Force: true})
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !destroyed.Destroyed {
		t.Error("expected destroyed=true")
	}

	list = ops.List()
	if list.Count != 0 {
		t.Errorf("expected 0 sessions after destroy, got %d", list.Count)
	}
}

func TestMaxSessionsReturnsMaxSessionsError(t *testing.T) {
	mgr := sessionmgr.New(sessionmgr.Config{MaxSessions: 1, DefaultRows: 24, DefaultCols: 80}, slog.Default())
	defer mgr.Shutdown()
	ops := New(mgr, nil)

	if _, err := ops.Create(CreateInput{Program: "/bin/cat"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := ops.Create(CreateInput{Program: "/bin/cat"})
	toolErr, ok := err.(*Error)
	if !ok || toolErr.Code != CodeMaxSessions {
		t.Fatalf("expected MAX_SESSIONS, got %v", err)
	}
}

func TestInfoReturnsSnapshot(t *testing.T) {
	ops := testOps(t)
	created, err := ops.Create(CreateInput{Program: "/bin/cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := ops.Info(InfoInput{SessionID: created.SessionID})
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.SessionID != created.SessionID || info.Pid != created.Pid {
		t.Errorf("got %+v", info)
	}
}
