package termsession

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCreateSessionRunsShell(t *testing.T) {
	s, err := New(CreateOptions{Program: "/bin/sh", Args: []string{"-c", "echo hi; sleep 1"}, Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Terminate(true)

	s.DrainReaderFor(2 * time.Second)

	out := s.Read(ViewNew, false)
	if !strings.Contains(out, "hi") {
		t.Fatalf("expected output to contain hi, got %q", out)
	}
}

func TestSessionExitsAndReportsCode(t *testing.T) {
	s, err := New(CreateOptions{Program: "/bin/sh", Args: []string{"-c", "exit 3"}, Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Terminate(true)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !s.Exited() {
		s.DrainReader()
		time.Sleep(10 * time.Millisecond)
	}
	if !s.Exited() {
		t.Fatal("expected session to have exited")
	}
	if code := s.ExitCode(); code == nil || *code != 3 {
		t.Fatalf("got exit code %v, want 3", code)
	}
}

func TestOutputHookReceivesDrainedBytes(t *testing.T) {
	s, err := New(CreateOptions{Program: "/bin/sh", Args: []string{"-c", "echo hi; sleep 1"}, Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Terminate(true)

	var mu sync.Mutex
	var got []byte
	s.SetOutputHook(func(data []byte) {
		mu.Lock()
		got = append(got, data...)
		mu.Unlock()
	})

	s.DrainReaderFor(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(string(got), "hi") {
		t.Fatalf("expected hook to observe output containing hi, got %q", got)
	}
}

func TestIsShellProgram(t *testing.T) {
	if !IsShellProgram("/bin/bash") {
		t.Fatal("expected bash to be recognized as a shell")
	}
	if IsShellProgram("/usr/bin/python3") {
		t.Fatal("expected python3 to not be recognized as a shell")
	}
}

func TestResize(t *testing.T) {
	s, err := New(CreateOptions{Program: "/bin/sh", Args: []string{"-c", "sleep 1"}, Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Terminate(true)

	if err := s.Resize(40, 120); err != nil {
		t.Fatalf("resize: %v", err)
	}
	dims := s.Dimensions()
	if dims.Rows != 40 || dims.Cols != 120 {
		t.Fatalf("got %+v", dims)
	}
}
