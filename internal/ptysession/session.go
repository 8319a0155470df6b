// Package ptysession owns the PTY lifecycle: spawning a child process
// attached to a pseudo-terminal, writing to it with a timeout, resizing
// it, and reading its output on a background goroutine.
package ptysession

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// Options describes how to spawn a child process under a PTY.
type Options struct {
	Program string
	Args    []string
	Rows    int
	Cols    int
	Env     map[string]string
	Cwd     string
	Term    string
}

// ErrWriteTimeout is returned by Write when the child is not draining its
// stdin and the kernel PTY buffer fills up.
var ErrWriteTimeout = errors.New("ptysession: write timed out")

// Session owns a spawned child process and its PTY master.
type Session struct {
	mu sync.Mutex

	// writeMu serializes writes to the PTY master.
	writeMu sync.Mutex

	ptm     *os.File
	cmd     *exec.Cmd
	program string
	args    []string

	rows int
	cols int

	exitCode *int
	exited   bool
}

// Spawn starts a new child process attached to a PTY sized rows x cols.
func Spawn(opts Options) (*Session, error) {
	term := opts.Term
	if term == "" {
		term = "xterm-256color"
	}

	cmd := exec.Command(opts.Program, opts.Args...)
	cmd.Env = buildEnvironment(opts.Env, term)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("ptysession: start %s: %w", opts.Program, err)
	}

	return &Session{
		ptm:     ptm,
		cmd:     cmd,
		program: opts.Program,
		args:    opts.Args,
		rows:    opts.Rows,
		cols:    opts.Cols,
	}, nil
}

// Reader returns the PTY master for reading child output. Callers should
// use a single Reader (see reader.go) rather than reading directly.
func (s *Session) Reader() *os.File {
	return s.ptm
}

// Write writes p to the PTY master, giving up after timeout if the child
// isn't draining its stdin (the kernel PTY buffer is full).
func (s *Session) Write(p []byte, timeout time.Duration) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s.writeMu.Lock()
		n, err := s.ptm.Write(p)
		s.writeMu.Unlock()
		ch <- result{n, err}
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	}
}

// Resize updates the PTY window size.
func (s *Session) Resize(rows, cols int) error {
	s.mu.Lock()
	s.rows = rows
	s.cols = cols
	s.mu.Unlock()
	return pty.Setsize(s.ptm, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Size returns the last rows, cols set via Spawn or Resize.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Pid returns the child process id, or 0 if the process has not started.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Program returns the spawned program name.
func (s *Session) Program() string {
	return s.program
}

// Args returns the spawned program's arguments.
func (s *Session) Args() []string {
	return s.args
}

// IsAlive reports whether the child process is still running.
func (s *Session) IsAlive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.exited
}

// ExitCode returns the child's exit code, if it has exited and one is
// known.
func (s *Session) ExitCode() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// SetExited records that the child has exited with the given code. Called
// by the owning session once the reader observes EOF and the process has
// been waited on.
func (s *Session) SetExited(code *int) {
	s.mu.Lock()
	s.exited = true
	s.exitCode = code
	s.mu.Unlock()
}

// Terminate signals the child to stop. If force is true it sends SIGKILL
// immediately; otherwise it sends SIGTERM and escalates to SIGKILL after a
// short grace period if the process hasn't exited.
func (s *Session) Terminate(force bool) error {
	if s.cmd.Process == nil {
		return nil
	}
	if force {
		return s.cmd.Process.Kill()
	}
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return s.cmd.Process.Kill()
	}
	done := make(chan struct{})
	go func() {
		s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(2 * time.Second):
		return s.cmd.Process.Kill()
	}
}

// Wait blocks until the child process exits and returns its exit code.
func (s *Session) Wait() *int {
	err := s.cmd.Wait()
	code := s.cmd.ProcessState.ExitCode()
	if err != nil && code < 0 {
		return nil
	}
	return &code
}

// Close releases the PTY master file descriptor.
func (s *Session) Close() error {
	return s.ptm.Close()
}
