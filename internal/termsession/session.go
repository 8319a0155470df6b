// Package termsession coordinates one terminal session: the spawned PTY
// process, its screen buffer and scrollback, output tracking for "new
// since last read" reads, prompt detection, and VT parsing of raw PTY
// bytes into screen mutations.
package termsession

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vtmux/internal/outputtracker"
	"vtmux/internal/promptdetect"
	"vtmux/internal/ptysession"
	"vtmux/internal/screen"
	"vtmux/internal/vtparse"
)

// ViewMode selects which slice of terminal content a read returns.
type ViewMode int

const (
	ViewNew ViewMode = iota
	ViewScreen
	ViewScrollback
)

// CreateOptions describes how to spawn a new session.
type CreateOptions struct {
	Program        string
	Args           []string
	Rows           int
	Cols           int
	Env            map[string]string
	Cwd            string
	Term           string
	ScrollbackMax  int
	PromptPattern  string
}

// Info is a point-in-time snapshot of session identity and status.
type Info struct {
	SessionID string
	Program   string
	Args      []string
	Pid       int
	CreatedAt time.Time
	Rows      int
	Cols      int
	Exited    bool
	ExitCode  *int
	Healthy   bool
}

// Session wraps a spawned PTY with the screen/scrollback/tracker state
// needed to answer read/info/send operations.
type Session struct {
	mu sync.Mutex

	id        string
	program   string
	args      []string
	createdAt time.Time

	pty    *ptysession.Session
	reader *ptysession.Reader

	buf       *screen.Buffer
	perf      *screen.Performer
	parser    *vtparse.Parser
	scrollback *screen.Scrollback
	tracker   *outputtracker.Tracker
	detector  *promptdetect.Detector

	err      error
	exited   bool
	exitCode *int

	onOutput func([]byte)
}

// New spawns a new session.
func New(opts CreateOptions) (*Session, error) {
	term := opts.Term
	if term == "" {
		term = "xterm-256color"
	}
	scrollbackMax := opts.ScrollbackMax
	if scrollbackMax <= 0 {
		scrollbackMax = 10000
	}
	pattern := opts.PromptPattern
	if pattern == "" {
		pattern = promptdetect.DefaultPattern
	}
	detector, err := promptdetect.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("termsession: prompt pattern: %w", err)
	}

	p, err := ptysession.Spawn(ptysession.Options{
		Program: opts.Program,
		Args:    opts.Args,
		Rows:    opts.Rows,
		Cols:    opts.Cols,
		Env:     opts.Env,
		Cwd:     opts.Cwd,
		Term:    term,
	})
	if err != nil {
		return nil, err
	}

	buf := screen.NewBuffer(opts.Rows, opts.Cols)
	s := &Session{
		id:         GenerateID(),
		program:    opts.Program,
		args:       opts.Args,
		createdAt:  time.Now(),
		pty:        p,
		reader:     ptysession.SpawnReader(p.Reader()),
		buf:        buf,
		perf:       screen.NewPerformer(buf),
		parser:     vtparse.NewParser(),
		scrollback: screen.NewScrollback(scrollbackMax),
		tracker:    outputtracker.New(),
		detector:   detector,
	}
	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// SetOutputHook registers fn to be called with each chunk of raw PTY
// output as it is drained, in addition to the normal screen/scrollback
// processing. Used to fan output out to attached clients.
func (s *Session) SetOutputHook(fn func([]byte)) {
	s.mu.Lock()
	s.onOutput = fn
	s.mu.Unlock()
}

// Program returns the spawned program name.
func (s *Session) Program() string { return s.program }

// Pid returns the child process id.
func (s *Session) Pid() int { return s.pty.Pid() }

// IsShellProgram reports whether program looks like an interactive shell,
// the heuristic used to decide whether session creation should wait for
// a prompt by default.
func IsShellProgram(program string) bool {
	switch filepath.Base(program) {
	case "bash", "zsh", "sh", "fish", "dash", "ksh", "tcsh", "csh", "ash", "pwsh":
		return true
	default:
		return false
	}
}

// ProcessOutput feeds freshly read PTY bytes through the VT parser,
// appends them to the output tracker, and rolls any lines scrolled off
// the screen into scrollback.
func (s *Session) ProcessOutput(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Append(data)
	for _, b := range data {
		s.parser.Advance(s.perf, b)
	}
	if scrolled := s.buf.TakeScrolledLines(); len(scrolled) > 0 {
		s.scrollback.Push(scrolled)
	}
}

// DrainReader consumes all pending reader messages, updating screen
// state, tracker, exit/error status accordingly. Returns true if any data
// was received.
func (s *Session) DrainReader() (gotData bool) {
	for _, m := range s.reader.Drain() {
		switch m.Kind {
		case ptysession.MsgData:
			s.ProcessOutput(m.Data)
			gotData = true
			s.mu.Lock()
			hook := s.onOutput
			s.mu.Unlock()
			if hook != nil {
				hook(m.Data)
			}
		case ptysession.MsgExited:
			s.mu.Lock()
			s.exited = true
			s.exitCode = m.ExitCode
			s.mu.Unlock()
		case ptysession.MsgError:
			s.mu.Lock()
			s.err = m.Err
			s.mu.Unlock()
		case ptysession.MsgEOF:
			code := s.pty.Wait()
			s.pty.SetExited(code)
			s.mu.Lock()
			s.exited = true
			s.exitCode = code
			s.mu.Unlock()
		}
	}
	return gotData
}

// DrainReaderFor repeatedly drains the reader until the process exits or
// the deadline elapses, sleeping briefly between polls.
func (s *Session) DrainReaderFor(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.DrainReader()
		if s.Exited() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// IsPromptDetected reports whether the tracker's most recent plain-text
// output ends with a shell prompt.
func (s *Session) IsPromptDetected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Detect(s.tracker.Peek(false))
}

// Exited reports whether the child process has exited.
func (s *Session) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// ExitCode returns the exit code, if known.
func (s *Session) ExitCode() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// IsHealthy reports whether the session has neither errored nor exited.
func (s *Session) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err == nil && !s.exited
}

// Dimensions returns the current screen size.
func (s *Session) Dimensions() screen.Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Dimensions()
}

// Cursor returns the current cursor position.
func (s *Session) Cursor() screen.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Cursor()
}

// Resize updates the screen buffer and PTY window size.
func (s *Session) Resize(rows, cols int) error {
	s.mu.Lock()
	s.buf.Resize(rows, cols)
	s.mu.Unlock()
	return s.pty.Resize(rows, cols)
}

// Write sends input bytes to the PTY.
func (s *Session) Write(p []byte, timeout time.Duration) (int, error) {
	return s.pty.Write(p, timeout)
}

// Read returns content for the given view mode and format.
func (s *Session) Read(view ViewMode, raw bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch view {
	case ViewScreen:
		return s.buf.Render(raw)
	case ViewScrollback:
		return s.scrollback.GetAll(raw)
	default:
		return s.tracker.Take(raw)
	}
}

// ReadScrollback returns a page of scrollback.
func (s *Session) ReadScrollback(offset, limit int, raw bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollback.Get(offset, limit, raw)
}

// ScreenText renders the current screen contents, used for the Info
// snapshot sent to newly attached clients.
func (s *Session) ScreenText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Render(false)
}

// Terminate stops the child process and marks the session exited.
func (s *Session) Terminate(force bool) (exitCode *int) {
	s.pty.Terminate(force)
	s.reader.Shutdown()
	s.mu.Lock()
	s.exited = true
	code := s.pty.ExitCode()
	s.exitCode = code
	s.mu.Unlock()
	return code
}

// Info returns a snapshot of the session's identity and status.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	dims := s.buf.Dimensions()
	return Info{
		SessionID: s.id,
		Program:   s.program,
		Args:      append([]string(nil), s.args...),
		Pid:       s.pty.Pid(),
		CreatedAt: s.createdAt,
		Rows:      dims.Rows,
		Cols:      dims.Cols,
		Exited:    s.exited,
		ExitCode:  s.exitCode,
		Healthy:   s.err == nil && !s.exited,
	}
}

// ParseViewMode maps a user-facing view name to a ViewMode.
func ParseViewMode(name string) ViewMode {
	switch strings.ToLower(name) {
	case "screen":
		return ViewScreen
	case "scrollback":
		return ViewScrollback
	default:
		return ViewNew
	}
}
