// Package toolops implements the six session operations exposed to tool
// callers: create, destroy, list, send, read, info. Each takes a typed
// input and returns a typed output; errors carry a short stable code
// alongside a human message so callers can branch on failure kind
// without string matching.
package toolops

import (
	"errors"
	"runtime"
	"strconv"
	"strings"
	"time"

	"vtmux/internal/eventlog"
	"vtmux/internal/inputencode"
	"vtmux/internal/sessionmgr"
	"vtmux/internal/termsession"
)

// Code is a short stable error identifier, stable across releases so
// callers can branch on it without string matching.
type Code string

const (
	CodePTYError         Code = "PTY_ERROR"
	CodeIOError          Code = "IO_ERROR"
	CodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	CodeMaxSessions      Code = "MAX_SESSIONS"
	CodeSessionDestroyed Code = "SESSION_DESTROYED"
	CodeNoInput          Code = "NO_INPUT"
	CodeInvalidKey       Code = "INVALID_KEY"
	CodeInvalidPattern   Code = "INVALID_PATTERN"
	CodeProcessExited    Code = "PROCESS_EXITED"
	CodeProgramNotFound  Code = "PROGRAM_NOT_FOUND"
	CodeWaitTimeout      Code = "WAIT_TIMEOUT"
	CodeChannelClosed    Code = "CHANNEL_CLOSED"
)

// Error wraps an operation failure with its stable Code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func wrapErr(code Code, err error) *Error {
	return &Error{Code: code, Message: err.Error()}
}

var errNotSupported = errors.New("toolops: cwd lookup not supported on this platform")

// Ops executes the six tool operations against a session manager.
type Ops struct {
	mgr *sessionmgr.Manager
	log *eventlog.Logger
}

// New returns an Ops bound to mgr. A nil log is treated as a no-op logger.
func New(mgr *sessionmgr.Manager, log *eventlog.Logger) *Ops {
	if log == nil {
		log = eventlog.Nop()
	}
	return &Ops{mgr: mgr, log: log}
}

// Dimensions mirrors screen.Dimensions without importing the screen
// package into the tool surface's wire types.
type Dimensions struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// --- create ---

type CreateInput struct {
	Program        string            `json:"program,omitempty"`
	Args           []string          `json:"args,omitempty"`
	Rows           int               `json:"rows,omitempty"`
	Cols           int               `json:"cols,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	Cwd            string            `json:"cwd,omitempty"`
	WaitReady      *bool             `json:"wait_ready,omitempty"`
	ReadyTimeoutMs int               `json:"ready_timeout_ms,omitempty"`
}

type CreateOutput struct {
	SessionID  string     `json:"session_id"`
	Pid        int        `json:"pid"`
	Program    string     `json:"program"`
	Dimensions Dimensions `json:"dimensions"`
}

// Create spawns a new session, optionally waiting for its shell prompt
// (or process exit) before returning.
func (o *Ops) Create(in CreateInput) (CreateOutput, error) {
	sess, err := o.mgr.Create(sessionmgr.CreateOptions{
		Program: in.Program,
		Args:    in.Args,
		Rows:    in.Rows,
		Cols:    in.Cols,
		Env:     in.Env,
		Cwd:     in.Cwd,
	})
	if err != nil {
		if errors.Is(err, sessionmgr.ErrMaxSessionsReached) {
			o.log.MaxSessionsReached(o.mgr.Count())
			return CreateOutput{}, wrapErr(CodeMaxSessions, err)
		}
		return CreateOutput{}, wrapErr(CodePTYError, err)
	}
	o.log.SessionCreated(sess.ID(), sess.Program(), sess.Pid())

	waitReady := in.WaitReady
	shouldWait := termsession.IsShellProgram(sess.Program())
	if waitReady != nil {
		shouldWait = *waitReady
	}

	if shouldWait {
		timeoutMs := in.ReadyTimeoutMs
		if timeoutMs <= 0 {
			timeoutMs = 5000
		}
		deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
		for time.Now().Before(deadline) {
			sess.DrainReader()
			if sess.Exited() || sess.IsPromptDetected() {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
		sess.Read(termsession.ViewNew, false) // clear the tracker so "new" starts fresh
	}

	dims := sess.Dimensions()
	return CreateOutput{
		SessionID: sess.ID(),
		Pid:       sess.Pid(),
		Program:   sess.Program(),
		Dimensions: Dimensions{Rows: dims.Rows, Cols: dims.Cols},
	}, nil
}

// --- destroy ---

type DestroyInput struct {
	SessionID string `json:"session_id"`
	Force     bool   `json:"force,omitempty"`
}

type DestroyOutput struct {
	Destroyed bool `json:"destroyed"`
	ExitCode  *int `json:"exit_code,omitempty"`
}

// Destroy terminates and removes a session.
func (o *Ops) Destroy(in DestroyInput) (DestroyOutput, error) {
	res, err := o.mgr.Destroy(in.SessionID, in.Force)
	if err != nil {
		return DestroyOutput{}, wrapErr(CodeSessionNotFound, err)
	}
	o.log.SessionDestroyed(in.SessionID, res.ExitCode, in.Force)
	return DestroyOutput{Destroyed: res.Destroyed, ExitCode: res.ExitCode}, nil
}

// --- list ---

type ListOutput struct {
	Sessions []termsession.Info `json:"sessions"`
	Count    int                `json:"count"`
}

// List returns every live session's info.
func (o *Ops) List() ListOutput {
	sessions := o.mgr.List()
	return ListOutput{Sessions: sessions, Count: len(sessions)}
}

// --- send ---

type SendInput struct {
	SessionID      string                  `json:"session_id"`
	Text           string                  `json:"text,omitempty"`
	Key            string                  `json:"key,omitempty"`
	Ctrl           bool                    `json:"ctrl,omitempty"`
	Alt            bool                    `json:"alt,omitempty"`
	Shift          bool                    `json:"shift,omitempty"`
	BracketedPaste string                  `json:"bracketed_paste,omitempty"`
	Read           *ReadInput              `json:"read,omitempty"`
}

type SendOutput struct {
	Sent       bool        `json:"sent"`
	ReadResult *ReadOutput `json:"read_result,omitempty"`
}

const writeTimeout = 5 * time.Second

// Send encodes and writes input to the session's PTY, optionally
// chaining a read afterward.
func (o *Ops) Send(in SendInput) (SendOutput, error) {
	sess, err := o.mgr.Get(in.SessionID)
	if err != nil {
		return SendOutput{}, wrapErr(CodeSessionNotFound, err)
	}

	var bytes []byte
	switch {
	case in.Key != "":
		key, ok := inputencode.ParseKeyName(in.Key)
		if !ok {
			return SendOutput{}, &Error{Code: CodeInvalidKey, Message: "unknown key: " + in.Key}
		}
		bytes, err = inputencode.KeyInput{Key: key, Ctrl: in.Ctrl, Alt: in.Alt, Shift: in.Shift}.Encode()
	case in.Text != "" && (in.Ctrl || in.Alt):
		bytes, err = inputencode.KeyInput{Text: in.Text, Ctrl: in.Ctrl, Alt: in.Alt, Shift: in.Shift}.Encode()
	case in.Text != "":
		bytes = inputencode.EncodeText(in.Text, parsePasteMode(in.BracketedPaste))
	default:
		return SendOutput{}, &Error{Code: CodeNoInput, Message: "neither text nor key provided"}
	}
	if err != nil {
		return SendOutput{}, wrapErr(CodeInvalidKey, err)
	}

	if _, err := sess.Write(bytes, writeTimeout); err != nil {
		return SendOutput{}, wrapErr(CodeIOError, err)
	}

	out := SendOutput{Sent: true}
	if in.Read != nil {
		readIn := *in.Read
		readIn.SessionID = in.SessionID
		res, err := o.Read(readIn)
		if err != nil {
			return out, err
		}
		out.ReadResult = &res
	}
	return out, nil
}

func parsePasteMode(name string) inputencode.PasteMode {
	switch strings.ToLower(name) {
	case "always":
		return inputencode.PasteAlways
	case "never":
		return inputencode.PasteNever
	default:
		return inputencode.PasteAuto
	}
}

// --- read ---

type ReadInput struct {
	SessionID     string `json:"session_id"`
	View          string `json:"view,omitempty"`
	Format        string `json:"format,omitempty"`
	TimeoutMs     int    `json:"timeout_ms,omitempty"`
	WaitIdleMs    int    `json:"wait_idle_ms,omitempty"`
	WaitForPrompt bool   `json:"wait_for_prompt,omitempty"`
	Offset        int    `json:"offset,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

type CursorPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type ReadOutput struct {
	Content        string          `json:"content"`
	Lines          int             `json:"lines"`
	Cursor         *CursorPosition `json:"cursor,omitempty"`
	Dimensions     Dimensions      `json:"dimensions"`
	HasNewContent  bool            `json:"has_new_content"`
	PromptDetected bool            `json:"prompt_detected"`
	Idle           bool            `json:"idle"`
	Exited         bool            `json:"exited"`
	ExitCode       *int            `json:"exit_code,omitempty"`
}

// Read waits for the requested condition (if any) and returns the
// requested view of a session's output.
func (o *Ops) Read(in ReadInput) (ReadOutput, error) {
	sess, err := o.mgr.Get(in.SessionID)
	if err != nil {
		return ReadOutput{}, wrapErr(CodeSessionNotFound, err)
	}

	view := termsession.ParseViewMode(in.View)
	raw := strings.EqualFold(in.Format, "raw")

	offset := in.Offset
	limit := in.Limit
	if limit <= 0 {
		limit = 1000
	}

	shouldWait := in.TimeoutMs > 0 || in.WaitIdleMs > 0 || in.WaitForPrompt
	hasNewContent := false
	idle := false

	if shouldWait {
		deadline := time.Now().Add(time.Duration(in.TimeoutMs) * time.Millisecond)
		lastOutput := time.Now()
		for {
			if sess.DrainReader() {
				hasNewContent = true
				lastOutput = time.Now()
			}
			if sess.Exited() {
				break
			}
			if in.WaitForPrompt && sess.IsPromptDetected() {
				break
			}
			if in.WaitIdleMs > 0 && time.Since(lastOutput) >= time.Duration(in.WaitIdleMs)*time.Millisecond {
				idle = true
				break
			}
			if in.TimeoutMs > 0 && time.Now().After(deadline) {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	} else {
		if sess.DrainReader() {
			hasNewContent = true
		}
	}

	var content string
	switch view {
	case termsession.ViewScrollback:
		content = sess.ReadScrollback(offset, limit, raw)
	default:
		content = sess.Read(view, raw)
	}

	dims := sess.Dimensions()
	out := ReadOutput{
		Content:        content,
		Lines:          strings.Count(content, "\n") + boolToInt(content != ""),
		Dimensions:     Dimensions{Rows: dims.Rows, Cols: dims.Cols},
		HasNewContent:  hasNewContent,
		PromptDetected: sess.IsPromptDetected(),
		Idle:           idle,
		Exited:         sess.Exited(),
		ExitCode:       sess.ExitCode(),
	}
	if view == termsession.ViewScreen {
		cur := sess.Cursor()
		out.Cursor = &CursorPosition{Row: cur.Row, Col: cur.Col}
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- info ---

type InfoInput struct {
	SessionID string `json:"session_id"`
}

type InfoOutput struct {
	SessionID  string          `json:"session_id"`
	Program    string          `json:"program"`
	Args       []string        `json:"args"`
	Pid        int             `json:"pid"`
	CreatedAt  time.Time       `json:"created_at"`
	Cursor     CursorPosition  `json:"cursor"`
	Dimensions Dimensions      `json:"dimensions"`
	Exited     bool            `json:"exited"`
	ExitCode   *int            `json:"exit_code,omitempty"`
	Healthy    bool            `json:"healthy"`
	Cwd        string          `json:"cwd,omitempty"`
}

// Info returns a session's identity/status snapshot plus its
// best-effort current working directory.
func (o *Ops) Info(in InfoInput) (InfoOutput, error) {
	sess, err := o.mgr.Get(in.SessionID)
	if err != nil {
		return InfoOutput{}, wrapErr(CodeSessionNotFound, err)
	}
	info := sess.Info()
	cur := sess.Cursor()
	return InfoOutput{
		SessionID:  info.SessionID,
		Program:    info.Program,
		Args:       info.Args,
		Pid:        info.Pid,
		CreatedAt:  info.CreatedAt,
		Cursor:     CursorPosition{Row: cur.Row, Col: cur.Col},
		Dimensions: Dimensions{Rows: info.Rows, Cols: info.Cols},
		Exited:     info.Exited,
		ExitCode:   info.ExitCode,
		Healthy:    info.Healthy,
		Cwd:        detectCwd(info.Pid),
	}, nil
}

func detectCwd(pid int) string {
	if pid <= 0 {
		return ""
	}
	switch runtime.GOOS {
	case "linux":
		link, err := readlink("/proc/" + strconv.Itoa(pid) + "/cwd")
		if err != nil {
			return ""
		}
		return link
	case "darwin":
		return darwinCwd(pid)
	default:
		return ""
	}
}
