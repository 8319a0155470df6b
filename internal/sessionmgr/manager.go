// Package sessionmgr tracks the set of live terminal sessions, enforcing
// a maximum session count and providing create/get/destroy/list
// operations.
package sessionmgr

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vtmux/internal/attachproto"
	"vtmux/internal/attachserver"
	"vtmux/internal/termsession"
	"vtmux/internal/version"
)

// ErrMaxSessionsReached is returned by Create when the manager is already
// at its configured session ceiling.
var ErrMaxSessionsReached = errors.New("sessionmgr: maximum session count reached")

// ErrSessionNotFound is returned when a session id has no live entry.
var ErrSessionNotFound = errors.New("sessionmgr: session not found")

// Config bounds the manager's behavior and provides the defaults new
// sessions are created with.
type Config struct {
	MaxSessions   int
	SocketDir     string
	DefaultRows   int
	DefaultCols   int
	DefaultShell  string
	Term          string
	ScrollbackMax int
	PromptPattern string
}

// entry bundles a session with its attach socket server.
type entry struct {
	session *termsession.Session
	attach  *attachserver.Server
}

// Manager owns every live session in the process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	cfg      Config
	log      *slog.Logger
}

// New returns an empty Manager.
func New(cfg Config, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		log:      log,
	}
}

// DestroyResult reports the outcome of destroying a session.
type DestroyResult struct {
	Destroyed bool
	ExitCode  *int
}

// CreateOptions mirrors termsession.CreateOptions with defaults supplied
// by the manager's Config when left zero.
type CreateOptions struct {
	Program string
	Args    []string
	Rows    int
	Cols    int
	Env     map[string]string
	Cwd     string
}

// Create spawns a new session, enforcing the configured MaxSessions
// ceiling, and starts its attach socket server. A socket server failure
// is logged but does not fail session creation.
func (m *Manager) Create(opts CreateOptions) (*termsession.Session, error) {
	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	m.mu.Unlock()

	program := opts.Program
	if program == "" {
		program = m.cfg.DefaultShell
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = m.cfg.DefaultRows
	}
	cols := opts.Cols
	if cols <= 0 {
		cols = m.cfg.DefaultCols
	}

	sess, err := termsession.New(termsession.CreateOptions{
		Program:       program,
		Args:          opts.Args,
		Rows:          rows,
		Cols:          cols,
		Env:           opts.Env,
		Cwd:           opts.Cwd,
		Term:          m.cfg.Term,
		ScrollbackMax: m.cfg.ScrollbackMax,
		PromptPattern: m.cfg.PromptPattern,
	})
	if err != nil {
		return nil, fmt.Errorf("sessionmgr: create session: %w", err)
	}

	e := &entry{session: sess}

	if m.cfg.SocketDir != "" {
		srv, err := attachserver.Start(m.cfg.SocketDir, sess.ID(), func() attachproto.SessionInfoPayload {
			dims := sess.Dimensions()
			return attachproto.SessionInfoPayload{
				SessionID:       sess.ID(),
				Program:         sess.Program(),
				Pid:             sess.Pid(),
				Rows:            dims.Rows,
				Cols:            dims.Cols,
				Screen:          sess.ScreenText(),
				ProtocolVersion: version.ProtocolVersion,
			}
		}, m.log)
		if err != nil {
			m.log.Warn("failed to start attach socket server", "session_id", sess.ID(), "err", err)
		} else {
			e.attach = srv
			sess.SetOutputHook(srv.Broadcast)
			go m.forwardAttachInput(sess, srv)
			go m.pumpOutput(sess)
		}
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = e
	m.mu.Unlock()

	return sess, nil
}

func (m *Manager) forwardAttachInput(sess *termsession.Session, srv *attachserver.Server) {
	for in := range srv.Input() {
		if in.IsResize {
			sess.Resize(int(in.Rows), int(in.Cols))
			continue
		}
		sess.Write(in.Data, writeTimeout)
	}
}

// pumpOutput continuously drains sess's PTY reader so its output hook
// (registered in Create) fires promptly for attached clients, rather than
// only when a tool operation happens to drain the session.
func (m *Manager) pumpOutput(sess *termsession.Session) {
	for !sess.Exited() {
		if !sess.DrainReader() {
			time.Sleep(drainPollInterval)
		}
	}
}

const (
	writeTimeout      = 5 * time.Second
	drainPollInterval = 10 * time.Millisecond
)

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*termsession.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Destroy terminates and removes the session with the given id.
func (m *Manager) Destroy(id string, force bool) (DestroyResult, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return DestroyResult{}, ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	if e.attach != nil {
		e.attach.Shutdown()
	}
	code := e.session.Terminate(force)
	return DestroyResult{Destroyed: true, ExitCode: code}, nil
}

// List returns a snapshot of every live session's info.
func (m *Manager) List() []termsession.Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]termsession.Info, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.session.Info())
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExited removes every session whose process has exited.
func (m *Manager) CleanupExited() []string {
	m.mu.RLock()
	var dead []string
	for id, e := range m.sessions {
		if e.session.Exited() {
			dead = append(dead, id)
		}
	}
	m.mu.RUnlock()

	m.mu.Lock()
	for _, id := range dead {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return dead
}

// Shutdown terminates every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		if e.attach != nil {
			e.attach.Shutdown()
		}
		e.session.Terminate(true)
	}
}
