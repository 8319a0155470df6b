// Package attachserver listens on a per-session Unix socket and fans out
// PTY output to every attached client, while forwarding each client's
// input and resize requests back to the session.
package attachserver

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"vtmux/internal/attachproto"
)

// MaxClients bounds how many simultaneous attach connections one session
// accepts. Past this, new connections are rejected so one runaway client
// can't starve the others.
const MaxClients = 10

// SocketDir is the default directory attach sockets are created under.
const SocketDir = "/tmp/terminal"

// SocketPath builds the socket path for a session id under dir.
func SocketPath(dir, sessionID string) string {
	return filepath.Join(dir, sessionID+".sock")
}

// Input is one client-originated event: either bytes to write to the PTY,
// or a resize request.
type Input struct {
	Data       []byte
	IsResize   bool
	Rows, Cols uint16
}

// InfoProvider supplies the snapshot sent to a client immediately on
// connect.
type InfoProvider func() attachproto.SessionInfoPayload

// Server owns one session's attach socket, broadcasting output to every
// connected client and forwarding client input upstream.
type Server struct {
	sessionID  string
	socketPath string
	listener   net.Listener
	infoFn     InfoProvider

	inputCh chan Input

	mu      sync.Mutex
	clients map[*client]struct{}

	log *slog.Logger

	closeOnce sync.Once
	stopped   chan struct{}
}

type client struct {
	conn   net.Conn
	outCh  chan []byte
	done   chan struct{}
}

// Start creates the session's socket and begins accepting client
// connections in the background.
func Start(dir, sessionID string, infoFn InfoProvider, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := SocketPath(dir, sessionID)
	os.Remove(path) // drop a stale socket from a prior crashed run

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessionID:  sessionID,
		socketPath: path,
		listener:   ln,
		infoFn:     infoFn,
		inputCh:    make(chan Input, 256),
		clients:    make(map[*client]struct{}),
		log:        log.With("session_id", sessionID),
		stopped:    make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

// SocketPath returns the path of this server's listening socket.
func (s *Server) SocketPath() string { return s.socketPath }

// Input returns the channel clients' writes/resizes are delivered on.
func (s *Server) Input() <-chan Input { return s.inputCh }

// ClientCount returns the number of currently attached clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast fans data out to every attached client's output stream. A
// client whose output channel is full is skipped rather than blocking the
// broadcaster — the equivalent of a lagged broadcast receiver just misses
// the update.
func (s *Server) Broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.outCh <- data:
		default:
			s.log.Warn("attach client lagging, dropping output chunk")
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopped:
				return
			default:
				s.log.Warn("accept error", "err", err)
				return
			}
		}
		if s.ClientCount() >= MaxClients {
			conn.Close()
			continue
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	c := &client{conn: conn, outCh: make(chan []byte, 256), done: make(chan struct{})}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.done)
		conn.Close()
	}()

	if s.infoFn != nil {
		info := s.infoFn()
		if err := attachproto.WriteMessage(conn, attachproto.NewInfo(info)); err != nil {
			s.log.Warn("write info failed", "err", err)
			return
		}
	}

	go s.forwardOutput(conn, c)

	for {
		msg, err := attachproto.ReadMessage(conn)
		if err != nil {
			return
		}
		switch msg.Type {
		case attachproto.MsgInput:
			s.inputCh <- Input{Data: msg.Input}
		case attachproto.MsgResize:
			s.inputCh <- Input{IsResize: true, Rows: msg.Rows, Cols: msg.Cols}
		case attachproto.MsgClose:
			return
		default:
			// unknown message types are ignored
		}
	}
}

func (s *Server) forwardOutput(conn net.Conn, c *client) {
	for {
		select {
		case data := <-c.outCh:
			if err := attachproto.WriteMessage(conn, attachproto.NewOutput(data)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Shutdown stops accepting new connections, closes all client
// connections, and removes the socket file.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.stopped)
		s.listener.Close()
		s.mu.Lock()
		for c := range s.clients {
			attachproto.WriteMessage(c.conn, attachproto.NewClose(""))
			c.conn.Close()
		}
		s.mu.Unlock()
		os.Remove(s.socketPath)
	})
}

// ListSockets returns the session ids with a live socket under dir.
func ListSockets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".sock" {
			ids = append(ids, name[:len(name)-len(".sock")])
		}
	}
	return ids, nil
}
