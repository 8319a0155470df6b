// Package eventlog writes structured JSONL records of session lifecycle
// events: creation, destruction, resize, and faults. Each line is a
// self-contained JSON object so the log can be tailed or parsed without
// buffering.
package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Logger appends JSONL event records to a file. A disabled or Nop logger
// discards every call.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	enabled bool
}

// New opens (creating if needed) path and returns a Logger that appends
// to it, unless enabled is false, in which case every call is a no-op
// and no file is created.
func New(enabled bool, path string) *Logger {
	if !enabled {
		return &Logger{enabled: false}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{enabled: false}
	}
	return &Logger{file: f, enabled: true}
}

// Nop returns a Logger that discards every call.
func Nop() *Logger {
	return &Logger{enabled: false}
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) write(fields map[string]any) {
	if !l.enabled {
		return
	}
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)

	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := json.Marshal(fields)
	if err != nil {
		return
	}
	b = append(b, '\n')
	l.file.Write(b)
}

// SessionCreated records that a new session was spawned.
func (l *Logger) SessionCreated(sessionID, program string, pid int) {
	l.write(map[string]any{
		"event":      "session_created",
		"session_id": sessionID,
		"program":    program,
		"pid":        pid,
	})
}

// SessionDestroyed records that a session was torn down, whether by
// request or because the child process exited on its own.
func (l *Logger) SessionDestroyed(sessionID string, exitCode *int, forced bool) {
	l.write(map[string]any{
		"event":      "session_destroyed",
		"session_id": sessionID,
		"exit_code":  exitCode,
		"forced":     forced,
	})
}

// Resize records a terminal resize.
func (l *Logger) Resize(sessionID string, rows, cols int) {
	l.write(map[string]any{
		"event":      "resize",
		"session_id": sessionID,
		"rows":       rows,
		"cols":       cols,
	})
}

// Error records a session-level fault.
func (l *Logger) Error(sessionID, message string) {
	l.write(map[string]any{
		"event":      "error",
		"session_id": sessionID,
		"message":    message,
	})
}

// MaxSessionsReached records a create request rejected because the
// server was already at capacity.
func (l *Logger) MaxSessionsReached(limit int) {
	l.write(map[string]any{
		"event": "max_sessions_reached",
		"limit": limit,
	})
}
