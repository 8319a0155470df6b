package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig points cfgPath at a config.yaml confined to a temp
// socket dir, so attach sockets from one test run can't collide with
// another's.
func writeTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("socket_dir: %s\n", filepath.Join(dir, "sockets"))
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServeCreate(t *testing.T) {
	writeTestConfig(t)

	var in bytes.Buffer
	in.WriteString(`{"id":"1","op":"create","params":{"program":"/bin/cat"}}` + "\n")
	var out bytes.Buffer

	if err := runServe(&in, &out); err != nil {
		t.Fatalf("runServe: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 response line, got %d: %q", len(lines), out.String())
	}

	var resp response
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result == nil {
		t.Fatal("expected a result")
	}
}

func TestServeUnknownOpReturnsError(t *testing.T) {
	writeTestConfig(t)

	var in bytes.Buffer
	in.WriteString(`{"id":"1","op":"bogus","params":{}}` + "\n")
	var out bytes.Buffer

	if err := runServe(&in, &out); err != nil {
		t.Fatalf("runServe: %v", err)
	}

	var resp response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected an error for an unknown op")
	}
}

func TestServeSessionNotFound(t *testing.T) {
	writeTestConfig(t)

	var in bytes.Buffer
	in.WriteString(`{"id":"1","op":"info","params":{"session_id":"sess_missing1"}}` + "\n")
	var out bytes.Buffer

	if err := runServe(&in, &out); err != nil {
		t.Fatalf("runServe: %v", err)
	}

	var resp response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "SESSION_NOT_FOUND" {
		t.Fatalf("expected SESSION_NOT_FOUND, got %+v", resp.Error)
	}
}
