package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "v") {
		t.Errorf("expected version output to start with v, got %q", out.String())
	}
}

func TestLsCmdEmptySocketDir(t *testing.T) {
	writeTestConfig(t)
	// NewRootCmd resets cfgPath to its flag default, so capture it first.
	path := cfgPath

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"ls", "--config", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "SESSION") {
		t.Errorf("expected a header line, got %q", out.String())
	}
}
