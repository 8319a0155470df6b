package ansistrip

import "testing"

func TestStripNoANSI(t *testing.T) {
	if got := Strip("hello world"); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestStripColors(t *testing.T) {
	if got := Strip("\x1b[31mred\x1b[0m"); got != "red" {
		t.Fatalf("got %q", got)
	}
}

func TestStripCursorMovement(t *testing.T) {
	if got := Strip("a\x1b[2Db"); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestStripOSCBel(t *testing.T) {
	if got := Strip("\x1b]0;title\x07text"); got != "text" {
		t.Fatalf("got %q", got)
	}
}

func TestStripOSCST(t *testing.T) {
	if got := Strip("\x1b]0;title\x1b\\text"); got != "text" {
		t.Fatalf("got %q", got)
	}
}

func TestStripMixed(t *testing.T) {
	got := Strip("\x1b[1mbold\x1b[0m \x1b]0;t\x07plain")
	if got != "bold plain" {
		t.Fatalf("got %q", got)
	}
}

func TestPreservesNewlines(t *testing.T) {
	got := Strip("line1\n\x1b[31mline2\x1b[0m\n")
	if got != "line1\nline2\n" {
		t.Fatalf("got %q", got)
	}
}
