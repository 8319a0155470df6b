package inputencode

import (
	"bytes"
	"testing"
)

func TestWrapBracketedPaste(t *testing.T) {
	w := WrapBracketedPaste("hello")
	if !bytes.HasPrefix(w, pasteStart) || !bytes.HasSuffix(w, pasteEnd) {
		t.Fatalf("got %q", w)
	}
	if !bytes.Contains(w, []byte("hello")) {
		t.Fatal("missing payload")
	}
}

func TestAutoSingleLine(t *testing.T) {
	if ShouldUseBracketedPaste("hello", PasteAuto) {
		t.Fatal("expected no wrap")
	}
}

func TestAutoMultiLine(t *testing.T) {
	if !ShouldUseBracketedPaste("hello\nworld", PasteAuto) {
		t.Fatal("expected wrap")
	}
}

func TestAlwaysWraps(t *testing.T) {
	if !ShouldUseBracketedPaste("hello", PasteAlways) {
		t.Fatal("expected wrap")
	}
}

func TestNeverWraps(t *testing.T) {
	if ShouldUseBracketedPaste("hello\nworld", PasteNever) {
		t.Fatal("expected no wrap")
	}
}

func TestEncodeTextSingleLine(t *testing.T) {
	if got := EncodeText("hello", PasteAuto); string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeTextMultiLine(t *testing.T) {
	got := EncodeText("hello\nworld", PasteAuto)
	if !bytes.HasPrefix(got, pasteStart) {
		t.Fatalf("got %q", got)
	}
}
