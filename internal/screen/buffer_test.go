package screen

import "testing"

func TestPutCharAdvancesCursor(t *testing.T) {
	b := NewBuffer(24, 80)
	b.PutChar('A')
	if b.Cursor().Col != 1 {
		t.Fatalf("col = %d", b.Cursor().Col)
	}
}

func TestWideCharAdvancesTwoCols(t *testing.T) {
	b := NewBuffer(24, 80)
	b.PutChar('世')
	if b.Cursor().Col != 2 {
		t.Fatalf("col = %d", b.Cursor().Col)
	}
}

// A width-2 rune that would land on the last column must wrap to the next
// line before being placed, not get split across the line boundary.
func TestWideCharAtLastColumnWraps(t *testing.T) {
	b := NewBuffer(3, 10)
	b.MoveCursor().MoveTo(0, 9, 3, 10)
	b.PutChar('世')

	if b.Cursor().Row != 1 || b.Cursor().Col != 2 {
		t.Fatalf("cursor = (%d,%d), want (1,2)", b.Cursor().Row, b.Cursor().Col)
	}
	if r := b.cells[0][9].Char; r != ' ' {
		t.Fatalf("last column of original row should be untouched, got %q", r)
	}
	if r := b.cells[1][0].Char; r != '世' {
		t.Fatalf("expected wide rune on next line at col 0, got %q", r)
	}
	if b.cells[1][1].Width != 0 {
		t.Fatalf("expected continuation cell at col 1, got width %d", b.cells[1][1].Width)
	}
}

func TestNewlineWrapsAndScrolls(t *testing.T) {
	b := NewBuffer(2, 10)
	b.MoveCursor().MoveTo(1, 0, 2, 10)
	b.PutChar('x')
	b.Newline()
	if len(b.TakeScrolledLines()) != 1 {
		t.Fatal("expected a scrolled line")
	}
}

func TestEraseLine(t *testing.T) {
	b := NewBuffer(3, 10)
	b.PutChar('a')
	b.PutChar('b')
	b.MoveCursor().MoveTo(0, 0, 3, 10)
	b.EraseLine()
	if got := b.Render(false); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestAlternateBufferRoundTrip(t *testing.T) {
	b := NewBuffer(3, 10)
	b.PutChar('a')
	b.EnterAlternateBuffer(true)
	if !b.IsAlternateActive() {
		t.Fatal("expected alternate active")
	}
	b.PutChar('z')
	b.ExitAlternateBuffer(true)
	if b.IsAlternateActive() {
		t.Fatal("expected alternate inactive")
	}
	if got := b.Render(false); got != "a" {
		t.Fatalf("got %q", got)
	}
}
