package vtparse

import "testing"

type recordPerformer struct {
	printed []rune
	csi     []string
}

func (r *recordPerformer) Print(c rune)   { r.printed = append(r.printed, c) }
func (r *recordPerformer) Execute(b byte) {}
func (r *recordPerformer) CsiDispatch(params []int, intermediates []byte, final byte) {
	r.csi = append(r.csi, string(final))
}
func (r *recordPerformer) EscDispatch(intermediates []byte, final byte) {}
func (r *recordPerformer) OscDispatch(params [][]byte)                  {}
func (r *recordPerformer) Hook(params []int, intermediates []byte, final byte) {}
func (r *recordPerformer) Put(b byte) {}
func (r *recordPerformer) Unhook()    {}

func TestSimpleText(t *testing.T) {
	p := NewParser()
	r := &recordPerformer{}
	for _, b := range []byte("ABC") {
		p.Advance(r, b)
	}
	if string(r.printed) != "ABC" {
		t.Fatalf("got %q", string(r.printed))
	}
}

func TestCSIDispatch(t *testing.T) {
	p := NewParser()
	r := &recordPerformer{}
	for _, b := range []byte("\x1b[2D") {
		p.Advance(r, b)
	}
	if len(r.csi) != 1 || r.csi[0] != "D" {
		t.Fatalf("got %v", r.csi)
	}
}
