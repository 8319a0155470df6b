package screen

// Performer implements vtparse.Performer on top of a Buffer, turning the
// parser's recognized CSI/OSC/ESC pieces into screen mutations. It
// satisfies vtparse.Performer structurally (no import cycle: vtparse
// only depends on the interface shape).
type Performer struct {
	Buf *Buffer
}

// NewPerformer wraps buf for VT dispatch.
func NewPerformer(buf *Buffer) *Performer {
	return &Performer{Buf: buf}
}

// Print writes a printable rune at the cursor.
func (p *Performer) Print(r rune) {
	p.Buf.PutChar(r)
}

// Execute handles C0 control codes.
func (p *Performer) Execute(b byte) {
	switch b {
	case 0x07: // BEL
		// ignored
	case 0x08: // BS
		p.Buf.Backspace()
	case 0x09: // HT
		p.Buf.Tab()
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		p.Buf.LineFeed()
	case 0x0D: // CR
		p.Buf.CarriageReturn()
	}
}

func param(params []int, i int, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

func isPrivate(intermediates []byte) bool {
	return len(intermediates) > 0 && intermediates[0] == '?'
}

// CsiDispatch applies a fully parsed CSI sequence.
func (p *Performer) CsiDispatch(params []int, intermediates []byte, final byte) {
	buf := p.Buf
	dims := buf.Dimensions()

	if isPrivate(intermediates) {
		p.privateMode(params, final)
		return
	}

	switch final {
	case 'A': // CUU
		buf.MoveCursor().MoveUp(param(params, 0, 1))
	case 'B': // CUD
		buf.MoveCursor().MoveDown(param(params, 0, 1), dims.Rows)
	case 'C': // CUF
		buf.MoveCursor().MoveRight(param(params, 0, 1), dims.Cols)
	case 'D': // CUB
		buf.MoveCursor().MoveLeft(param(params, 0, 1))
	case 'G': // CHA
		buf.MoveCursor().MoveToColumn(param(params, 0, 1), dims.Cols)
	case 'd': // VPA
		buf.MoveCursor().MoveToRow(param(params, 0, 1), dims.Rows)
	case 'H', 'f': // CUP / HVP
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		buf.MoveCursor().MoveTo(row-1, col-1, dims.Rows, dims.Cols)
	case 'J': // ED
		switch param(params, 0, 0) {
		case 0:
			buf.EraseBelow()
		case 1:
			buf.EraseAbove()
		case 2, 3:
			buf.EraseAll()
		}
	case 'K': // EL
		switch param(params, 0, 0) {
		case 0:
			buf.EraseLineRight()
		case 1:
			buf.EraseLineLeft()
		case 2:
			buf.EraseLine()
		}
	case 'L': // IL
		buf.InsertLines(param(params, 0, 1))
	case 'M': // DL
		buf.DeleteLines(param(params, 0, 1))
	case '@': // ICH
		buf.InsertChars(param(params, 0, 1))
	case 'P': // DCH
		buf.DeleteChars(param(params, 0, 1))
	case 'S': // SU
		buf.ScrollUp(param(params, 0, 1))
	case 'T': // SD
		buf.ScrollDown(param(params, 0, 1))
	case 'm': // SGR
		p.sgr(params)
	case 'r': // DECSTBM
		if len(params) == 0 {
			buf.ResetScrollRegion()
		} else {
			buf.SetScrollRegion(param(params, 0, 1)-1, param(params, 1, dims.Rows)-1)
		}
	case 's': // SCOSC
		buf.SaveCursor()
	case 'u': // SCORC
		buf.RestoreCursor()
	}
}

func (p *Performer) privateMode(params []int, final byte) {
	buf := p.Buf
	if final != 'h' && final != 'l' {
		return
	}
	set := final == 'h'
	for _, mode := range params {
		switch mode {
		case 25: // DECTCEM
			buf.SetCursorVisible(set)
		case 47, 1047:
			if set {
				buf.EnterAlternateBuffer(false)
			} else {
				buf.ExitAlternateBuffer(false)
			}
		case 1049:
			if set {
				buf.EnterAlternateBuffer(true)
			} else {
				buf.ExitAlternateBuffer(true)
			}
		}
	}
}

func (p *Performer) sgr(params []int) {
	attrs := p.Buf.CurrentAttrs()
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		code := params[i]
		switch {
		case code == 0:
			attrs = DefaultAttrs()
		case code == 1:
			attrs.Bold = true
		case code == 2:
			attrs.Dim = true
		case code == 3:
			attrs.Italic = true
		case code == 4:
			attrs.Underline = true
		case code == 5 || code == 6:
			attrs.Blink = true
		case code == 7:
			attrs.Reverse = true
		case code == 8:
			attrs.Hidden = true
		case code == 9:
			attrs.Strikethrough = true
		case code == 21 || code == 22:
			attrs.Bold = false
		case code == 23:
			attrs.Italic = false
		case code == 24:
			attrs.Underline = false
		case code == 25:
			attrs.Blink = false
		case code == 27:
			attrs.Reverse = false
		case code == 28:
			attrs.Hidden = false
		case code == 29:
			attrs.Strikethrough = false
		case code >= 30 && code <= 37:
			attrs.Fg = Indexed16(uint8(code - 30))
		case code == 38:
			i += p.sgrExtended(params, i, &attrs.Fg)
		case code == 39:
			attrs.Fg = DefaultColor
		case code >= 40 && code <= 47:
			attrs.Bg = Indexed16(uint8(code - 40))
		case code == 48:
			i += p.sgrExtended(params, i, &attrs.Bg)
		case code == 49:
			attrs.Bg = DefaultColor
		case code >= 90 && code <= 97:
			attrs.Fg = Indexed16(uint8(code - 90 + 8))
		case code >= 100 && code <= 107:
			attrs.Bg = Indexed16(uint8(code - 100 + 8))
		}
	}
	p.Buf.SetCurrentAttrs(attrs)
}

// sgrExtended parses the 38/48 (5;n or 2;r;g;b) subsequence starting at
// params[i+1], writing the resolved color into dst and returning the
// number of extra params consumed.
func (p *Performer) sgrExtended(params []int, i int, dst *Color) int {
	if i+1 >= len(params) {
		return 0
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			*dst = Indexed256(uint8(params[i+2]))
			return 2
		}
	case 2:
		if i+4 < len(params) {
			*dst = RGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4]))
			return 4
		}
	}
	return 0
}

// EscDispatch applies a fully parsed ESC sequence.
func (p *Performer) EscDispatch(intermediates []byte, final byte) {
	buf := p.Buf
	switch final {
	case '7': // DECSC
		buf.SaveCursor()
	case '8': // DECRC
		buf.RestoreCursor()
	case 'D': // IND
		buf.LineFeed()
	case 'E': // NEL
		buf.Newline()
	case 'M': // RI
		if buf.Cursor().Row == 0 {
			buf.ScrollDown(1)
		} else {
			buf.MoveCursor().MoveUp(1)
		}
	case 'c': // RIS
		buf.RIS()
	}
}

// OscDispatch applies a fully parsed OSC sequence. Only 0 (icon+title)
// and 2 (title) are interpreted; everything else is ignored.
func (p *Performer) OscDispatch(params [][]byte) {
	if len(params) < 2 {
		return
	}
	switch string(params[0]) {
	case "0", "2":
		p.Buf.SetTitle(string(params[1]))
	}
}

// Hook, Put and Unhook implement the DCS leg of the dispatch table as
// no-ops: no sequence this parser needs to understand arrives via DCS.
func (p *Performer) Hook(params []int, intermediates []byte, final byte) {}
func (p *Performer) Put(b byte)                                         {}
func (p *Performer) Unhook()                                            {}
