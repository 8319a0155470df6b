package screen

import "strings"

// ScrollbackLine is one line pushed off the top of the screen by a scroll,
// kept in both a plain (attribute-free) and raw (attribute-preserving,
// re-synthesized as SGR + text) rendering so the scrollback view can offer
// either format without re-parsing anything.
type ScrollbackLine struct {
	Plain string
	Raw   string
}

// Buffer is the visible character grid of a terminal: a rows*cols array of
// Cell, the cursor, current SGR state, an optional DECSTBM scroll region,
// and an alternate-screen save slot.
type Buffer struct {
	cells        [][]Cell
	cursor       CursorState
	rows, cols   int
	currentAttrs Attrs
	title        string

	scrollTop    int
	scrollBottom int
	regionSet    bool

	alternateActive bool
	mainCells       [][]Cell
	mainCursor      CursorState
	savedCursor     CursorState

	scrolled []ScrollbackLine
}

// NewBuffer returns an empty rows x cols screen buffer.
func NewBuffer(rows, cols int) *Buffer {
	b := &Buffer{
		rows:         rows,
		cols:         cols,
		currentAttrs: DefaultAttrs(),
		cursor:       NewCursorState(),
	}
	b.cells = newGrid(rows, cols, b.currentAttrs)
	b.scrollTop = 0
	b.scrollBottom = rows - 1
	return b
}

func newGrid(rows, cols int, attrs Attrs) [][]Cell {
	grid := make([][]Cell, rows)
	for r := range grid {
		row := make([]Cell, cols)
		for c := range row {
			row[c] = NewCell(attrs)
		}
		grid[r] = row
	}
	return grid
}

// Dimensions returns the buffer's current size.
func (b *Buffer) Dimensions() Dimensions {
	return Dimensions{Rows: b.rows, Cols: b.cols}
}

// Cursor returns the cursor's current position.
func (b *Buffer) Cursor() Position {
	return b.cursor.Position()
}

// CurrentAttrs returns the SGR attributes that will be applied to the next
// character written.
func (b *Buffer) CurrentAttrs() Attrs {
	return b.currentAttrs
}

// SetCurrentAttrs replaces the SGR attributes applied to subsequent writes.
func (b *Buffer) SetCurrentAttrs(a Attrs) {
	b.currentAttrs = a
}

// SetScrollRegion sets the DECSTBM scroll region (0-indexed, inclusive).
// An out-of-range or inverted region is ignored, matching real terminals'
// tolerance of malformed CSI r requests.
func (b *Buffer) SetScrollRegion(top, bottom int) {
	if top < 0 || bottom >= b.rows || top >= bottom {
		b.scrollTop, b.scrollBottom = 0, b.rows-1
		b.regionSet = false
		return
	}
	b.scrollTop, b.scrollBottom = top, bottom
	b.regionSet = true
}

// ResetScrollRegion clears any DECSTBM region back to the full screen.
func (b *Buffer) ResetScrollRegion() {
	b.scrollTop, b.scrollBottom = 0, b.rows-1
	b.regionSet = false
}

// PutChar writes r at the cursor under the current attributes, advancing
// the cursor (wrapping and scrolling as needed). A width-2 rune that
// would straddle the last column wraps to the next line before being
// placed, rather than being split across the boundary.
func (b *Buffer) PutChar(r rune) {
	width := RuneWidth(r)
	if width == 2 && b.cursor.Col+1 >= b.cols {
		b.cursor.Col = 0
		if b.cursor.LineFeed(b.scrollBottom + 1) {
			b.ScrollUp(1)
			b.cursor.Row = b.scrollBottom
		}
	}
	if b.cursor.Row < b.rows && b.cursor.Col < b.cols {
		b.cells[b.cursor.Row][b.cursor.Col].SetChar(r, b.currentAttrs)
		if width == 2 && b.cursor.Col+1 < b.cols {
			b.cells[b.cursor.Row][b.cursor.Col+1].Reset(b.currentAttrs)
			b.cells[b.cursor.Row][b.cursor.Col+1].Width = 0
		}
	}
	if b.cursor.AdvanceBy(width, b.cols, b.scrollBottom+1) {
		b.ScrollUp(1)
		b.cursor.Row = b.scrollBottom
	}
}

// ScrollUp scrolls the region [scrollTop, scrollBottom] up by n lines,
// pushing the lines that fall off the top onto the scrollback (only when
// the region is the full screen and not the alternate buffer, matching
// real terminals which don't accumulate alt-screen/region scrollback).
func (b *Buffer) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	regionLen := b.scrollBottom - b.scrollTop + 1
	if n >= regionLen {
		n = regionLen
	}
	captureScrollback := !b.alternateActive && b.scrollTop == 0 && b.scrollBottom == b.rows-1
	for i := 0; i < n; i++ {
		if captureScrollback {
			b.scrolled = append(b.scrolled, b.renderLine(b.scrollTop))
		}
		copy(b.cells[b.scrollTop:b.scrollBottom], b.cells[b.scrollTop+1:b.scrollBottom+1])
		b.cells[b.scrollBottom] = newRow(b.cols, b.currentAttrs)
	}
}

// ScrollDown scrolls the region down by n lines, discarding lines that
// fall off the bottom and filling blank lines in at the top. n >= the
// region length is a no-op clear of the whole region, matching the
// reference implementation's saturating behavior.
func (b *Buffer) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	regionLen := b.scrollBottom - b.scrollTop + 1
	if n >= regionLen {
		n = regionLen
	}
	for i := 0; i < n; i++ {
		copy(b.cells[b.scrollTop+1:b.scrollBottom+1], b.cells[b.scrollTop:b.scrollBottom])
		b.cells[b.scrollTop] = newRow(b.cols, b.currentAttrs)
	}
}

func newRow(cols int, attrs Attrs) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = NewCell(attrs)
	}
	return row
}

// TakeScrolledLines returns and clears the lines that have scrolled off
// the top of the screen since the last call.
func (b *Buffer) TakeScrolledLines() []ScrollbackLine {
	if len(b.scrolled) == 0 {
		return nil
	}
	out := b.scrolled
	b.scrolled = nil
	return out
}

func (b *Buffer) renderLine(row int) ScrollbackLine {
	var plain, raw strings.Builder
	var last Attrs
	haveLast := false
	for _, cell := range b.cells[row] {
		if cell.Width == 0 {
			continue
		}
		plain.WriteRune(cell.Char)
		if !haveLast || cell.Attrs != last {
			raw.WriteString(sgrEscape(cell.Attrs))
			last = cell.Attrs
			haveLast = true
		}
		raw.WriteRune(cell.Char)
	}
	if haveLast {
		raw.WriteString("\x1b[0m")
	}
	return ScrollbackLine{
		Plain: strings.TrimRight(plain.String(), " "),
		Raw:   raw.String(),
	}
}

// EraseBelow clears from the cursor (inclusive) to the end of the screen.
func (b *Buffer) EraseBelow() {
	b.EraseLineRight()
	for r := b.cursor.Row + 1; r < b.rows; r++ {
		b.ClearRow(r)
	}
}

// EraseAbove clears from the start of the screen to the cursor (inclusive).
func (b *Buffer) EraseAbove() {
	b.EraseLineLeft()
	for r := 0; r < b.cursor.Row; r++ {
		b.ClearRow(r)
	}
}

// EraseAll clears the entire screen.
func (b *Buffer) EraseAll() {
	for r := 0; r < b.rows; r++ {
		b.ClearRow(r)
	}
}

// EraseLineRight clears from the cursor (inclusive) to the end of its row.
func (b *Buffer) EraseLineRight() {
	if b.cursor.Row >= b.rows {
		return
	}
	for c := b.cursor.Col; c < b.cols; c++ {
		b.cells[b.cursor.Row][c].Reset(b.currentAttrs)
	}
}

// EraseLineLeft clears from the start of the cursor's row to the cursor
// (inclusive).
func (b *Buffer) EraseLineLeft() {
	if b.cursor.Row >= b.rows {
		return
	}
	for c := 0; c <= b.cursor.Col && c < b.cols; c++ {
		b.cells[b.cursor.Row][c].Reset(b.currentAttrs)
	}
}

// EraseLine clears the cursor's entire row.
func (b *Buffer) EraseLine() {
	if b.cursor.Row < b.rows {
		b.ClearRow(b.cursor.Row)
	}
}

// ClearRow resets every cell in row to blank under the current attributes.
func (b *Buffer) ClearRow(row int) {
	if row < 0 || row >= b.rows {
		return
	}
	for c := 0; c < b.cols; c++ {
		b.cells[row][c].Reset(b.currentAttrs)
	}
}

// InsertLines inserts n blank lines at the cursor's row, pushing lines
// below down within the scroll region and discarding overflow.
func (b *Buffer) InsertLines(n int) {
	top := b.cursor.Row
	bottom := b.scrollBottom
	if top < b.scrollTop || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for i := 0; i < n; i++ {
		copy(b.cells[top+1:bottom+1], b.cells[top:bottom])
		b.cells[top] = newRow(b.cols, b.currentAttrs)
	}
}

// DeleteLines deletes n lines at the cursor's row, pulling lines below up
// within the scroll region and blanking the vacated lines at the bottom.
func (b *Buffer) DeleteLines(n int) {
	top := b.cursor.Row
	bottom := b.scrollBottom
	if top < b.scrollTop || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for i := 0; i < n; i++ {
		copy(b.cells[top:bottom], b.cells[top+1:bottom+1])
		b.cells[bottom] = newRow(b.cols, b.currentAttrs)
	}
}

// InsertChars inserts n blank chars at the cursor, shifting the rest of
// the row right and discarding overflow past the right margin.
func (b *Buffer) InsertChars(n int) {
	if b.cursor.Row >= b.rows {
		return
	}
	row := b.cells[b.cursor.Row]
	col := b.cursor.Col
	if n > b.cols-col {
		n = b.cols - col
	}
	if n <= 0 {
		return
	}
	copy(row[col+n:], row[col:b.cols-n])
	for i := col; i < col+n; i++ {
		row[i].Reset(b.currentAttrs)
	}
}

// DeleteChars deletes n chars at the cursor, shifting the rest of the row
// left and blanking the vacated cells at the right margin.
func (b *Buffer) DeleteChars(n int) {
	if b.cursor.Row >= b.rows {
		return
	}
	row := b.cells[b.cursor.Row]
	col := b.cursor.Col
	if n > b.cols-col {
		n = b.cols - col
	}
	if n <= 0 {
		return
	}
	copy(row[col:b.cols-n], row[col+n:])
	for i := b.cols - n; i < b.cols; i++ {
		row[i].Reset(b.currentAttrs)
	}
}

// Tab advances the cursor to the next multiple-of-8 column stop.
func (b *Buffer) Tab() {
	next := ((b.cursor.Col / 8) + 1) * 8
	if next >= b.cols {
		next = b.cols - 1
	}
	b.cursor.Col = next
}

// Backspace moves the cursor left one column (no wraparound).
func (b *Buffer) Backspace() {
	b.cursor.MoveLeft(1)
}

// CarriageReturn moves the cursor to column 0.
func (b *Buffer) CarriageReturn() {
	b.cursor.CarriageReturn()
}

// LineFeed moves the cursor down one row, scrolling the region if needed.
func (b *Buffer) LineFeed() {
	if b.cursor.Row == b.scrollBottom {
		b.ScrollUp(1)
		return
	}
	if b.cursor.LineFeed(b.scrollBottom + 1) {
		b.ScrollUp(1)
		b.cursor.Row = b.scrollBottom
	}
}

// Newline moves to the start of the next line, scrolling if needed.
func (b *Buffer) Newline() {
	b.cursor.CarriageReturn()
	b.LineFeed()
}

// SetTitle sets the window/tab title (OSC 0/2).
func (b *Buffer) SetTitle(title string) { b.title = title }

// Title returns the current window title.
func (b *Buffer) Title() string { return b.title }

// IsAlternateActive reports whether the alternate screen buffer is active.
func (b *Buffer) IsAlternateActive() bool { return b.alternateActive }

// EnterAlternateBuffer switches to a blank alternate screen, saving the
// primary screen's contents (and optionally the cursor) for later
// restoration. saveCursor corresponds to private mode 1049 vs 47/1047.
func (b *Buffer) EnterAlternateBuffer(saveCursor bool) {
	if b.alternateActive {
		return
	}
	if saveCursor {
		b.savedCursor = b.cursor
	}
	b.mainCells = b.cells
	b.mainCursor = b.cursor
	b.cells = newGrid(b.rows, b.cols, b.currentAttrs)
	b.cursor = NewCursorState()
	b.alternateActive = true
}

// ExitAlternateBuffer restores the primary screen saved by
// EnterAlternateBuffer.
func (b *Buffer) ExitAlternateBuffer(restoreCursor bool) {
	if !b.alternateActive {
		return
	}
	b.cells = b.mainCells
	b.mainCells = nil
	if restoreCursor {
		b.cursor = b.savedCursor
	} else {
		b.cursor = b.mainCursor
	}
	b.alternateActive = false
}

// SaveCursor implements ESC 7 / CSI s.
func (b *Buffer) SaveCursor() { b.cursor.Save() }

// RestoreCursor implements ESC 8 / CSI u.
func (b *Buffer) RestoreCursor() { b.cursor.Restore() }

// SetCursorVisible implements DECTCEM (private mode 25).
func (b *Buffer) SetCursorVisible(v bool) { b.cursor.Visible = v }

// CursorVisible reports DECTCEM state.
func (b *Buffer) CursorVisible() bool { return b.cursor.Visible }

// MoveCursor exposes the cursor's movement operations to the parser.
func (b *Buffer) MoveCursor() *CursorState { return &b.cursor }

// Resize changes the buffer's dimensions, preserving existing content in
// the top-left and clamping the cursor and scroll region to the new size.
func (b *Buffer) Resize(rows, cols int) {
	grid := newGrid(rows, cols, b.currentAttrs)
	for r := 0; r < rows && r < b.rows; r++ {
		for c := 0; c < cols && c < b.cols; c++ {
			grid[r][c] = b.cells[r][c]
		}
	}
	b.cells = grid
	b.rows, b.cols = rows, cols
	b.cursor.Row = minInt(b.cursor.Row, rows-1)
	b.cursor.Col = minInt(b.cursor.Col, cols-1)
	if !b.regionSet {
		b.scrollTop, b.scrollBottom = 0, rows-1
	} else {
		b.scrollBottom = minInt(b.scrollBottom, rows-1)
	}
}

// RIS performs a full hard reset (ESC c): a fresh blank primary screen,
// default attributes, cursor at the origin, and no alternate screen.
func (b *Buffer) RIS() {
	b.currentAttrs = DefaultAttrs()
	b.cells = newGrid(b.rows, b.cols, b.currentAttrs)
	b.cursor = NewCursorState()
	b.alternateActive = false
	b.mainCells = nil
	b.scrollTop, b.scrollBottom = 0, b.rows-1
	b.regionSet = false
	b.title = ""
}

// Render formats the full visible screen as text. Plain strips attributes
// entirely; Raw re-synthesizes SGR escapes from each cell's attributes so
// formatting is preserved across reads. Trailing blank rows are trimmed.
func (b *Buffer) Render(raw bool) string {
	lines := make([]string, 0, b.rows)
	last := -1
	for r := 0; r < b.rows; r++ {
		line := b.renderLine(r)
		if raw {
			lines = append(lines, line.Raw)
		} else {
			lines = append(lines, line.Plain)
		}
		if line.Plain != "" {
			last = r
		}
	}
	return strings.Join(lines[:last+1], "\n")
}

func sgrEscape(a Attrs) string {
	codes := []string{"0"}
	if a.Bold {
		codes = append(codes, "1")
	}
	if a.Dim {
		codes = append(codes, "2")
	}
	if a.Italic {
		codes = append(codes, "3")
	}
	if a.Underline {
		codes = append(codes, "4")
	}
	if a.Blink {
		codes = append(codes, "5")
	}
	if a.Reverse {
		codes = append(codes, "7")
	}
	if a.Hidden {
		codes = append(codes, "8")
	}
	if a.Strikethrough {
		codes = append(codes, "9")
	}
	codes = append(codes, fgCode(a.Fg)...)
	codes = append(codes, bgCode(a.Bg)...)
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func fgCode(c Color) []string {
	switch c.Kind {
	case ColorKindIndexed16:
		if c.Index < 8 {
			return []string{itoa(30 + int(c.Index))}
		}
		return []string{itoa(90 + int(c.Index-8))}
	case ColorKindIndexed256:
		return []string{"38", "5", itoa(int(c.Index))}
	case ColorKindRGB:
		return []string{"38", "2", itoa(int(c.R)), itoa(int(c.G)), itoa(int(c.B))}
	default:
		return nil
	}
}

func bgCode(c Color) []string {
	switch c.Kind {
	case ColorKindIndexed16:
		if c.Index < 8 {
			return []string{itoa(40 + int(c.Index))}
		}
		return []string{itoa(100 + int(c.Index-8))}
	case ColorKindIndexed256:
		return []string{"48", "5", itoa(int(c.Index))}
	case ColorKindRGB:
		return []string{"48", "2", itoa(int(c.R)), itoa(int(c.G)), itoa(int(c.B))}
	default:
		return nil
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
