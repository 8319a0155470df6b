package screen

import "github.com/unilibs/uniwidth"

// Cell is a single character position on the screen: the rune it holds,
// its display width (0 for the trailing half of a wide character, 1 for
// ordinary runes, 2 for wide CJK runes), and the SGR attributes in effect
// when it was written.
type Cell struct {
	Char  rune
	Width int
	Attrs Attrs
}

// NewCell returns a blank cell (a single space) with the given attributes.
func NewCell(attrs Attrs) Cell {
	return Cell{Char: ' ', Width: 1, Attrs: attrs}
}

// Reset clears the cell back to a blank space under the given attributes.
func (c *Cell) Reset(attrs Attrs) {
	c.Char = ' '
	c.Width = 1
	c.Attrs = attrs
}

// SetChar sets the cell's rune, computing its display width via the
// Unicode East Asian Width property.
func (c *Cell) SetChar(r rune, attrs Attrs) {
	c.Char = r
	c.Width = uniwidth.RuneWidth(r)
	if c.Width == 0 {
		c.Width = 1
	}
	c.Attrs = attrs
}

// RuneWidth returns the display width of r (1 for most runes, 2 for wide
// CJK runes).
func RuneWidth(r rune) int {
	w := uniwidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}

// StringWidth returns the total display width of s.
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}
