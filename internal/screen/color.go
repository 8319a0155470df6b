package screen

// ColorKind tags which representation a Color holds.
type ColorKind int

const (
	ColorKindDefault ColorKind = iota
	ColorKindIndexed16
	ColorKindIndexed256
	ColorKindRGB
)

// Color is a tagged union over the terminal color models a client can set
// via SGR: the unset default, a 16-color index, a 256-color index, and
// 24-bit RGB.
type Color struct {
	Kind  ColorKind
	Index uint8
	R, G, B uint8
}

// DefaultColor is the unset/"use the default" color.
var DefaultColor = Color{Kind: ColorKindDefault}

// Indexed16 builds a 16-color indexed Color (palette index 0-15).
func Indexed16(idx uint8) Color {
	return Color{Kind: ColorKindIndexed16, Index: idx}
}

// Indexed256 builds a 256-color indexed Color.
func Indexed256(idx uint8) Color {
	return Color{Kind: ColorKindIndexed256, Index: idx}
}

// RGB builds a 24-bit true-color Color.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorKindRGB, R: r, G: g, B: b}
}

// Attrs is the SGR attribute/color state applied to a cell.
type Attrs struct {
	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Blink         bool
	Reverse       bool
	Hidden        bool
	Strikethrough bool
	Fg            Color
	Bg            Color
}

// DefaultAttrs is the SGR reset state (code 0).
func DefaultAttrs() Attrs {
	return Attrs{Fg: DefaultColor, Bg: DefaultColor}
}
