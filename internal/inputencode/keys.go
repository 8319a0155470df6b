// Package inputencode turns logical key presses and pasted text into the
// byte sequences a PTY's line discipline expects (xterm-style special-key
// escapes, Ctrl/Alt modifiers, and bracketed paste).
package inputencode

import (
	"errors"
	"fmt"
	"strings"
)

// SpecialKey names a non-printable key that can be sent to the terminal.
type SpecialKey string

const (
	KeyUp       SpecialKey = "up"
	KeyDown     SpecialKey = "down"
	KeyLeft     SpecialKey = "left"
	KeyRight    SpecialKey = "right"
	KeyHome     SpecialKey = "home"
	KeyEnd      SpecialKey = "end"
	KeyPageUp   SpecialKey = "pageup"
	KeyPageDown SpecialKey = "pagedown"
	KeyBackspace SpecialKey = "backspace"
	KeyDelete   SpecialKey = "delete"
	KeyInsert   SpecialKey = "insert"
	KeyTab      SpecialKey = "tab"
	KeyEnter    SpecialKey = "enter"
	KeyEscape   SpecialKey = "escape"
	KeyF1       SpecialKey = "f1"
	KeyF2       SpecialKey = "f2"
	KeyF3       SpecialKey = "f3"
	KeyF4       SpecialKey = "f4"
	KeyF5       SpecialKey = "f5"
	KeyF6       SpecialKey = "f6"
	KeyF7       SpecialKey = "f7"
	KeyF8       SpecialKey = "f8"
	KeyF9       SpecialKey = "f9"
	KeyF10      SpecialKey = "f10"
	KeyF11      SpecialKey = "f11"
	KeyF12      SpecialKey = "f12"
)

// ErrNoInput is returned when a KeyInput carries neither a special key
// nor text.
var ErrNoInput = errors.New("inputencode: no key or text provided")

// ParseKeyName resolves a user-facing key name (case-insensitive, with a
// couple of common aliases) to a SpecialKey.
func ParseKeyName(name string) (SpecialKey, bool) {
	switch strings.ToLower(name) {
	case "up":
		return KeyUp, true
	case "down":
		return KeyDown, true
	case "left":
		return KeyLeft, true
	case "right":
		return KeyRight, true
	case "home":
		return KeyHome, true
	case "end":
		return KeyEnd, true
	case "pageup", "page_up":
		return KeyPageUp, true
	case "pagedown", "page_down":
		return KeyPageDown, true
	case "backspace":
		return KeyBackspace, true
	case "delete", "del":
		return KeyDelete, true
	case "insert", "ins":
		return KeyInsert, true
	case "tab":
		return KeyTab, true
	case "enter", "return":
		return KeyEnter, true
	case "escape", "esc":
		return KeyEscape, true
	case "f1":
		return KeyF1, true
	case "f2":
		return KeyF2, true
	case "f3":
		return KeyF3, true
	case "f4":
		return KeyF4, true
	case "f5":
		return KeyF5, true
	case "f6":
		return KeyF6, true
	case "f7":
		return KeyF7, true
	case "f8":
		return KeyF8, true
	case "f9":
		return KeyF9, true
	case "f10":
		return KeyF10, true
	case "f11":
		return KeyF11, true
	case "f12":
		return KeyF12, true
	default:
		return "", false
	}
}

func baseSequence(k SpecialKey) []byte {
	switch k {
	case KeyUp:
		return []byte("\x1b[A")
	case KeyDown:
		return []byte("\x1b[B")
	case KeyRight:
		return []byte("\x1b[C")
	case KeyLeft:
		return []byte("\x1b[D")
	case KeyHome:
		return []byte("\x1b[H")
	case KeyEnd:
		return []byte("\x1b[F")
	case KeyPageUp:
		return []byte("\x1b[5~")
	case KeyPageDown:
		return []byte("\x1b[6~")
	case KeyInsert:
		return []byte("\x1b[2~")
	case KeyDelete:
		return []byte("\x1b[3~")
	case KeyBackspace:
		return []byte{0x7f}
	case KeyTab:
		return []byte("\t")
	case KeyEnter:
		return []byte("\r")
	case KeyEscape:
		return []byte{0x1b}
	case KeyF1:
		return []byte("\x1bOP")
	case KeyF2:
		return []byte("\x1bOQ")
	case KeyF3:
		return []byte("\x1bOR")
	case KeyF4:
		return []byte("\x1bOS")
	case KeyF5:
		return []byte("\x1b[15~")
	case KeyF6:
		return []byte("\x1b[17~")
	case KeyF7:
		return []byte("\x1b[18~")
	case KeyF8:
		return []byte("\x1b[19~")
	case KeyF9:
		return []byte("\x1b[20~")
	case KeyF10:
		return []byte("\x1b[21~")
	case KeyF11:
		return []byte("\x1b[23~")
	case KeyF12:
		return []byte("\x1b[24~")
	default:
		return nil
	}
}

func supportsModifiers(k SpecialKey) bool {
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown,
		KeyInsert, KeyDelete,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		return true
	default:
		return false
	}
}

// KeyInput describes one logical key press: either a SpecialKey or plain
// Text, with optional Ctrl/Alt/Shift modifiers.
type KeyInput struct {
	Key   SpecialKey // empty if Text is set
	Text  string
	Ctrl  bool
	Alt   bool
	Shift bool
}

// Encode converts ki to the bytes to write to the PTY.
func (ki KeyInput) Encode() ([]byte, error) {
	if ki.Ctrl && !ki.Alt && ki.Key == "" {
		if r := singleRune(ki.Text); r != 0 && isASCIIAlpha(r) {
			return []byte{ctrlCode(r)}, nil
		}
	}

	if ki.Key != "" {
		return ki.encodeSpecialKey(), nil
	}

	if ki.Text != "" {
		var out []byte
		for _, r := range ki.Text {
			if ki.Alt {
				out = append(out, 0x1b)
			}
			if ki.Ctrl && isASCIIAlpha(r) {
				out = append(out, ctrlCode(r))
			} else {
				out = append(out, []byte(string(r))...)
			}
		}
		return out, nil
	}

	return nil, ErrNoInput
}

func singleRune(s string) rune {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0
	}
	return runes[0]
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func ctrlCode(r rune) byte {
	upper := r
	if upper >= 'a' && upper <= 'z' {
		upper -= 'a' - 'A'
	}
	return byte(upper-'A') + 1
}

// modifierCode computes the xterm modifier parameter: 1 + shift(1) +
// alt(2) + ctrl(4).
func (ki KeyInput) modifierCode() int {
	code := 1
	if ki.Shift {
		code++
	}
	if ki.Alt {
		code += 2
	}
	if ki.Ctrl {
		code += 4
	}
	return code
}

func (ki KeyInput) encodeSpecialKey() []byte {
	mod := ki.modifierCode()
	if mod == 1 {
		return baseSequence(ki.Key)
	}
	if !supportsModifiers(ki.Key) {
		return baseSequence(ki.Key)
	}

	switch ki.Key {
	case KeyUp:
		return []byte(fmt.Sprintf("\x1b[1;%dA", mod))
	case KeyDown:
		return []byte(fmt.Sprintf("\x1b[1;%dB", mod))
	case KeyRight:
		return []byte(fmt.Sprintf("\x1b[1;%dC", mod))
	case KeyLeft:
		return []byte(fmt.Sprintf("\x1b[1;%dD", mod))
	case KeyHome:
		return []byte(fmt.Sprintf("\x1b[1;%dH", mod))
	case KeyEnd:
		return []byte(fmt.Sprintf("\x1b[1;%dF", mod))
	case KeyPageUp:
		return []byte(fmt.Sprintf("\x1b[5;%d~", mod))
	case KeyPageDown:
		return []byte(fmt.Sprintf("\x1b[6;%d~", mod))
	case KeyInsert:
		return []byte(fmt.Sprintf("\x1b[2;%d~", mod))
	case KeyDelete:
		return []byte(fmt.Sprintf("\x1b[3;%d~", mod))
	case KeyF1:
		return []byte(fmt.Sprintf("\x1b[1;%dP", mod))
	case KeyF2:
		return []byte(fmt.Sprintf("\x1b[1;%dQ", mod))
	case KeyF3:
		return []byte(fmt.Sprintf("\x1b[1;%dR", mod))
	case KeyF4:
		return []byte(fmt.Sprintf("\x1b[1;%dS", mod))
	case KeyF5:
		return []byte(fmt.Sprintf("\x1b[15;%d~", mod))
	case KeyF6:
		return []byte(fmt.Sprintf("\x1b[17;%d~", mod))
	case KeyF7:
		return []byte(fmt.Sprintf("\x1b[18;%d~", mod))
	case KeyF8:
		return []byte(fmt.Sprintf("\x1b[19;%d~", mod))
	case KeyF9:
		return []byte(fmt.Sprintf("\x1b[20;%d~", mod))
	case KeyF10:
		return []byte(fmt.Sprintf("\x1b[21;%d~", mod))
	case KeyF11:
		return []byte(fmt.Sprintf("\x1b[23;%d~", mod))
	case KeyF12:
		return []byte(fmt.Sprintf("\x1b[24;%d~", mod))
	default:
		return baseSequence(ki.Key)
	}
}
