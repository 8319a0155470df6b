package inputencode

import "strings"

// PasteMode controls when pasted/sent text is wrapped in bracketed-paste
// escapes.
type PasteMode int

const (
	// PasteAuto wraps only text containing a newline.
	PasteAuto PasteMode = iota
	PasteAlways
	PasteNever
)

var pasteStart = []byte("\x1b[200~")
var pasteEnd = []byte("\x1b[201~")

// WrapBracketedPaste wraps text in the bracketed-paste start/end markers.
func WrapBracketedPaste(text string) []byte {
	out := make([]byte, 0, len(pasteStart)+len(text)+len(pasteEnd))
	out = append(out, pasteStart...)
	out = append(out, text...)
	out = append(out, pasteEnd...)
	return out
}

// ShouldUseBracketedPaste reports whether mode calls for wrapping text.
func ShouldUseBracketedPaste(text string, mode PasteMode) bool {
	switch mode {
	case PasteAlways:
		return true
	case PasteNever:
		return false
	default:
		return strings.Contains(text, "\n")
	}
}

// EncodeText encodes plain text for sending, wrapping it in bracketed
// paste per mode when applicable.
func EncodeText(text string, mode PasteMode) []byte {
	if ShouldUseBracketedPaste(text, mode) {
		return WrapBracketedPaste(text)
	}
	return []byte(text)
}
