package screen

import "strings"

// Scrollback is a bounded FIFO of lines that have scrolled off the top of
// the screen. Pushing past MaxLines drops the oldest lines first.
type Scrollback struct {
	lines    []ScrollbackLine
	maxLines int
}

// NewScrollback returns an empty scrollback bounded to maxLines.
func NewScrollback(maxLines int) *Scrollback {
	return &Scrollback{maxLines: maxLines}
}

// Push appends lines, dropping from the front once over capacity.
func (s *Scrollback) Push(lines []ScrollbackLine) {
	for _, l := range lines {
		s.PushLine(l)
	}
}

// PushLine appends a single line, dropping the oldest line if at capacity.
func (s *Scrollback) PushLine(line ScrollbackLine) {
	s.lines = append(s.lines, line)
	if len(s.lines) > s.maxLines {
		s.lines = s.lines[len(s.lines)-s.maxLines:]
	}
}

// Len returns the number of lines currently held.
func (s *Scrollback) Len() int { return len(s.lines) }

// IsEmpty reports whether the scrollback holds no lines.
func (s *Scrollback) IsEmpty() bool { return len(s.lines) == 0 }

// Capacity returns the configured maximum line count.
func (s *Scrollback) Capacity() int { return s.maxLines }

// Clear discards all held lines.
func (s *Scrollback) Clear() { s.lines = nil }

// Get returns up to limit lines starting offset lines back from the most
// recent end (offset 0 = the limit most recent lines), formatted and
// joined with "\n". Returns "" if there is nothing in range.
func (s *Scrollback) Get(offset, limit int, raw bool) string {
	total := len(s.lines)
	if total == 0 || offset >= total {
		return ""
	}
	end := satSub(total, offset)
	start := satSub(end, limit)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if raw {
			out = append(out, s.lines[i].Raw)
		} else {
			out = append(out, s.lines[i].Plain)
		}
	}
	return strings.Join(out, "\n")
}

// GetAll returns the entire scrollback, formatted and newline-joined.
func (s *Scrollback) GetAll(raw bool) string {
	return s.Get(0, len(s.lines), raw)
}
