// Package promptdetect checks whether recent terminal output ends with a
// shell prompt, using a configurable regular expression.
package promptdetect

import (
	"regexp"
	"strings"
)

// DefaultPattern matches common shell prompts ($, #, >).
const DefaultPattern = `\$\s*$|#\s*$|>\s*$`

// Detector matches trailing lines of output against a prompt pattern.
type Detector struct {
	pattern *regexp.Regexp
	raw     string
}

// New compiles pattern into a Detector. Pattern compilation is the one
// place this package can fail — invalid regex is a hard error at
// construction, not something tolerated at detect time.
func New(pattern string) (*Detector, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Detector{pattern: re, raw: pattern}, nil
}

// NewDefault returns a Detector using DefaultPattern.
func NewDefault() *Detector {
	d, err := New(DefaultPattern)
	if err != nil {
		panic("promptdetect: default pattern is invalid: " + err.Error())
	}
	return d
}

// Pattern returns the source regex string.
func (d *Detector) Pattern() string {
	return d.raw
}

// Detect reports whether content's last two lines (accounting for a
// possible trailing newline) end with a shell prompt.
func (d *Detector) Detect(content string) bool {
	lines := strings.Split(content, "\n")
	checked := 0
	for i := len(lines) - 1; i >= 0 && checked < 2; i-- {
		checked++
		trimmed := strings.TrimRight(lines[i], " \t")
		if trimmed == "" {
			continue
		}
		if d.pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}
